package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/allanpk716/docx_hf_replacer/internal/archive"
	"github.com/allanpk716/docx_hf_replacer/internal/processor"
	"github.com/allanpk716/docx_hf_replacer/internal/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动网页界面",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "监听地址，覆盖配置文件中的 server.addr")
	return cmd
}

// serve 运行 HTTP 服务直到 ctx 结束，然后优雅关闭
func (a *app) serve(ctx context.Context) error {
	if err := a.configManager.EnsureDirs(a.cfg); err != nil {
		return err
	}

	handler, err := a.newHandler()
	if err != nil {
		return err
	}
	srv := web.NewHTTPServer(a.cfg.Server, handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("服务启动",
			zap.String("addr", srv.Addr),
			zap.String("version", AppVersion))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP 服务异常退出: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("正在关闭服务")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("关闭 HTTP 服务失败: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("服务已停止")
	return nil
}

// newHandler 组装存储、处理器和路由
func (a *app) newHandler() (http.Handler, error) {
	store := archive.NewStore(a.cfg.Storage, a.logger)
	batch := a.newBatchProcessor(store)

	srv, err := web.NewServer(a.cfg, store, batch, a.logger)
	if err != nil {
		return nil, err
	}
	return srv.Router(), nil
}

func (a *app) newBatchProcessor(store *archive.Store) *processor.BatchProcessor {
	docProcessor := processor.NewDocumentProcessor(processor.NewDocxLoader(), a.logger)
	return processor.NewBatchProcessor(store, docProcessor, a.logger)
}
