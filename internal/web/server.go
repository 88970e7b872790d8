// Package web 提供上传压缩包、填写替换规则和下载处理结果的 HTTP 界面
package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/allanpk716/docx_hf_replacer/internal/config"
	"github.com/allanpk716/docx_hf_replacer/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// ArchiveStore 上传和解压压缩包
type ArchiveStore interface {
	SaveUpload(filename string, r io.Reader) (string, error)
	Extract(storedName string) ([]domain.DocumentInfo, error)
}

// BatchRunner 对已上传的压缩包执行替换
type BatchRunner interface {
	Process(ctx context.Context, storedName string, rules domain.RuleSet, selected []string) (*domain.BatchResult, error)
}

// Server HTTP 界面
type Server struct {
	cfg       *config.Config
	store     ArchiveStore
	batch     BatchRunner
	logger    *zap.Logger
	templates *template.Template
}

// NewServer 创建 HTTP 界面，模板解析失败时返回错误
func NewServer(cfg *config.Config, store ArchiveStore, batch BatchRunner, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	templates, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("解析页面模板失败: %w", err)
	}
	return &Server{
		cfg:       cfg,
		store:     store,
		batch:     batch,
		logger:    logger,
		templates: templates,
	}, nil
}

// Router 返回挂载了全部路由和中间件的 chi 路由器
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	s.RegisterHTTP(r)
	return r
}

// RegisterHTTP 在给定路由器上注册页面路由
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Get("/", s.handleIndex)
	r.Post("/", s.handleUpload)
	r.Post("/process", s.handleProcess)
	r.Get("/healthz", s.handleHealth)
}

// NewHTTPServer 根据服务配置创建 http.Server
func NewHTTPServer(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.WriteTimeoutSec) * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// requestLogger 使用 zap 记录每个请求
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("HTTP请求",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote", r.RemoteAddr),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("elapsed", time.Since(start)))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

var templateFuncs = template.FuncMap{
	"kb": func(size int64) string {
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	},
	// dict 把成对的参数组装成 map，用于向子模板传多个值
	"dict": func(pairs ...interface{}) (map[string]interface{}, error) {
		if len(pairs)%2 != 0 {
			return nil, fmt.Errorf("dict 参数个数必须为偶数")
		}
		m := make(map[string]interface{}, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			key, ok := pairs[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict 键必须是字符串: %v", pairs[i])
			}
			m[key] = pairs[i+1]
		}
		return m, nil
	},
}
