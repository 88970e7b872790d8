// Package cmd 实现 docx-replacer 的命令行入口
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/allanpk716/docx_hf_replacer/internal/config"
)

// app 各子命令共享的运行时状态，由根命令的 PersistentPreRunE 初始化
type app struct {
	configFile    string
	verbose       bool
	configManager config.ConfigManager
	cfg           *config.Config
	logger        *zap.Logger
}

// NewRootCommand 创建根命令及全部子命令
func NewRootCommand() *cobra.Command {
	a := &app{configManager: config.NewConfigManager()}

	root := &cobra.Command{
		Use:   AppName,
		Short: "批量替换 DOCX 文档页眉页脚中的文本",
		Long: `docx-replacer 对 zip 压缩包中的 .docx 文档批量执行页眉、页脚文本替换，
并为替换后的文本设置字体、字号和加粗。

serve   启动网页界面：上传压缩包、填写规则、下载处理结果
process 离线处理本地压缩包或目录，规则来自 JSON/YAML 文件`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "配置文件路径（JSON 或 YAML），为空时使用默认配置")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "输出调试日志")

	root.AddCommand(newServeCommand(a))
	root.AddCommand(newProcessCommand(a))
	root.AddCommand(newVersionCommand())
	return root
}

// init 加载配置并创建日志
func (a *app) init() error {
	cfg := config.Default()
	if a.configFile != "" {
		loaded, err := a.configManager.LoadConfig(a.configFile)
		if err != nil {
			return fmt.Errorf("加载配置文件失败: %w", err)
		}
		cfg = loaded
	}
	a.cfg = cfg

	logger, err := NewLogger(cfg.LogLevel, a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger.With(zap.String("app", AppName))

	a.logger.Debug("配置加载完成",
		zap.String("config", a.configFile),
		zap.String("project", cfg.ProjectName),
		zap.String("upload_dir", cfg.Storage.UploadDir),
		zap.String("processed_dir", cfg.Storage.ProcessedDir))
	return nil
}
