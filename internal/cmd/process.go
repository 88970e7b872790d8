package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/allanpk716/docx_hf_replacer/internal/archive"
	"github.com/allanpk716/docx_hf_replacer/internal/config"
	"github.com/allanpk716/docx_hf_replacer/internal/domain"
)

func newProcessCommand(a *app) *cobra.Command {
	args := &ProcessArgs{}

	cmd := &cobra.Command{
		Use:   "process",
		Short: "离线处理本地压缩包或目录",
		Long: `按规则文件处理 zip 压缩包（或目录）中的全部 .docx 文档，输出新的 zip 压缩包。

示例:
  docx-replacer process --input batch.zip --rules rules.yaml
  docx-replacer process --input ./docs --rules rules.json --output out.zip`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := a.process(cmd.Context(), args)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "处理完成: %d 个文档, %d 处替换 -> %s\n",
				len(result.Documents), result.Replacements(), args.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&args.Input, "input", "i", "", "输入 zip 压缩包或包含 DOCX 文件的目录")
	cmd.Flags().StringVarP(&args.Rules, "rules", "r", "", "规则文件路径（JSON 或 YAML）")
	cmd.Flags().StringVarP(&args.Output, "output", "o", "", "输出 zip 路径，默认 <输入>_processed.zip")
	cmd.Flags().StringSliceVar(&args.Selected, "select", nil, "只处理指定的文档（压缩包内路径，可重复）")
	return cmd
}

// process 把输入放入上传目录后执行与网页界面相同的批量处理
func (a *app) process(ctx context.Context, args *ProcessArgs) (*domain.BatchResult, error) {
	if err := ValidateArgs(args); err != nil {
		return nil, fmt.Errorf("参数验证失败: %w", err)
	}

	rules, err := config.LoadRuleFile(args.Rules, a.cfg.Defaults.Font())
	if err != nil {
		return nil, err
	}
	a.logger.Info("加载规则文件",
		zap.String("rules", args.Rules),
		zap.Int("header_rules", len(rules.Header)),
		zap.Int("footer_rules", len(rules.Footer)))

	if err := a.configManager.EnsureDirs(a.cfg); err != nil {
		return nil, err
	}
	store := archive.NewStore(a.cfg.Storage, a.logger)

	storedName, err := a.stageInput(store, args.Input)
	if err != nil {
		return nil, err
	}

	result, err := a.newBatchProcessor(store).Process(ctx, storedName, rules, args.Selected)
	if err != nil {
		return nil, fmt.Errorf("处理失败: %w", err)
	}

	if dir := filepath.Dir(args.Output); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(args.Output, result.Data, 0644); err != nil {
		return nil, fmt.Errorf("写入输出文件失败: %w", err)
	}

	a.logger.Info("输出文件已生成",
		zap.String("output", args.Output),
		zap.String("batch_id", result.ID),
		zap.Int("documents", len(result.Documents)))
	return result, nil
}

// stageInput 把输入压缩包（或目录打包后的压缩包）保存到上传目录
func (a *app) stageInput(store *archive.Store, input string) (string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return "", fmt.Errorf("读取输入失败: %w", err)
	}

	if info.IsDir() {
		data, count, err := packDirectory(input)
		if err != nil {
			return "", err
		}
		a.logger.Info(fmt.Sprintf("找到 %d 个 DOCX 文件", count), zap.String("dir", input))
		return store.SaveUpload(archiveNameForDir(input), bytes.NewReader(data))
	}

	file, err := os.Open(input)
	if err != nil {
		return "", fmt.Errorf("打开输入文件失败: %w", err)
	}
	defer file.Close()
	return store.SaveUpload(filepath.Base(input), file)
}
