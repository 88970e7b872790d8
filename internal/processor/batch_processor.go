package processor

import (
	"archive/zip"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/allanpk716/docx_hf_replacer/internal/archive"
	"github.com/allanpk716/docx_hf_replacer/internal/domain"
)

// ArchiveStore 批量处理依赖的暂存目录操作
type ArchiveStore interface {
	Open(storedName string) (*zip.ReadCloser, error)
	WriteProcessed(member string, data []byte) (string, error)
}

// BatchProcessor 批量处理器：对压缩包中的每个文档应用同一组规则并重新打包
type BatchProcessor struct {
	store     ArchiveStore
	processor domain.DocumentProcessor
	logger    *zap.Logger
}

// NewBatchProcessor 创建新的批量处理器
func NewBatchProcessor(store ArchiveStore, processor domain.DocumentProcessor, logger *zap.Logger) *BatchProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchProcessor{
		store:     store,
		processor: processor,
		logger:    logger,
	}
}

// Process 处理已上传的压缩包并返回输出压缩包
//
// selected 非空时只处理其中列出的文档。任何一个文档失败都会中止整批处理，
// 已经写入处理结果目录的文件不会回滚。
func (bp *BatchProcessor) Process(ctx context.Context, storedName string, rules domain.RuleSet, selected []string) (*domain.BatchResult, error) {
	reader, err := bp.store.Open(storedName)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	result := &domain.BatchResult{
		ID:           uuid.NewString(),
		ArchiveName:  storedName,
		DownloadName: archive.GenerateOutputFileName(storedName),
	}
	logger := bp.logger.With(zap.String("batch_id", result.ID), zap.String("archive", storedName))

	members := documentMembers(reader.File, selected)
	if len(members) == 0 {
		logger.Warn("压缩包中没有需要处理的文档")
	}

	start := time.Now()
	var outputs []string
	for i, file := range members {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		logger.Info(fmt.Sprintf("[%d/%d] 处理文件: %s", i+1, len(members), file.Name))

		data, err := archive.ReadMember(file)
		if err != nil {
			return nil, domain.NewDocumentError(file.Name, "load", err)
		}

		output, docResult, err := bp.processor.ProcessDocument(ctx, file.Name, data, rules)
		if err != nil {
			logger.Error("处理文件失败", zap.String("document", file.Name), zap.Error(err))
			return nil, err
		}

		path, err := bp.store.WriteProcessed(file.Name, output)
		if err != nil {
			return nil, domain.NewDocumentError(file.Name, "write", err)
		}
		docResult.OutputPath = path

		outputs = append(outputs, path)
		result.Documents = append(result.Documents, docResult)
	}

	result.Data, err = archive.BuildArchive(outputs)
	if err != nil {
		return nil, fmt.Errorf("打包输出文件失败: %w", err)
	}

	logger.Info("批量处理完成",
		zap.Int("documents", len(result.Documents)),
		zap.Int("replacements", result.Replacements()),
		zap.Int("header_rules", len(rules.Header)),
		zap.Int("footer_rules", len(rules.Footer)),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// documentMembers 按压缩包中的顺序筛选需要处理的文档
func documentMembers(files []*zip.File, selected []string) []*zip.File {
	var wanted map[string]bool
	if len(selected) > 0 {
		wanted = make(map[string]bool, len(selected))
		for _, name := range selected {
			wanted[name] = true
		}
	}

	var members []*zip.File
	for _, file := range files {
		if !archive.IsDocumentMember(file.Name) {
			continue
		}
		if wanted != nil && !wanted[file.Name] {
			continue
		}
		members = append(members, file)
	}
	return members
}
