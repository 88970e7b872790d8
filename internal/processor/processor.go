package processor

import (
	"context"

	"go.uber.org/zap"

	"github.com/allanpk716/docx_hf_replacer/internal/domain"
	"github.com/allanpk716/docx_hf_replacer/internal/matcher"
)

// documentProcessor 文档处理器实现
type documentProcessor struct {
	loader     domain.DocumentLoader
	paragraphs *paragraphProcessor
	tables     *tableProcessor
	logger     *zap.Logger
}

// NewDocumentProcessor 创建新的文档处理器
func NewDocumentProcessor(loader domain.DocumentLoader, logger *zap.Logger) domain.DocumentProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	paragraphs := newParagraphProcessor(matcher.NewTextMatcher())
	return &documentProcessor{
		loader:     loader,
		paragraphs: paragraphs,
		tables:     newTableProcessor(paragraphs),
		logger:     logger,
	}
}

// ApplyRules 对文档的每个节依次应用页眉规则和页脚规则
//
// 规则按列表顺序执行，后面的规则可以改写前面规则写入的文本。
// 多个节共用同一页眉时，该页眉会被每个节各处理一次。
func (dp *documentProcessor) ApplyRules(doc domain.Document, rules domain.RuleSet) int {
	replaced := 0
	for _, section := range doc.Sections() {
		header := section.Header()
		for _, rule := range rules.Header {
			replaced += dp.applyRule(header, rule)
		}

		footer := section.Footer()
		for _, rule := range rules.Footer {
			replaced += dp.applyRule(footer, rule)
		}
	}
	return replaced
}

// applyRule 根据规则的元素类型选择段落替换或表格替换
func (dp *documentProcessor) applyRule(story domain.Story, rule domain.ReplacementRule) int {
	switch rule.Target {
	case domain.TargetParagraph:
		return dp.paragraphs.ReplaceInParagraphs(story.Paragraphs(), rule)
	case domain.TargetTable:
		return dp.tables.ReplaceInTables(story.Tables(), rule)
	}
	return 0
}

// ProcessDocument 加载文档、应用规则并返回保存后的字节
func (dp *documentProcessor) ProcessDocument(ctx context.Context, name string, data []byte, rules domain.RuleSet) ([]byte, domain.ProcessResult, error) {
	result := domain.ProcessResult{Name: name}

	select {
	case <-ctx.Done():
		return nil, result, ctx.Err()
	default:
	}

	doc, err := dp.loader.Load(data)
	if err != nil {
		return nil, result, domain.NewDocumentError(name, "load", err)
	}

	result.Replacements = dp.ApplyRules(doc, rules)

	output, err := doc.Save()
	if err != nil {
		return nil, result, domain.NewDocumentError(name, "save", err)
	}

	dp.logger.Debug("文档处理完成",
		zap.String("document", name),
		zap.Int("sections", len(doc.Sections())),
		zap.Int("replacements", result.Replacements))
	return output, result, nil
}
