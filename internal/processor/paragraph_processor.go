package processor

import (
	"github.com/allanpk716/docx_hf_replacer/internal/domain"
	"github.com/allanpk716/docx_hf_replacer/internal/matcher"
)

// paragraphProcessor 段落和文本块级别的替换
type paragraphProcessor struct {
	textMatcher domain.TextMatcher
}

func newParagraphProcessor(textMatcher domain.TextMatcher) *paragraphProcessor {
	return &paragraphProcessor{textMatcher: textMatcher}
}

// ReplaceInRuns 在每个包含 OldText 的文本块中只替换第一次出现，并设置规则样式
//
// 替换只在单个文本块内进行：跨越两个文本块的 OldText 不会被找到。
// 不包含 OldText 的文本块（包括其样式）保持不变。返回被修改的文本块数量。
func (pp *paragraphProcessor) ReplaceInRuns(runs []domain.Run, rule domain.ReplacementRule) int {
	replaced := 0
	for _, run := range runs {
		text, ok := matcher.ReplaceFirst(pp.textMatcher, run.Text(), rule.OldText, rule.NewText)
		if !ok {
			continue
		}
		run.SetText(text)
		run.SetFont(rule.Font)
		replaced++
	}
	return replaced
}

// ReplaceInParagraphs 只进入整段文本包含 OldText 的段落，再逐个文本块检查
func (pp *paragraphProcessor) ReplaceInParagraphs(paragraphs []domain.Paragraph, rule domain.ReplacementRule) int {
	replaced := 0
	for _, paragraph := range paragraphs {
		if !matcher.Contains(pp.textMatcher, paragraph.Text(), rule.OldText) {
			continue
		}
		replaced += pp.ReplaceInRuns(paragraph.Runs(), rule)
	}
	return replaced
}
