package matcher

import (
	"strings"

	"github.com/allanpk716/docx_hf_replacer/internal/domain"
)

// textMatcher 文本匹配器实现
type textMatcher struct{}

// NewTextMatcher 创建新的文本匹配器
func NewTextMatcher() domain.TextMatcher {
	return &textMatcher{}
}

// FindFirst 查找关键词在内容中的第一次出现，空关键词不匹配
func (tm *textMatcher) FindFirst(content, keyword string) (domain.Match, bool) {
	if keyword == "" {
		return domain.Match{}, false
	}

	start := strings.Index(content, keyword)
	if start < 0 {
		return domain.Match{}, false
	}

	return domain.Match{
		Keyword:  keyword,
		StartPos: start,
		EndPos:   start + len(keyword),
	}, true
}

// ReplaceMatch 用匹配项的替换值替换匹配位置的内容
func (tm *textMatcher) ReplaceMatch(content string, match domain.Match) string {
	if match.StartPos < 0 || match.EndPos > len(content) || match.StartPos > match.EndPos {
		return content
	}
	return content[:match.StartPos] + match.Replacement + content[match.EndPos:]
}

// Count 统计关键词出现的次数（不重叠）
func (tm *textMatcher) Count(content, keyword string) int {
	if keyword == "" {
		return 0
	}
	return strings.Count(content, keyword)
}

// ReplaceFirst 只替换第一次出现，返回替换后的内容以及是否发生替换
func ReplaceFirst(m domain.TextMatcher, content, oldText, newText string) (string, bool) {
	match, ok := m.FindFirst(content, oldText)
	if !ok {
		return content, false
	}
	match.Replacement = newText
	return m.ReplaceMatch(content, match), true
}

// Contains 报告内容中是否包含关键词
func Contains(m domain.TextMatcher, content, keyword string) bool {
	_, ok := m.FindFirst(content, keyword)
	return ok
}
