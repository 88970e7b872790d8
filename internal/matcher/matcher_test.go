package matcher

import (
	"testing"

	"github.com/allanpk716/docx_hf_replacer/internal/domain"
)

func TestTextMatcher_FindFirst(t *testing.T) {
	m := NewTextMatcher()

	tests := []struct {
		name      string
		content   string
		keyword   string
		wantOK    bool
		wantStart int
		wantEnd   int
	}{
		{"简单匹配", "Company: Acme", "Acme", true, 9, 13},
		{"多次出现取第一次", "Acme and Acme", "Acme", true, 0, 4},
		{"未找到", "Company: Globex", "Acme", false, 0, 0},
		{"空关键词", "Company", "", false, 0, 0},
		{"中文", "公司：测试公司", "公司", true, 0, len("公司")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, ok := m.FindFirst(tt.content, tt.keyword)
			if ok != tt.wantOK {
				t.Fatalf("期望 ok=%v，实际 %v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if match.StartPos != tt.wantStart || match.EndPos != tt.wantEnd {
				t.Errorf("期望位置 [%d,%d)，实际 [%d,%d)", tt.wantStart, tt.wantEnd, match.StartPos, match.EndPos)
			}
		})
	}
}

func TestTextMatcher_ReplaceMatch(t *testing.T) {
	m := NewTextMatcher()

	got := m.ReplaceMatch("Company: Acme", domain.Match{Keyword: "Acme", Replacement: "Globex", StartPos: 9, EndPos: 13})
	if got != "Company: Globex" {
		t.Errorf("期望 'Company: Globex'，实际 %q", got)
	}

	// 越界的匹配项不修改内容
	got = m.ReplaceMatch("short", domain.Match{Replacement: "x", StartPos: 2, EndPos: 20})
	if got != "short" {
		t.Errorf("越界匹配不应修改内容，实际 %q", got)
	}
}

func TestReplaceFirst(t *testing.T) {
	m := NewTextMatcher()

	tests := []struct {
		name    string
		content string
		oldText string
		newText string
		want    string
		wantOK  bool
	}{
		{"只替换第一次", "a-a-a", "a", "b", "b-a-a", true},
		{"替换为更长文本", "Acme", "Acme", "Acme Corp", "Acme Corp", true},
		{"替换为空", "Company: Acme", ": Acme", "", "Company", true},
		{"未找到", "Globex", "Acme", "x", "Globex", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ReplaceFirst(m, tt.content, tt.oldText, tt.newText)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("期望 (%q, %v)，实际 (%q, %v)", tt.want, tt.wantOK, got, ok)
			}
		})
	}
}

func TestTextMatcher_Count(t *testing.T) {
	m := NewTextMatcher()

	if got := m.Count("Acme Acme Acme", "Acme"); got != 3 {
		t.Errorf("期望 3，实际 %d", got)
	}
	if got := m.Count("Acme", ""); got != 0 {
		t.Errorf("空关键词期望 0，实际 %d", got)
	}
	if !Contains(m, "Company: Acme", "Acme") {
		t.Error("期望包含 Acme")
	}
}
