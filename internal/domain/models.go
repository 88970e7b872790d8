package domain

import (
	"context"
	"fmt"
	"strings"
)

// TargetKind 替换规则作用的元素类型
type TargetKind string

const (
	// TargetParagraph 作用于页眉/页脚中的段落
	TargetParagraph TargetKind = "Paragraph"
	// TargetTable 作用于页眉/页脚中表格单元格内的段落
	TargetTable TargetKind = "Table"
)

// ParseTargetKind 解析表单或配置文件中的元素类型，大小写不敏感
func ParseTargetKind(s string) (TargetKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paragraph":
		return TargetParagraph, nil
	case "table":
		return TargetTable, nil
	}
	return "", fmt.Errorf("%w: 未知的元素类型 %q", ErrInvalidRule, s)
}

// 默认样式，表单中样式字段缺失时使用
const (
	DefaultFontName = "Calibri"
	DefaultFontSize = 11
)

// MaxFontSizePt Word 允许的最大字号，w:sz 以半磅计最大为 3276
const MaxFontSizePt = 1638

// ValidFontSize 判断字号是否在 1..MaxFontSizePt 之间
func ValidFontSize(sizePt int) bool {
	return sizePt > 0 && sizePt <= MaxFontSizePt
}

// Font 替换后文本块使用的样式
type Font struct {
	Name   string
	SizePt int
	Bold   bool
}

// DefaultFont 返回默认样式
func DefaultFont() Font {
	return Font{Name: DefaultFontName, SizePt: DefaultFontSize}
}

// ReplacementRule 一条查找替换规则
type ReplacementRule struct {
	Target  TargetKind
	OldText string
	NewText string
	Font    Font
}

// RuleSet 按顺序应用的页眉规则和页脚规则
type RuleSet struct {
	Header []ReplacementRule
	Footer []ReplacementRule
}

// Len 规则总数
func (rs RuleSet) Len() int {
	return len(rs.Header) + len(rs.Footer)
}

// Run 文本块：段落中样式一致的最小文本单元
type Run interface {
	Text() string
	SetText(text string)
	SetFont(font Font)
}

// Paragraph 段落
type Paragraph interface {
	Text() string
	Runs() []Run
}

// Cell 表格单元格
type Cell interface {
	Paragraphs() []Paragraph
}

// Row 表格行
type Row interface {
	Cells() []Cell
}

// Table 表格
type Table interface {
	Rows() []Row
}

// Story 页眉或页脚的内容
type Story interface {
	Paragraphs() []Paragraph
	Tables() []Table
}

// Section 文档的节
type Section interface {
	Header() Story
	Footer() Story
}

// Document 可修改并保存的文档
type Document interface {
	Sections() []Section
	Save() ([]byte, error)
}

// DocumentLoader 从字节加载文档
type DocumentLoader interface {
	Load(data []byte) (Document, error)
}

// TextMatcher 文本匹配器接口
type TextMatcher interface {
	FindFirst(content, keyword string) (Match, bool)
	ReplaceMatch(content string, match Match) string
	Count(content, keyword string) int
}

// DocumentProcessor 文档处理器接口
type DocumentProcessor interface {
	ApplyRules(doc Document, rules RuleSet) int
	ProcessDocument(ctx context.Context, name string, data []byte, rules RuleSet) ([]byte, ProcessResult, error)
}

// Match 表示一个匹配项
type Match struct {
	Keyword     string // 查找的文本
	Replacement string // 替换值
	StartPos    int    // 开始位置（字节）
	EndPos      int    // 结束位置（字节）
}

// ProcessResult 单个文档的处理结果
type ProcessResult struct {
	Name         string
	Replacements int
	OutputPath   string
}

// BatchResult 一次批量处理的结果
type BatchResult struct {
	ID           string
	ArchiveName  string
	DownloadName string
	Data         []byte
	Documents    []ProcessResult
}

// Replacements 所有文档被替换的文本块总数
func (br *BatchResult) Replacements() int {
	total := 0
	for _, doc := range br.Documents {
		total += doc.Replacements
	}
	return total
}

// DocumentInfo 上传压缩包中的文档信息
type DocumentInfo struct {
	Name          string
	Size          int64
	Readable      bool
	HeaderPreview string
}
