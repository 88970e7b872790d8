package archive

import (
	"bytes"
	"strings"

	ndocx "github.com/nguyenthenguyen/docx"

	"github.com/allanpk716/docx_hf_replacer/internal/domain"
	"github.com/allanpk716/docx_hf_replacer/pkg/docx"
)

const previewLimit = 80

// inspectDocument 检查文档能否被打开，并提取第一个节的页眉文本作为预览
func inspectDocument(name string, content []byte) domain.DocumentInfo {
	info := domain.DocumentInfo{
		Name:     name,
		Size:     int64(len(content)),
		Readable: isReadable(content),
	}

	doc, err := docx.Open(content)
	if err != nil {
		info.Readable = false
		return info
	}
	if sections := doc.Sections(); len(sections) > 0 {
		info.HeaderPreview = preview(sections[0].Header().Text())
	}
	return info
}

// isReadable 使用独立的 docx 读取器校验文档结构
func isReadable(content []byte) bool {
	reader, err := ndocx.ReadDocxFromMemory(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return false
	}
	defer reader.Close()
	return reader.Editable().GetContent() != ""
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > previewLimit {
		return string(runes[:previewLimit]) + "…"
	}
	return text
}
