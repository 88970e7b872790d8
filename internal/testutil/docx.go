// Package testutil 在内存中构造测试用的 DOCX 文档和 ZIP 压缩包
package testutil

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"strings"
)

const (
	nsDecl = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

	contentTypesHead = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
`

	packageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	relHeader = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relFooter = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
)

// Section 一个节的页眉页脚内容（w:hdr/w:ftr 内部的 XML），为空表示不定义（沿用前一节）
type Section struct {
	Header string
	Footer string
}

// Document 测试文档描述
type Document struct {
	Body     string
	Sections []Section
}

// Entry ZIP 条目
type Entry struct {
	Name string
	Data []byte
}

// P 构造一个段落，每个参数是一个文本块
func P(runs ...string) string {
	var sb strings.Builder
	sb.WriteString("<w:p>")
	for _, run := range runs {
		sb.WriteString(R(run))
	}
	sb.WriteString("</w:p>")
	return sb.String()
}

// R 构造一个不带样式的文本块
func R(text string) string {
	return fmt.Sprintf(`<w:r><w:t xml:space="preserve">%s</w:t></w:r>`, html.EscapeString(text))
}

// StyledR 构造一个带字体、字号的文本块
func StyledR(text, font string, halfPoints int) string {
	return fmt.Sprintf(`<w:r><w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s"/><w:sz w:val="%d"/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r>`,
		font, font, halfPoints, html.EscapeString(text))
}

// PRaw 用已经构造好的文本块 XML 组成段落
func PRaw(runs ...string) string {
	return "<w:p>" + strings.Join(runs, "") + "</w:p>"
}

// Tbl 构造表格，每行是若干单元格，每个单元格是一段文本
func Tbl(rows ...[]string) string {
	var sb strings.Builder
	sb.WriteString("<w:tbl><w:tblPr/><w:tblGrid/>")
	for _, row := range rows {
		sb.WriteString("<w:tr>")
		for _, cell := range row {
			sb.WriteString("<w:tc><w:tcPr/>")
			sb.WriteString(P(cell))
			sb.WriteString("</w:tc>")
		}
		sb.WriteString("</w:tr>")
	}
	sb.WriteString("</w:tbl>")
	return sb.String()
}

// BuildDocx 构造一个最小可用的 DOCX 文档
func BuildDocx(doc Document) []byte {
	if len(doc.Sections) == 0 {
		doc.Sections = []Section{{}}
	}

	var entries []Entry
	var overrides strings.Builder
	var rels strings.Builder
	rels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
`)

	refs := make([]string, len(doc.Sections))
	partNo := 0
	for i, section := range doc.Sections {
		var sb strings.Builder
		if section.Header != "" {
			partNo++
			id := fmt.Sprintf("rIdH%d", i+1)
			name := fmt.Sprintf("header%d.xml", partNo)
			fmt.Fprintf(&rels, `  <Relationship Id="%s" Type="%s" Target="%s"/>`+"\n", id, relHeader, name)
			fmt.Fprintf(&overrides, `  <Override PartName="/word/%s" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>`+"\n", name)
			entries = append(entries, Entry{Name: "word/" + name, Data: []byte(partXML("hdr", section.Header))})
			fmt.Fprintf(&sb, `<w:headerReference w:type="default" r:id="%s"/>`, id)
		}
		if section.Footer != "" {
			partNo++
			id := fmt.Sprintf("rIdF%d", i+1)
			name := fmt.Sprintf("footer%d.xml", partNo)
			fmt.Fprintf(&rels, `  <Relationship Id="%s" Type="%s" Target="%s"/>`+"\n", id, relFooter, name)
			fmt.Fprintf(&overrides, `  <Override PartName="/word/%s" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>`+"\n", name)
			entries = append(entries, Entry{Name: "word/" + name, Data: []byte(partXML("ftr", section.Footer))})
			fmt.Fprintf(&sb, `<w:footerReference w:type="default" r:id="%s"/>`, id)
		}
		refs[i] = sb.String()
	}
	rels.WriteString("</Relationships>")

	var body strings.Builder
	body.WriteString(doc.Body)
	last := len(doc.Sections) - 1
	for i := 0; i < last; i++ {
		fmt.Fprintf(&body, `<w:p><w:pPr><w:sectPr>%s<w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:pPr></w:p>`, refs[i])
	}
	fmt.Fprintf(&body, `<w:sectPr>%s<w:pgSz w:w="11906" w:h="16838"/></w:sectPr>`, refs[last])

	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document ` + nsDecl + `><w:body>` + body.String() + `</w:body></w:document>`

	all := []Entry{
		{Name: "[Content_Types].xml", Data: []byte(contentTypesHead + overrides.String() + "</Types>")},
		{Name: "_rels/.rels", Data: []byte(packageRels)},
		{Name: "word/document.xml", Data: []byte(documentXML)},
		{Name: "word/_rels/document.xml.rels", Data: []byte(rels.String())},
	}
	all = append(all, entries...)
	return BuildZip(all...)
}

// BuildZip 按给定顺序构造 ZIP 压缩包
func BuildZip(entries ...Entry) []byte {
	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)
	for _, entry := range entries {
		writer, err := zipWriter.Create(entry.Name)
		if err != nil {
			panic(fmt.Sprintf("创建ZIP条目失败 %s: %v", entry.Name, err))
		}
		if _, err := writer.Write(entry.Data); err != nil {
			panic(fmt.Sprintf("写入ZIP条目失败 %s: %v", entry.Name, err))
		}
	}
	if err := zipWriter.Close(); err != nil {
		panic(fmt.Sprintf("关闭ZIP写入器失败: %v", err))
	}
	return buf.Bytes()
}

// ReadZip 读取 ZIP 压缩包中的所有条目
func ReadZip(data []byte) (map[string][]byte, []string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, err
	}
	contents := make(map[string][]byte, len(reader.File))
	var names []string
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			return nil, nil, err
		}
		var buf bytes.Buffer
		_, err = buf.ReadFrom(rc)
		rc.Close()
		if err != nil {
			return nil, nil, err
		}
		contents[file.Name] = buf.Bytes()
		names = append(names, file.Name)
	}
	return contents, names, nil
}

func partXML(tag, inner string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:` + tag + ` ` + nsDecl + `>` + inner + `</w:` + tag + `>`
}
