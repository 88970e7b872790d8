package docx

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Section 文档中的一个节，每个节可以有独立的页眉和页脚
type Section struct {
	index        int
	header       *HeaderFooter
	footer       *HeaderFooter
	headerLinked bool
	footerLinked bool
}

// Index 节在文档中的序号，从 0 开始
func (s *Section) Index() int {
	return s.index
}

// Header 返回该节的默认页眉；没有任何定义时返回空的页眉
func (s *Section) Header() *HeaderFooter {
	if s.header == nil {
		return emptyHeaderFooter
	}
	return s.header
}

// Footer 返回该节的默认页脚；没有任何定义时返回空的页脚
func (s *Section) Footer() *HeaderFooter {
	if s.footer == nil {
		return emptyHeaderFooter
	}
	return s.footer
}

// HeaderLinkedToPrevious 该节页眉是否沿用前一节
func (s *Section) HeaderLinkedToPrevious() bool {
	return s.headerLinked
}

// FooterLinkedToPrevious 该节页脚是否沿用前一节
func (s *Section) FooterLinkedToPrevious() bool {
	return s.footerLinked
}

// HeaderFooter 页眉或页脚部件（word/headerN.xml、word/footerN.xml）
type HeaderFooter struct {
	name  string
	xml   *etree.Document
	root  *etree.Element
	w     string
	dirty bool
}

// emptyHeaderFooter 没有定义时使用的空部件，不包含任何段落和表格
var emptyHeaderFooter = &HeaderFooter{}

func newHeaderFooter(name string, content []byte) (*HeaderFooter, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", name, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%s 为空", name)
	}
	return &HeaderFooter{
		name: name,
		xml:  doc,
		root: root,
		w:    namespacePrefix(root, nsW, "w"),
	}, nil
}

// Name 部件在包内的路径，空部件返回空字符串
func (hf *HeaderFooter) Name() string {
	return hf.name
}

// IsEmpty 是否为未定义的空部件
func (hf *HeaderFooter) IsEmpty() bool {
	return hf.root == nil
}

// Paragraphs 返回部件中的顶层段落
func (hf *HeaderFooter) Paragraphs() []*Paragraph {
	if hf.root == nil {
		return nil
	}
	return paragraphsOf(hf.root, hf)
}

// Tables 返回部件中的顶层表格
func (hf *HeaderFooter) Tables() []*Table {
	if hf.root == nil {
		return nil
	}
	return tablesOf(hf.root, hf)
}

// Text 提取部件的纯文本，段落之间以换行分隔，包含表格单元格中的段落
func (hf *HeaderFooter) Text() string {
	if hf.root == nil {
		return ""
	}
	var lines []string
	for _, el := range hf.root.ChildElements() {
		if el.Space != hf.w {
			continue
		}
		switch el.Tag {
		case "p":
			lines = append(lines, (&Paragraph{el: el, part: hf}).Text())
		case "tbl":
			for _, row := range (&Table{el: el, part: hf}).Rows() {
				for _, cell := range row.Cells() {
					for _, p := range cell.Paragraphs() {
						lines = append(lines, p.Text())
					}
				}
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (hf *HeaderFooter) markDirty() {
	if hf.root != nil {
		hf.dirty = true
	}
}

func paragraphsOf(parent *etree.Element, part *HeaderFooter) []*Paragraph {
	var paragraphs []*Paragraph
	for _, el := range parent.ChildElements() {
		if el.Space == part.w && el.Tag == "p" {
			paragraphs = append(paragraphs, &Paragraph{el: el, part: part})
		}
	}
	return paragraphs
}

func tablesOf(parent *etree.Element, part *HeaderFooter) []*Table {
	var tables []*Table
	for _, el := range parent.ChildElements() {
		if el.Space == part.w && el.Tag == "tbl" {
			tables = append(tables, &Table{el: el, part: part})
		}
	}
	return tables
}
