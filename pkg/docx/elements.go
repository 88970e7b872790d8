package docx

import (
	"strings"

	"github.com/beevik/etree"
)

// Paragraph 段落 (w:p)
type Paragraph struct {
	el   *etree.Element
	part *HeaderFooter
}

// Runs 返回段落的直接子文本块 (w:r)
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	for _, el := range p.el.ChildElements() {
		if el.Space == p.part.w && el.Tag == "r" {
			runs = append(runs, &Run{el: el, part: p.part})
		}
	}
	return runs
}

// Text 段落所有文本块拼接后的文本
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, run := range p.Runs() {
		sb.WriteString(run.Text())
	}
	return sb.String()
}

// Run 文本块 (w:r)，段落中样式一致的最小文本单元
type Run struct {
	el   *etree.Element
	part *HeaderFooter
}

// Text 返回文本块的文本；制表符为 \t，换行为 \n
func (r *Run) Text() string {
	w := r.part.w
	var sb strings.Builder
	for _, child := range r.el.ChildElements() {
		if child.Space != w {
			continue
		}
		switch child.Tag {
		case "t":
			sb.WriteString(child.Text())
		case "tab", "ptab":
			sb.WriteByte('\t')
		case "br":
			// 分页符和分栏符不产生文本
			if brType := child.SelectAttrValue(w+":type", "textWrapping"); brType == "textWrapping" {
				sb.WriteByte('\n')
			}
		case "cr":
			sb.WriteByte('\n')
		case "noBreakHyphen":
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// SetText 替换文本块的全部内容，保留 w:rPr
func (r *Run) SetText(text string) {
	w := r.part.w
	for _, child := range r.el.ChildElements() {
		if child.Space == w && child.Tag == "rPr" {
			continue
		}
		r.el.RemoveChild(child)
	}

	var pending strings.Builder
	flush := func() {
		if pending.Len() == 0 {
			return
		}
		s := pending.String()
		t := r.el.CreateElement(w + ":t")
		if strings.TrimSpace(s) != s {
			t.CreateAttr("xml:space", "preserve")
		}
		t.SetText(s)
		pending.Reset()
	}

	for _, ch := range text {
		switch ch {
		case '\t':
			flush()
			r.el.CreateElement(w + ":tab")
		case '\n', '\r':
			flush()
			r.el.CreateElement(w + ":br")
		default:
			pending.WriteRune(ch)
		}
	}
	flush()

	r.part.markDirty()
}

// Font 返回文本块当前的字体设置，未设置的字段为零值
func (r *Run) Font() Font {
	w := r.part.w
	var font Font
	rPr := childElement(r.el, w, "rPr")
	if rPr == nil {
		return font
	}
	if rFonts := childElement(rPr, w, "rFonts"); rFonts != nil {
		font.Name = rFonts.SelectAttrValue(w+":ascii", "")
	}
	if sz := childElement(rPr, w, "sz"); sz != nil {
		font.SizePt = halfPointsToPoints(sz.SelectAttrValue(w+":val", "0"))
	}
	if b := childElement(rPr, w, "b"); b != nil {
		font.Bold = onOff(b.SelectAttrValue(w+":val", "true"))
	}
	return font
}

// XML 返回文本块的 XML 序列化结果，用于比较和调试
func (r *Run) XML() string {
	doc := etree.NewDocument()
	doc.SetRoot(r.el.Copy())
	s, _ := doc.WriteToString()
	return s
}

// Table 表格 (w:tbl)
type Table struct {
	el   *etree.Element
	part *HeaderFooter
}

// Rows 返回表格的行
func (t *Table) Rows() []*Row {
	var rows []*Row
	for _, el := range t.el.ChildElements() {
		if el.Space == t.part.w && el.Tag == "tr" {
			rows = append(rows, &Row{el: el, part: t.part})
		}
	}
	return rows
}

// Row 表格行 (w:tr)
type Row struct {
	el   *etree.Element
	part *HeaderFooter
}

// Cells 返回行中的单元格，合并单元格按实际存在的 w:tc 返回
func (r *Row) Cells() []*Cell {
	var cells []*Cell
	for _, el := range r.el.ChildElements() {
		if el.Space == r.part.w && el.Tag == "tc" {
			cells = append(cells, &Cell{el: el, part: r.part})
		}
	}
	return cells
}

// Cell 单元格 (w:tc)
type Cell struct {
	el   *etree.Element
	part *HeaderFooter
}

// Paragraphs 返回单元格中的段落
func (c *Cell) Paragraphs() []*Paragraph {
	return paragraphsOf(c.el, c.part)
}

// Tables 返回单元格中嵌套的表格
func (c *Cell) Tables() []*Table {
	return tablesOf(c.el, c.part)
}

// Text 单元格文本，段落之间以换行分隔
func (c *Cell) Text() string {
	var lines []string
	for _, p := range c.Paragraphs() {
		lines = append(lines, p.Text())
	}
	return strings.Join(lines, "\n")
}
