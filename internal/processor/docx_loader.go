package processor

import (
	"github.com/allanpk716/docx_hf_replacer/internal/domain"
	"github.com/allanpk716/docx_hf_replacer/pkg/docx"
)

// docxLoader 基于 pkg/docx 的文档加载器
type docxLoader struct{}

// NewDocxLoader 创建 DOCX 文档加载器
func NewDocxLoader() domain.DocumentLoader {
	return docxLoader{}
}

// Load 从字节加载文档
func (docxLoader) Load(data []byte) (domain.Document, error) {
	doc, err := docx.Open(data)
	if err != nil {
		return nil, err
	}
	return &docxDocument{doc: doc}, nil
}

type docxDocument struct {
	doc *docx.Document
}

func (d *docxDocument) Sections() []domain.Section {
	sections := d.doc.Sections()
	result := make([]domain.Section, len(sections))
	for i, s := range sections {
		result[i] = docxSection{s}
	}
	return result
}

func (d *docxDocument) Save() ([]byte, error) {
	return d.doc.Save()
}

type docxSection struct{ s *docx.Section }

func (s docxSection) Header() domain.Story { return docxStory{s.s.Header()} }
func (s docxSection) Footer() domain.Story { return docxStory{s.s.Footer()} }

type docxStory struct{ hf *docx.HeaderFooter }

func (s docxStory) Paragraphs() []domain.Paragraph { return wrapParagraphs(s.hf.Paragraphs()) }
func (s docxStory) Tables() []domain.Table         { return wrapTables(s.hf.Tables()) }

type docxParagraph struct{ p *docx.Paragraph }

func (p docxParagraph) Text() string { return p.p.Text() }

func (p docxParagraph) Runs() []domain.Run {
	runs := p.p.Runs()
	result := make([]domain.Run, len(runs))
	for i, r := range runs {
		result[i] = docxRun{r}
	}
	return result
}

type docxRun struct{ r *docx.Run }

func (r docxRun) Text() string        { return r.r.Text() }
func (r docxRun) SetText(text string) { r.r.SetText(text) }

func (r docxRun) SetFont(font domain.Font) {
	r.r.SetFont(docx.Font{Name: font.Name, SizePt: font.SizePt, Bold: font.Bold})
}

type docxTable struct{ t *docx.Table }

func (t docxTable) Rows() []domain.Row {
	rows := t.t.Rows()
	result := make([]domain.Row, len(rows))
	for i, r := range rows {
		result[i] = docxRow{r}
	}
	return result
}

type docxRow struct{ r *docx.Row }

func (r docxRow) Cells() []domain.Cell {
	cells := r.r.Cells()
	result := make([]domain.Cell, len(cells))
	for i, c := range cells {
		result[i] = docxCell{c}
	}
	return result
}

type docxCell struct{ c *docx.Cell }

func (c docxCell) Paragraphs() []domain.Paragraph { return wrapParagraphs(c.c.Paragraphs()) }

func wrapParagraphs(paragraphs []*docx.Paragraph) []domain.Paragraph {
	result := make([]domain.Paragraph, len(paragraphs))
	for i, p := range paragraphs {
		result[i] = docxParagraph{p}
	}
	return result
}

func wrapTables(tables []*docx.Table) []domain.Table {
	result := make([]domain.Table, len(tables))
	for i, t := range tables {
		result[i] = docxTable{t}
	}
	return result
}
