package processor

import (
	"github.com/allanpk716/docx_hf_replacer/internal/domain"
)

// tableProcessor 表格替换：逐行、逐单元格处理单元格中的段落
type tableProcessor struct {
	paragraphs *paragraphProcessor
}

func newTableProcessor(paragraphs *paragraphProcessor) *tableProcessor {
	return &tableProcessor{paragraphs: paragraphs}
}

// ReplaceInTables 对每个表格的每个单元格应用段落替换
func (tp *tableProcessor) ReplaceInTables(tables []domain.Table, rule domain.ReplacementRule) int {
	replaced := 0
	for _, table := range tables {
		for _, row := range table.Rows() {
			for _, cell := range row.Cells() {
				replaced += tp.paragraphs.ReplaceInParagraphs(cell.Paragraphs(), rule)
			}
		}
	}
	return replaced
}
