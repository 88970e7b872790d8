package docx

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allanpk716/docx_hf_replacer/internal/testutil"
)

func openFixture(t *testing.T, doc testutil.Document) *Document {
	t.Helper()
	d, err := Open(testutil.BuildDocx(doc))
	require.NoError(t, err)
	return d
}

// TestOpen_InvalidData 测试打开非 ZIP 数据
func TestOpen_InvalidData(t *testing.T) {
	_, err := Open([]byte("not a zip"))
	assert.Error(t, err)
}

// TestOpen_MissingMainPart 测试缺少 document.xml 的压缩包
func TestOpen_MissingMainPart(t *testing.T) {
	data := testutil.BuildZip(testutil.Entry{Name: "readme.txt", Data: []byte("hello")})
	_, err := Open(data)
	assert.Error(t, err)
}

// TestSections_HeaderFooter 测试节与页眉页脚的解析
func TestSections_HeaderFooter(t *testing.T) {
	d := openFixture(t, testutil.Document{
		Body: testutil.P("正文"),
		Sections: []testutil.Section{{
			Header: testutil.P("Company: ", "Acme"),
			Footer: testutil.P("第 1 页"),
		}},
	})

	sections := d.Sections()
	require.Len(t, sections, 1)

	header := sections[0].Header()
	assert.Equal(t, "word/header1.xml", header.Name())
	paragraphs := header.Paragraphs()
	require.Len(t, paragraphs, 1)
	assert.Equal(t, "Company: Acme", paragraphs[0].Text())
	require.Len(t, paragraphs[0].Runs(), 2)
	assert.Equal(t, "Acme", paragraphs[0].Runs()[1].Text())

	assert.Equal(t, "第 1 页", sections[0].Footer().Text())
}

// TestSections_LinkedToPrevious 测试未定义页眉的节沿用前一节
func TestSections_LinkedToPrevious(t *testing.T) {
	d := openFixture(t, testutil.Document{
		Sections: []testutil.Section{
			{Header: testutil.P("first")},
			{},
			{Header: testutil.P("third")},
		},
	})

	sections := d.Sections()
	require.Len(t, sections, 3)
	assert.Same(t, sections[0].Header(), sections[1].Header())
	assert.True(t, sections[1].HeaderLinkedToPrevious())
	assert.False(t, sections[2].HeaderLinkedToPrevious())
	assert.Equal(t, "third", sections[2].Header().Text())
}

// TestSections_NoDefinition 测试没有任何页眉定义时返回空部件
func TestSections_NoDefinition(t *testing.T) {
	d := openFixture(t, testutil.Document{Body: testutil.P("正文")})

	header := d.Sections()[0].Header()
	assert.True(t, header.IsEmpty())
	assert.Empty(t, header.Paragraphs())
	assert.Empty(t, header.Tables())
	assert.False(t, d.Modified())
}

// TestTables 测试表格的行、单元格和段落
func TestTables(t *testing.T) {
	d := openFixture(t, testutil.Document{
		Sections: []testutil.Section{{
			Header: testutil.Tbl([]string{"A1", "B1"}, []string{"A2", "B2"}),
		}},
	})

	tables := d.Sections()[0].Header().Tables()
	require.Len(t, tables, 1)
	rows := tables[0].Rows()
	require.Len(t, rows, 2)
	cells := rows[1].Cells()
	require.Len(t, cells, 2)
	assert.Equal(t, "B2", cells[1].Text())
	assert.Equal(t, "A1\nB1\nA2\nB2", d.Sections()[0].Header().Text())
}

// TestRun_Text 测试特殊内容的文本映射
func TestRun_Text(t *testing.T) {
	run := `<w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t><w:br w:type="page"/><w:noBreakHyphen/></w:r>`
	d := openFixture(t, testutil.Document{
		Sections: []testutil.Section{{Header: testutil.PRaw(run)}},
	})

	runs := d.Sections()[0].Header().Paragraphs()[0].Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "a\tb\nc-", runs[0].Text())
}

// TestRun_SetText 测试替换文本保留 rPr 并正确处理空白
func TestRun_SetText(t *testing.T) {
	d := openFixture(t, testutil.Document{
		Sections: []testutil.Section{{Header: testutil.PRaw(testutil.StyledR("old", "Arial", 20))}},
	})

	run := d.Sections()[0].Header().Paragraphs()[0].Runs()[0]
	run.SetText(" new\tvalue\nline ")

	assert.Equal(t, " new\tvalue\nline ", run.Text())
	xml := run.XML()
	assert.Contains(t, xml, `<w:rFonts w:ascii="Arial" w:hAnsi="Arial"/>`)
	assert.Contains(t, xml, `xml:space="preserve"`)
	assert.Contains(t, xml, "<w:tab/>")
	assert.Contains(t, xml, "<w:br/>")
	assert.True(t, d.Modified())
}

// TestRun_SetFont 测试字体设置覆盖四种脚本并保持 rPr 顺序
func TestRun_SetFont(t *testing.T) {
	d := openFixture(t, testutil.Document{
		Sections: []testutil.Section{{Header: testutil.PRaw(testutil.StyledR("Acme", "Times", 20))}},
	})

	run := d.Sections()[0].Header().Paragraphs()[0].Runs()[0]
	run.SetFont(Font{Name: "Arial", SizePt: 12, Bold: true})

	assert.Equal(t, Font{Name: "Arial", SizePt: 12, Bold: true}, run.Font())
	xml := run.XML()
	for _, attr := range []string{`w:ascii="Arial"`, `w:hAnsi="Arial"`, `w:eastAsia="Arial"`, `w:cs="Arial"`} {
		assert.Contains(t, xml, attr)
	}
	assert.Contains(t, xml, `<w:sz w:val="24"/>`)

	// rFonts < b < sz
	rFontsAt := strings.Index(xml, "<w:rFonts")
	boldAt := strings.Index(xml, "<w:b/>")
	sizeAt := strings.Index(xml, "<w:sz ")
	require.True(t, rFontsAt >= 0 && boldAt >= 0 && sizeAt >= 0, xml)
	assert.Less(t, rFontsAt, boldAt)
	assert.Less(t, boldAt, sizeAt)

	run.SetFont(Font{Name: "Arial", SizePt: 12, Bold: false})
	assert.False(t, run.Font().Bold)
	assert.Contains(t, run.XML(), `<w:b w:val="0"/>`)
}

// TestRun_SetFont_NoRPr 测试没有 rPr 的文本块
func TestRun_SetFont_NoRPr(t *testing.T) {
	d := openFixture(t, testutil.Document{
		Sections: []testutil.Section{{Header: testutil.P("plain")}},
	})

	run := d.Sections()[0].Header().Paragraphs()[0].Runs()[0]
	run.SetFont(Font{Name: "宋体", SizePt: 10})

	xml := run.XML()
	assert.True(t, strings.HasPrefix(xml, "<w:r><w:rPr>"), xml)
	assert.Equal(t, "plain", run.Text())
	assert.Equal(t, Font{Name: "宋体", SizePt: 10}, run.Font())
}

// TestRun_SetFont_SizeOutOfRange 测试超出范围的字号不写入 w:sz
func TestRun_SetFont_SizeOutOfRange(t *testing.T) {
	d := openFixture(t, testutil.Document{
		Sections: []testutil.Section{{Header: testutil.PRaw(testutil.StyledR("Acme", "Times", 20))}},
	})

	run := d.Sections()[0].Header().Paragraphs()[0].Runs()[0]
	for _, size := range []int{MaxSizePt + 1, math.MaxInt, -3} {
		run.SetFont(Font{Name: "Arial", SizePt: size})
		assert.Equal(t, 10, run.Font().SizePt)
		assert.Contains(t, run.XML(), `<w:sz w:val="20"/>`)
	}

	run.SetFont(Font{Name: "Arial", SizePt: MaxSizePt})
	assert.Contains(t, run.XML(), `<w:sz w:val="3276"/>`)
}

// TestSave_RoundTrip 测试保存后未修改的条目保持不变
func TestSave_RoundTrip(t *testing.T) {
	original := testutil.BuildDocx(testutil.Document{
		Body: testutil.P("正文"),
		Sections: []testutil.Section{{
			Header: testutil.P("Company: Acme"),
			Footer: testutil.P("footer"),
		}},
	})
	d, err := Open(original)
	require.NoError(t, err)

	d.Sections()[0].Header().Paragraphs()[0].Runs()[0].SetText("Company: Globex")

	saved, err := d.Save()
	require.NoError(t, err)

	before, beforeNames, err := testutil.ReadZip(original)
	require.NoError(t, err)
	after, afterNames, err := testutil.ReadZip(saved)
	require.NoError(t, err)

	assert.Equal(t, beforeNames, afterNames)
	for name, content := range before {
		if name == "word/header1.xml" {
			continue
		}
		assert.True(t, bytes.Equal(content, after[name]), "条目 %s 不应被修改", name)
	}
	assert.Contains(t, string(after["word/header1.xml"]), "Company: Globex")
	assert.True(t, strings.HasPrefix(string(after["word/header1.xml"]), "<?xml"))

	reopened, err := Open(saved)
	require.NoError(t, err)
	assert.Equal(t, "Company: Globex", reopened.Sections()[0].Header().Text())
}
