package docx

import (
	"strconv"

	"github.com/beevik/etree"
)

// MaxSizePt w:sz 的上限为 3276 半磅
const MaxSizePt = 1638

// Font 文本块的字体设置
type Font struct {
	Name   string
	SizePt int
	Bold   bool
}

// rPrOrder CT_RPr 子元素的顺序，Word 对乱序的 rPr 会报文档损坏
var rPrOrder = []string{
	"rStyle", "rFonts", "b", "bCs", "i", "iCs", "caps", "smallCaps", "strike",
	"dstrike", "outline", "shadow", "emboss", "imprint", "noProof", "snapToGrid",
	"vanish", "webHidden", "color", "spacing", "w", "kern", "position", "sz", "szCs",
	"highlight", "u", "effect", "bdr", "shd", "fitText", "vertAlign", "rtl", "cs",
	"em", "lang", "eastAsianLayout", "specVanish", "oMath",
}

// themeFontAttrs 主题字体属性会覆盖显式字体名，设置字体时一并移除
var themeFontAttrs = []string{"asciiTheme", "hAnsiTheme", "eastAsiaTheme", "cstheme"}

// SetFont 设置文本块的字体、字号和加粗
//
// 字体名同时写入 ascii、hAnsi、eastAsia、cs 四种脚本，保证不同渲染引擎下显示一致。
// 字号不在 1..MaxSizePt 之间时保留原有字号。
func (r *Run) SetFont(font Font) {
	w := r.part.w
	rPr := r.getOrAddRPr()

	rFonts := getOrAddOrdered(rPr, w, "rFonts")
	for _, attr := range themeFontAttrs {
		rFonts.RemoveAttr(w + ":" + attr)
	}
	for _, attr := range []string{"ascii", "hAnsi", "eastAsia", "cs"} {
		rFonts.CreateAttr(w+":"+attr, font.Name)
	}

	if font.SizePt > 0 && font.SizePt <= MaxSizePt {
		sz := getOrAddOrdered(rPr, w, "sz")
		sz.CreateAttr(w+":val", strconv.Itoa(font.SizePt*2))
	}

	b := getOrAddOrdered(rPr, w, "b")
	if font.Bold {
		b.RemoveAttr(w + ":val")
	} else {
		b.CreateAttr(w+":val", "0")
	}

	r.part.markDirty()
}

// getOrAddRPr rPr 必须是 w:r 的第一个子元素
func (r *Run) getOrAddRPr() *etree.Element {
	w := r.part.w
	if rPr := childElement(r.el, w, "rPr"); rPr != nil {
		return rPr
	}
	rPr := etree.NewElement(w + ":rPr")
	r.el.InsertChildAt(0, rPr)
	return rPr
}

// getOrAddOrdered 查找子元素，不存在时按 rPrOrder 插入到正确位置
func getOrAddOrdered(rPr *etree.Element, w, tag string) *etree.Element {
	if el := childElement(rPr, w, tag); el != nil {
		return el
	}

	el := etree.NewElement(w + ":" + tag)
	successors := successorsOf(tag)
	for _, child := range rPr.ChildElements() {
		if child.Space == w && successors[child.Tag] {
			rPr.InsertChildAt(child.Index(), el)
			return el
		}
	}
	rPr.AddChild(el)
	return el
}

func successorsOf(tag string) map[string]bool {
	successors := make(map[string]bool)
	found := false
	for _, t := range rPrOrder {
		if found {
			successors[t] = true
		}
		if t == tag {
			found = true
		}
	}
	return successors
}

func halfPointsToPoints(val string) int {
	halfPoints, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return halfPoints / 2
}

// onOff 解析 ST_OnOff 取值
func onOff(val string) bool {
	switch val {
	case "0", "false", "off":
		return false
	}
	return true
}
