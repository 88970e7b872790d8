package web

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/allanpk716/docx_hf_replacer/internal/domain"
)

// 表单字段前缀
const (
	HeaderPrefix = "header"
	FooterPrefix = "footer"
)

// DecodeRules 把按下标对齐的表单数组解析为替换规则
//
// 第 i 条规则缺少 new_text 或 element_type 时整条跳过；old_text 为空的规则也跳过。
// 字体名、字号缺失或为空时使用 defaults，bold 字段的值包含 "bold" 时加粗。
func DecodeRules(form url.Values, prefix string, defaults domain.Font) ([]domain.ReplacementRule, error) {
	oldTexts := form[prefix+"_old_text"]
	newTexts := form[prefix+"_new_text"]
	elementTypes := form[prefix+"_element_type"]
	fontNames := form[prefix+"_font_name"]
	fontSizes := form[prefix+"_font_size"]
	bolds := form[prefix+"_bold"]

	var rules []domain.ReplacementRule
	for i, oldText := range oldTexts {
		if i >= len(newTexts) || i >= len(elementTypes) {
			continue
		}
		if oldText == "" {
			continue
		}

		target, err := domain.ParseTargetKind(elementTypes[i])
		if err != nil {
			return nil, fmt.Errorf("%s 规则 %d: %w", prefix, i+1, err)
		}

		font := domain.Font{Name: defaults.Name, SizePt: defaults.SizePt}
		if i < len(fontNames) && strings.TrimSpace(fontNames[i]) != "" {
			font.Name = strings.TrimSpace(fontNames[i])
		}
		if i < len(fontSizes) && strings.TrimSpace(fontSizes[i]) != "" {
			size, err := strconv.Atoi(strings.TrimSpace(fontSizes[i]))
			if err != nil || !domain.ValidFontSize(size) {
				return nil, fmt.Errorf("%s 规则 %d: %w: 字号 %q 无效", prefix, i+1, domain.ErrInvalidRule, fontSizes[i])
			}
			font.SizePt = size
		}
		font.Bold = i < len(bolds) && strings.Contains(bolds[i], "bold")

		rules = append(rules, domain.ReplacementRule{
			Target:  target,
			OldText: oldText,
			NewText: newTexts[i],
			Font:    font,
		})
	}
	return rules, nil
}

// DecodeRuleSet 解析页眉和页脚两组规则
func DecodeRuleSet(form url.Values, defaults domain.Font) (domain.RuleSet, error) {
	header, err := DecodeRules(form, HeaderPrefix, defaults)
	if err != nil {
		return domain.RuleSet{}, err
	}
	footer, err := DecodeRules(form, FooterPrefix, defaults)
	if err != nil {
		return domain.RuleSet{}, err
	}
	return domain.RuleSet{Header: header, Footer: footer}, nil
}
