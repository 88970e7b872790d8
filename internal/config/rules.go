package config

import (
	"fmt"
	"os"

	"github.com/allanpk716/docx_hf_replacer/internal/domain"
)

// RuleEntry 规则文件中的一条替换规则
type RuleEntry struct {
	ElementType string `json:"element_type" yaml:"element_type"`
	OldText     string `json:"old_text" yaml:"old_text"`
	NewText     string `json:"new_text" yaml:"new_text"`
	FontName    string `json:"font_name,omitempty" yaml:"font_name,omitempty"`
	FontSize    int    `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	Bold        bool   `json:"bold,omitempty" yaml:"bold,omitempty"`
}

// RuleFile 命令行批量模式使用的规则文件
type RuleFile struct {
	HeaderRules []RuleEntry `json:"header_rules" yaml:"header_rules"`
	FooterRules []RuleEntry `json:"footer_rules" yaml:"footer_rules"`
}

// LoadRuleFile 加载规则文件，缺失的样式字段使用 defaults
func LoadRuleFile(filePath string, defaults domain.Font) (domain.RuleSet, error) {
	if filePath == "" {
		return domain.RuleSet{}, fmt.Errorf("规则文件路径不能为空")
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return domain.RuleSet{}, fmt.Errorf("读取规则文件失败: %w", err)
	}

	var file RuleFile
	if err := unmarshalByExt(filePath, data, &file); err != nil {
		return domain.RuleSet{}, err
	}

	return file.ToRuleSet(defaults)
}

// ToRuleSet 转换并校验规则，保持文件中的顺序
func (rf *RuleFile) ToRuleSet(defaults domain.Font) (domain.RuleSet, error) {
	header, err := convertEntries("header_rules", rf.HeaderRules, defaults)
	if err != nil {
		return domain.RuleSet{}, err
	}
	footer, err := convertEntries("footer_rules", rf.FooterRules, defaults)
	if err != nil {
		return domain.RuleSet{}, err
	}

	rules := domain.RuleSet{Header: header, Footer: footer}
	if rules.Len() == 0 {
		return domain.RuleSet{}, fmt.Errorf("%w: 规则列表不能为空", domain.ErrInvalidRule)
	}
	return rules, nil
}

func convertEntries(field string, entries []RuleEntry, defaults domain.Font) ([]domain.ReplacementRule, error) {
	rules := make([]domain.ReplacementRule, 0, len(entries))
	for i, entry := range entries {
		target, err := domain.ParseTargetKind(entry.ElementType)
		if err != nil {
			return nil, fmt.Errorf("%s 第 %d 条规则: %w", field, i+1, err)
		}
		if entry.OldText == "" {
			return nil, fmt.Errorf("%w: %s 第 %d 条规则的 old_text 不能为空", domain.ErrInvalidRule, field, i+1)
		}

		font := domain.Font{Name: entry.FontName, SizePt: entry.FontSize, Bold: entry.Bold}
		if font.Name == "" {
			font.Name = defaults.Name
		}
		if font.SizePt <= 0 {
			font.SizePt = defaults.SizePt
		}
		if !domain.ValidFontSize(font.SizePt) {
			return nil, fmt.Errorf("%w: %s 第 %d 条规则的字号 %d 超出范围 1-%d",
				domain.ErrInvalidRule, field, i+1, entry.FontSize, domain.MaxFontSizePt)
		}

		rules = append(rules, domain.ReplacementRule{
			Target:  target,
			OldText: entry.OldText,
			NewText: entry.NewText,
			Font:    font,
		})
	}
	return rules, nil
}
