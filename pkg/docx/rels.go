package docx

import (
	"path"
	"strings"

	"github.com/beevik/etree"
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsXML = "http://www.w3.org/XML/1998/namespace"

	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeHeader         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relTypeFooter         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"

	defaultMainPart = "word/document.xml"
)

// relationship 表示 .rels 中的一条关系
type relationship struct {
	ID         string
	Type       string
	Target     string
	TargetMode string
}

// parseRelationships 解析关系部件，返回 Id -> 关系 的映射
func parseRelationships(content []byte) (map[string]relationship, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, err
	}

	rels := make(map[string]relationship)
	root := doc.Root()
	if root == nil {
		return rels, nil
	}

	for _, el := range root.ChildElements() {
		if el.Tag != "Relationship" {
			continue
		}
		rel := relationship{
			ID:         el.SelectAttrValue("Id", ""),
			Type:       el.SelectAttrValue("Type", ""),
			Target:     el.SelectAttrValue("Target", ""),
			TargetMode: el.SelectAttrValue("TargetMode", ""),
		}
		if rel.ID != "" {
			rels[rel.ID] = rel
		}
	}
	return rels, nil
}

// relsPartName 返回部件对应的关系部件路径，例如 word/document.xml -> word/_rels/document.xml.rels
func relsPartName(partName string) string {
	dir, base := path.Split(partName)
	return path.Join(dir, "_rels", base+".rels")
}

// resolveTarget 将关系目标解析为包内的绝对部件名（不带前导斜杠）
func resolveTarget(sourcePart, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Join(path.Dir(sourcePart), target)
}

// namespacePrefix 在根元素上查找命名空间 uri 所绑定的前缀
func namespacePrefix(root *etree.Element, uri, fallback string) string {
	if root == nil {
		return fallback
	}
	for _, attr := range root.Attr {
		if attr.Space == "xmlns" && attr.Value == uri {
			return attr.Key
		}
	}
	return fallback
}
