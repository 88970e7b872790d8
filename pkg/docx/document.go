package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// Document 内存中的 DOCX 文档
//
// 只解析主文档部件和被节引用的页眉/页脚部件，其余条目在保存时原样复制。
type Document struct {
	reader   *zip.Reader
	entries  map[string]*zip.File
	mainPart string
	mainRels map[string]relationship
	sections []*Section
	parts    map[string]*HeaderFooter
}

// Open 从内存中的字节打开 DOCX 文档
func Open(data []byte) (*Document, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("打开DOCX文件失败: %w", err)
	}

	d := &Document{
		reader:  reader,
		entries: make(map[string]*zip.File, len(reader.File)),
		parts:   make(map[string]*HeaderFooter),
	}
	for _, file := range reader.File {
		d.entries[file.Name] = file
	}

	d.mainPart = d.findMainPart()
	if _, ok := d.entries[d.mainPart]; !ok {
		return nil, fmt.Errorf("未找到主文档部件: %s", d.mainPart)
	}

	if err := d.loadSections(); err != nil {
		return nil, err
	}
	return d, nil
}

// Sections 按文档顺序返回所有节
func (d *Document) Sections() []*Section {
	return d.sections
}

// Modified 报告是否有页眉/页脚部件被修改
func (d *Document) Modified() bool {
	for _, part := range d.parts {
		if part.dirty {
			return true
		}
	}
	return false
}

// Save 将文档序列化为字节
func (d *Document) Save() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write 将文档写入 w，未修改的条目按原始压缩数据复制
func (d *Document) Write(w io.Writer) error {
	zipWriter := zip.NewWriter(w)

	for _, file := range d.reader.File {
		part, ok := d.parts[file.Name]
		if !ok || !part.dirty {
			if err := zipWriter.Copy(file); err != nil {
				return fmt.Errorf("复制文件 %s 失败: %w", file.Name, err)
			}
			continue
		}

		content, err := part.xml.WriteToBytes()
		if err != nil {
			return fmt.Errorf("序列化部件 %s 失败: %w", file.Name, err)
		}

		header := file.FileHeader
		writer, err := zipWriter.CreateHeader(&header)
		if err != nil {
			return fmt.Errorf("创建ZIP文件头失败: %w", err)
		}
		if _, err := writer.Write(content); err != nil {
			return fmt.Errorf("写入文件内容失败: %w", err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("关闭ZIP写入器失败: %w", err)
	}
	return nil
}

// readEntry 读取包内条目的全部内容
func (d *Document) readEntry(name string) ([]byte, error) {
	file, ok := d.entries[name]
	if !ok {
		return nil, fmt.Errorf("条目不存在: %s", name)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("打开文件 %s 失败: %w", name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("读取文件 %s 失败: %w", name, err)
	}
	return content, nil
}

// findMainPart 通过 _rels/.rels 中的 officeDocument 关系定位主文档部件
func (d *Document) findMainPart() string {
	content, err := d.readEntry("_rels/.rels")
	if err != nil {
		return defaultMainPart
	}
	rels, err := parseRelationships(content)
	if err != nil {
		return defaultMainPart
	}
	for _, rel := range rels {
		if rel.Type == relTypeOfficeDocument {
			return resolveTarget("", rel.Target)
		}
	}
	return defaultMainPart
}

// loadSections 解析主文档中的节属性以及其引用的页眉页脚
func (d *Document) loadSections() error {
	content, err := d.readEntry(d.mainPart)
	if err != nil {
		return err
	}

	mainXML := etree.NewDocument()
	if err := mainXML.ReadFromBytes(content); err != nil {
		return fmt.Errorf("解析 %s 失败: %w", d.mainPart, err)
	}

	d.mainRels = map[string]relationship{}
	if relsContent, err := d.readEntry(relsPartName(d.mainPart)); err == nil {
		if d.mainRels, err = parseRelationships(relsContent); err != nil {
			return fmt.Errorf("解析文档关系失败: %w", err)
		}
	}

	root := mainXML.Root()
	if root == nil {
		return fmt.Errorf("%s 为空", d.mainPart)
	}
	w := namespacePrefix(root, nsW, "w")

	var body *etree.Element
	for _, el := range root.ChildElements() {
		if el.Space == w && el.Tag == "body" {
			body = el
			break
		}
	}
	if body == nil {
		return fmt.Errorf("%s 中缺少 body 元素", d.mainPart)
	}

	// 节属性只出现在 body 直接子段落的 pPr 中，或作为 body 的最后一个子元素
	var sectPrs []*etree.Element
	for _, el := range body.ChildElements() {
		switch {
		case el.Space == w && el.Tag == "p":
			if pPr := childElement(el, w, "pPr"); pPr != nil {
				if sectPr := childElement(pPr, w, "sectPr"); sectPr != nil {
					sectPrs = append(sectPrs, sectPr)
				}
			}
		case el.Space == w && el.Tag == "sectPr":
			sectPrs = append(sectPrs, el)
		}
	}

	for i, sectPr := range sectPrs {
		section := &Section{index: i}
		for _, ref := range sectPr.ChildElements() {
			if ref.Space != w || !isPrimaryReference(ref) {
				continue
			}
			switch ref.Tag {
			case "headerReference":
				if section.header, err = d.referencedPart(ref, relTypeHeader); err != nil {
					return err
				}
			case "footerReference":
				if section.footer, err = d.referencedPart(ref, relTypeFooter); err != nil {
					return err
				}
			}
		}

		// 未定义的页眉页脚沿用前一节（"链接到前一节"）
		if i > 0 {
			prev := d.sections[i-1]
			if section.header == nil {
				section.header = prev.header
				section.headerLinked = true
			}
			if section.footer == nil {
				section.footer = prev.footer
				section.footerLinked = true
			}
		}
		d.sections = append(d.sections, section)
	}

	return nil
}

// referencedPart 加载 headerReference/footerReference 引用的部件，相同部件只加载一次
func (d *Document) referencedPart(ref *etree.Element, relType string) (*HeaderFooter, error) {
	id := ""
	for _, attr := range ref.Attr {
		if attr.Key == "id" && attr.Space != "" {
			id = attr.Value
			break
		}
	}
	rel, ok := d.mainRels[id]
	if !ok || rel.Type != relType || strings.EqualFold(rel.TargetMode, "External") {
		return nil, nil
	}

	name := resolveTarget(d.mainPart, rel.Target)
	if part, ok := d.parts[name]; ok {
		return part, nil
	}

	content, err := d.readEntry(name)
	if err != nil {
		return nil, err
	}
	part, err := newHeaderFooter(name, content)
	if err != nil {
		return nil, err
	}
	d.parts[name] = part
	return part, nil
}

// isPrimaryReference 判断引用是否为默认（主）页眉页脚，缺省 type 视为 default
func isPrimaryReference(ref *etree.Element) bool {
	for _, attr := range ref.Attr {
		if attr.Key == "type" {
			return attr.Value == "default"
		}
	}
	return true
}

// childElement 返回第一个匹配的直接子元素
func childElement(el *etree.Element, space, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Space == space && child.Tag == tag {
			return child
		}
	}
	return nil
}
