package cmd

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/allanpk716/docx_hf_replacer/internal/archive"
)

// ProcessArgs process 子命令的参数
type ProcessArgs struct {
	Input    string
	Rules    string
	Output   string
	Selected []string
}

// ValidateArgs 验证参数，未指定输出文件时自动生成
func ValidateArgs(args *ProcessArgs) error {
	if args.Input == "" {
		return fmt.Errorf("必须指定输入压缩包或输入目录")
	}
	if args.Rules == "" {
		return fmt.Errorf("必须指定规则文件")
	}

	info, err := os.Stat(args.Input)
	if err != nil {
		return fmt.Errorf("输入路径不存在: %s", args.Input)
	}
	if !info.IsDir() && !archive.HasArchiveExt(args.Input) {
		return fmt.Errorf("输入文件必须是 zip 压缩包: %s", args.Input)
	}

	if args.Output == "" {
		if info.IsDir() {
			args.Output = filepath.Clean(args.Input) + "_processed" + archive.ArchiveExt
		} else {
			args.Output = archive.GenerateOutputFileName(args.Input)
		}
	}
	if !archive.HasArchiveExt(args.Output) {
		return fmt.Errorf("输出文件必须是 zip 压缩包: %s", args.Output)
	}
	if filepath.Clean(args.Output) == filepath.Clean(args.Input) {
		return fmt.Errorf("输出文件不能覆盖输入文件: %s", args.Output)
	}
	return nil
}

// FindDocxFiles 查找目录中的所有 DOCX 文件，返回以 / 分隔的相对路径
func FindDocxFiles(dir string) ([]string, error) {
	var docxFiles []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("计算相对路径失败: %w", err)
		}
		rel = filepath.ToSlash(rel)
		if archive.IsDocumentMember(rel) {
			docxFiles = append(docxFiles, rel)
		}
		return nil
	})

	return docxFiles, err
}

// packDirectory 把目录中的 DOCX 文件按相对路径打包为 zip
func packDirectory(dir string) ([]byte, int, error) {
	docxFiles, err := FindDocxFiles(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("查找 DOCX 文件失败: %w", err)
	}
	if len(docxFiles) == 0 {
		return nil, 0, fmt.Errorf("在目录 %s 中没有找到 DOCX 文件", dir)
	}

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)
	for _, rel := range docxFiles {
		if err := addDirEntry(zipWriter, dir, rel); err != nil {
			return nil, 0, err
		}
	}
	if err := zipWriter.Close(); err != nil {
		return nil, 0, fmt.Errorf("关闭ZIP写入器失败: %w", err)
	}
	return buf.Bytes(), len(docxFiles), nil
}

func addDirEntry(zipWriter *zip.Writer, dir, rel string) error {
	file, err := os.Open(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		return fmt.Errorf("打开文件失败 %s: %w", rel, err)
	}
	defer file.Close()

	writer, err := zipWriter.Create(rel)
	if err != nil {
		return fmt.Errorf("创建ZIP条目失败 %s: %w", rel, err)
	}
	if _, err := io.Copy(writer, file); err != nil {
		return fmt.Errorf("写入ZIP条目失败 %s: %w", rel, err)
	}
	return nil
}

// archiveNameForDir 目录模式下暂存压缩包的文件名
func archiveNameForDir(dir string) string {
	base := filepath.Base(filepath.Clean(dir))
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "documents"
	}
	return base + archive.ArchiveExt
}
