package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BuildArchive 在内存中把输出文件打包为 zip，条目只保留文件名
//
// 不同目录下的同名文件依次命名为 name_2.docx、name_3.docx ……
func BuildArchive(paths []string) ([]byte, error) {
	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	seen := make(map[string]int, len(paths))
	for _, path := range paths {
		name := uniqueName(filepath.Base(path), seen)
		if err := addFileToZip(zipWriter, name, path); err != nil {
			return nil, err
		}
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("关闭ZIP写入器失败: %w", err)
	}
	return buf.Bytes(), nil
}

func addFileToZip(zipWriter *zip.Writer, name, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("打开输出文件失败 %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("读取文件信息失败 %s: %w", path, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("创建ZIP文件头失败 %s: %w", name, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("创建ZIP条目失败 %s: %w", name, err)
	}
	if _, err := io.Copy(writer, file); err != nil {
		return fmt.Errorf("写入ZIP条目失败 %s: %w", name, err)
	}
	return nil
}

func uniqueName(base string, seen map[string]int) string {
	key := strings.ToLower(base)
	seen[key]++
	if seen[key] == 1 {
		return base
	}
	ext := filepath.Ext(base)
	name := fmt.Sprintf("%s_%d%s", strings.TrimSuffix(base, ext), seen[key], ext)
	// 生成的名字本身也可能与后续文件重名
	return uniqueName(name, seen)
}
