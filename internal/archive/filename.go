package archive

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// ArchiveExt 允许上传的压缩包后缀
	ArchiveExt = ".zip"
	// DocumentExt 压缩包中需要处理的文档后缀
	DocumentExt = ".docx"
)

var filenameStripPattern = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

var windowsDeviceNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// SecureFilename 把用户提供的文件名转换为可以安全保存到本地的文件名
//
// 与 werkzeug 的 secure_filename 行为一致：NFKD 规范化后丢弃非 ASCII 字符，
// 路径分隔符视为空白，空白折叠为下划线，只保留 [A-Za-z0-9_.-]，去掉首尾的 . 和 _。
// 结果可能为空字符串。
func SecureFilename(filename string) string {
	filename = norm.NFKD.String(filename)

	var sb strings.Builder
	for _, r := range filename {
		if r < 0x80 {
			sb.WriteRune(r)
		}
	}
	filename = sb.String()

	filename = strings.NewReplacer("/", " ", "\\", " ").Replace(filename)
	filename = strings.Join(strings.Fields(filename), "_")
	filename = filenameStripPattern.ReplaceAllString(filename, "")
	filename = strings.Trim(filename, "._")

	if filename != "" && windowsDeviceNames[strings.ToUpper(strings.Split(filename, ".")[0])] {
		filename = "_" + filename
	}
	return filename
}

// HasArchiveExt 文件名是否带有 .zip 后缀（大小写不敏感）
func HasArchiveExt(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ArchiveExt)
}

// IsDocumentMember 判断压缩包条目是否是需要处理的文档
//
// 目录、Office 临时锁文件（~$ 开头）和 macOS 资源分支（__MACOSX/）不计入。
func IsDocumentMember(name string) bool {
	if strings.HasSuffix(name, "/") {
		return false
	}
	if !strings.EqualFold(filepath.Ext(name), DocumentExt) {
		return false
	}
	if strings.HasPrefix(name, "__MACOSX/") {
		return false
	}
	base := name
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		base = name[i+1:]
	}
	return !strings.HasPrefix(base, "~$")
}

// GenerateOutputFileName 生成输出文件名，例如 batch.zip -> batch_processed.zip
func GenerateOutputFileName(inputFile string) string {
	ext := filepath.Ext(inputFile)
	base := strings.TrimSuffix(inputFile, ext)
	return base + "_processed" + ext
}
