// Package archive 管理上传压缩包和处理结果的本地暂存目录
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/allanpk716/docx_hf_replacer/internal/config"
	"github.com/allanpk716/docx_hf_replacer/internal/domain"
)

// Store 上传目录和处理结果目录
//
// 目录不按请求隔离：同名压缩包的并发上传会互相覆盖解压出的文件。
type Store struct {
	uploadDir    string
	processedDir string
	logger       *zap.Logger
}

// NewStore 根据存储配置创建 Store
func NewStore(cfg config.Storage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		uploadDir:    cfg.UploadDir,
		processedDir: cfg.ProcessedDir,
		logger:       logger,
	}
}

// UploadDir 上传目录
func (s *Store) UploadDir() string {
	return s.uploadDir
}

// ProcessedDir 处理结果目录
func (s *Store) ProcessedDir() string {
	return s.processedDir
}

// SaveUpload 校验并保存上传的压缩包，返回保存后的文件名
func (s *Store) SaveUpload(filename string, r io.Reader) (string, error) {
	if filename == "" {
		return "", domain.ErrEmptyFilename
	}
	if !HasArchiveExt(filename) {
		return "", fmt.Errorf("%w: %s", domain.ErrNotZip, filename)
	}

	storedName := SecureFilename(filename)
	if !HasArchiveExt(storedName) {
		// 文件名全部由非 ASCII 字符组成时清理后只剩下后缀
		storedName = "archive_" + uuid.NewString()[:8] + ArchiveExt
	}

	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return "", fmt.Errorf("创建上传目录失败: %w", err)
	}

	target := filepath.Join(s.uploadDir, storedName)
	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("创建文件失败: %w", err)
	}

	written, err := io.Copy(file, r)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// 不完整的压缩包不能留在上传目录中
		_ = os.Remove(target)
		return "", fmt.Errorf("保存上传文件失败: %w", err)
	}

	s.logger.Info("保存上传压缩包",
		zap.String("filename", filename),
		zap.String("stored_name", storedName),
		zap.Int64("bytes", written))
	return storedName, nil
}

// Path 返回已保存压缩包的完整路径，文件名不合法时返回 ErrArchiveNotFound
func (s *Store) Path(storedName string) (string, error) {
	if storedName == "" || SecureFilename(storedName) != storedName || !HasArchiveExt(storedName) {
		return "", fmt.Errorf("%w: %q", domain.ErrArchiveNotFound, storedName)
	}
	return filepath.Join(s.uploadDir, storedName), nil
}

// Open 打开已保存的压缩包
func (s *Store) Open(storedName string) (*zip.ReadCloser, error) {
	path, err := s.Path(storedName)
	if err != nil {
		return nil, err
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrArchiveNotFound, storedName)
		}
		return nil, fmt.Errorf("打开压缩包失败: %w", err)
	}
	return reader, nil
}

// Extract 把压缩包的全部条目解压到上传目录，返回其中的文档列表
func (s *Store) Extract(storedName string) ([]domain.DocumentInfo, error) {
	reader, err := s.Open(storedName)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var documents []domain.DocumentInfo
	for _, file := range reader.File {
		target, ok := safeJoin(s.uploadDir, file.Name)
		if !ok {
			s.logger.Warn("跳过不安全的压缩包条目", zap.String("member", file.Name))
			continue
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, fmt.Errorf("创建目录失败: %w", err)
			}
			continue
		}

		content, err := readMember(file)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return nil, fmt.Errorf("创建目录失败: %w", err)
		}
		if err := os.WriteFile(target, content, 0644); err != nil {
			return nil, fmt.Errorf("写入文件 %s 失败: %w", file.Name, err)
		}

		if IsDocumentMember(file.Name) {
			documents = append(documents, inspectDocument(file.Name, content))
		}
	}

	s.logger.Info("解压完成",
		zap.String("stored_name", storedName),
		zap.Int("members", len(reader.File)),
		zap.Int("documents", len(documents)))
	return documents, nil
}

// WriteProcessed 把处理后的文档写入处理结果目录，保留其在压缩包中的相对路径
func (s *Store) WriteProcessed(member string, data []byte) (string, error) {
	target, ok := safeJoin(s.processedDir, member)
	if !ok {
		return "", fmt.Errorf("不安全的文档路径: %s", member)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("创建输出文件目录失败: %w", err)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", fmt.Errorf("写入输出文件失败: %w", err)
	}
	return target, nil
}

// ReadMember 读取压缩包条目的全部内容
func ReadMember(file *zip.File) ([]byte, error) {
	return readMember(file)
}

func readMember(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("打开文件 %s 失败: %w", file.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("读取文件 %s 失败: %w", file.Name, err)
	}
	return content, nil
}

// safeJoin 拼接条目路径，拒绝绝对路径和跳出根目录的条目
func safeJoin(root, name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	if name == "" || strings.HasPrefix(name, "/") || filepath.IsAbs(name) {
		return "", false
	}
	target := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return target, true
}
