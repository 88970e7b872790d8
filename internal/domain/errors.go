package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyFilename 上传文件名为空
	ErrEmptyFilename = errors.New("文件名为空")
	// ErrNotZip 上传文件不是 .zip 压缩包
	ErrNotZip = errors.New("文件不是 zip 压缩包")
	// ErrArchiveNotFound 已存储的压缩包不存在
	ErrArchiveNotFound = errors.New("压缩包不存在")
	// ErrInvalidRule 规则字段无法解析
	ErrInvalidRule = errors.New("无效的替换规则")
	// ErrNothingSelected 文档列表中的文档全部被取消勾选
	ErrNothingSelected = errors.New("没有选择任何文档")
)

// DocumentError 处理压缩包中某个文档时发生的错误
type DocumentError struct {
	Member string
	Op     string // "load", "save", "write"
	Err    error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("处理文档 %s 失败 (%s): %v", e.Member, e.Op, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// NewDocumentError 创建 DocumentError
func NewDocumentError(member, op string, err error) *DocumentError {
	return &DocumentError{
		Member: member,
		Op:     op,
		Err:    err,
	}
}
