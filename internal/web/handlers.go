package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/allanpk716/docx_hf_replacer/internal/domain"
)

// multipartMemory 解析表单时保存在内存中的最大字节数，超出部分写入临时文件
const multipartMemory = 32 << 20

// 文档选择字段。页面列出文档时同时提交 selection，
// 此时 selected 为空表示全部取消勾选，而不是处理全部文档
const (
	selectionField = "selection"
	selectedField  = "selected"
)

type indexPage struct {
	MaxUploadMB int64
}

type processPage struct {
	ZipFilename  string
	Documents    []domain.DocumentInfo
	Defaults     domain.Font
	ElementTypes []domain.TargetKind
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", indexPage{MaxUploadMB: s.cfg.Server.MaxUploadMB})
}

// handleUpload 保存并解压上传的压缩包，然后展示文档列表和规则表单
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if limit := s.cfg.Server.MaxUploadMB << 20; limit > 0 {
		if r.ContentLength > limit {
			s.rejectTooLarge(w, r, r.ContentLength)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	file, header, err := r.FormFile("zip_file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.rejectTooLarge(w, r, r.ContentLength)
			return
		}
		s.logger.Info("上传请求中没有压缩包", zap.Error(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	defer file.Close()

	storedName, err := s.store.SaveUpload(header.Filename, file)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyFilename) || errors.Is(err, domain.ErrNotZip) {
			s.logger.Info("拒绝上传", zap.String("filename", header.Filename), zap.Error(err))
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	documents, err := s.store.Extract(storedName)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, fmt.Errorf("解压 %s 失败: %w", storedName, err))
		return
	}

	s.render(w, "process.html", processPage{
		ZipFilename:  storedName,
		Documents:    documents,
		Defaults:     s.cfg.Defaults.Font(),
		ElementTypes: []domain.TargetKind{domain.TargetParagraph, domain.TargetTable},
	})
}

// handleProcess 按表单中的规则处理压缩包并返回输出压缩包
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("解析表单失败: %w", err))
		return
	}

	zipFilename := r.PostForm.Get("zip_filename")
	if zipFilename == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	rules, err := DecodeRuleSet(r.PostForm, s.cfg.Defaults.Font())
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	selected := r.PostForm[selectedField]
	if r.PostForm.Get(selectionField) != "" && len(selected) == 0 {
		s.fail(w, r, http.StatusBadRequest, domain.ErrNothingSelected)
		return
	}

	result, err := s.batch.Process(r.Context(), zipFilename, rules, selected)
	if err != nil {
		if errors.Is(err, domain.ErrArchiveNotFound) {
			s.fail(w, r, http.StatusNotFound, err)
			return
		}
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.DownloadName))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("X-Batch-ID", result.ID)
	if _, err := w.Write(result.Data); err != nil {
		s.logger.Warn("写入响应失败", zap.String("batch_id", result.ID), zap.Error(err))
	}
}

// rejectTooLarge 上传超过 MaxUploadMB 时返回 413
func (s *Server) rejectTooLarge(w http.ResponseWriter, r *http.Request, size int64) {
	s.logger.Info("拒绝上传: 压缩包过大",
		zap.Int64("content_length", size),
		zap.Int64("max_upload_mb", s.cfg.Server.MaxUploadMB))
	http.Error(w, fmt.Sprintf("压缩包超过 %d MB 上限", s.cfg.Server.MaxUploadMB), http.StatusRequestEntityTooLarge)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("渲染页面失败", zap.String("template", name), zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Error("请求处理失败",
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err))
	http.Error(w, err.Error(), status)
}
