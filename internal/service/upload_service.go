package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/whistledesk/internal/config"

	"github.com/google/uuid"
)

// UploadService stores issue attachments on local disk
type UploadService struct {
	cfg config.UploadConfig
}

// NewUploadService creates the upload service
func NewUploadService(cfg config.UploadConfig) *UploadService {
	if strings.TrimSpace(cfg.Dir) == "" {
		cfg.Dir = "uploads"
	}
	return &UploadService{cfg: cfg}
}

// SaveAttachment stores file under a random name and returns the name relative to the upload dir.
// The original filename is never kept.
func (s *UploadService) SaveAttachment(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", ErrBadRequest
	}
	if s.cfg.MaxSize > 0 && file.Size > s.cfg.MaxSize {
		return "", ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(s.cfg.AllowedExtensions) > 0 && (ext == "" || !containsFold(s.cfg.AllowedExtensions, ext)) {
		return "", ErrInvalidFileType
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}
	contentType := http.DetectContentType(head[:n])
	if len(s.cfg.AllowedTypes) > 0 && !containsFold(s.cfg.AllowedTypes, mediaType(contentType)) {
		return "", ErrInvalidFileType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	month := time.Now().Format("200601")
	name := filepath.ToSlash(filepath.Join(month, uuid.NewString()+ext))
	savePath := filepath.Join(s.cfg.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(savePath), 0o750); err != nil {
		return "", err
	}
	dst, err := os.OpenFile(savePath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o640)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return name, nil
}

// Path resolves a stored attachment name to its location on disk
func (s *UploadService) Path(name string) (string, bool) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimSpace(name)))
	if cleaned == "." || filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", false
	}
	return filepath.Join(s.cfg.Dir, cleaned), true
}

func mediaType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		return strings.TrimSpace(contentType[:idx])
	}
	return strings.TrimSpace(contentType)
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), target) {
			return true
		}
	}
	return false
}
