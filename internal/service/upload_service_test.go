package service

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/whistledesk/internal/config"
)

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("attachment", filename)
	if err != nil {
		t.Fatalf("create form file failed: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer failed: %v", err)
	}
	req := httptest.NewRequest("POST", "/issues", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse multipart failed: %v", err)
	}
	_, header, err := req.FormFile("attachment")
	if err != nil {
		t.Fatalf("form file failed: %v", err)
	}
	return header
}

func TestSaveAttachment(t *testing.T) {
	dir := t.TempDir()
	svc := NewUploadService(config.UploadConfig{
		Dir:               dir,
		MaxSize:           1024,
		AllowedTypes:      []string{"text/plain"},
		AllowedExtensions: []string{".txt"},
	})

	name, err := svc.SaveAttachment(buildFileHeader(t, "../../evidence.TXT", []byte("ledger entries were altered")))
	if err != nil {
		t.Fatalf("save attachment failed: %v", err)
	}
	if strings.Contains(name, "evidence") || !strings.HasSuffix(name, ".txt") {
		t.Fatalf("stored name should be random with the original extension, got %q", name)
	}
	path, ok := svc.Path(name)
	if !ok {
		t.Fatalf("stored name should resolve")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read stored file failed: %v", err)
	}
	if string(data) != "ledger entries were altered" {
		t.Fatalf("unexpected stored content: %q", data)
	}
}

func TestSaveAttachmentRejects(t *testing.T) {
	svc := NewUploadService(config.UploadConfig{
		Dir:               t.TempDir(),
		MaxSize:           8,
		AllowedTypes:      []string{"text/plain"},
		AllowedExtensions: []string{".txt"},
	})
	cases := []struct {
		name     string
		filename string
		content  []byte
		want     error
	}{
		{name: "too_large", filename: "a.txt", content: []byte("0123456789"), want: ErrFileTooLarge},
		{name: "bad_extension", filename: "a.exe", content: []byte("MZ"), want: ErrInvalidFileType},
		{name: "bad_content", filename: "a.txt", content: []byte("%PDF-1."), want: ErrInvalidFileType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.SaveAttachment(buildFileHeader(t, tc.filename, tc.content)); !errors.Is(err, tc.want) {
				t.Fatalf("want %v got %v", tc.want, err)
			}
		})
	}
}

func TestUploadPathRejectsTraversal(t *testing.T) {
	svc := NewUploadService(config.UploadConfig{Dir: t.TempDir()})
	for _, name := range []string{"../etc/passwd", "/etc/passwd", ""} {
		if _, ok := svc.Path(name); ok {
			t.Fatalf("path %q should be rejected", name)
		}
	}
}
