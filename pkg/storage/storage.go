package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// UploadResult contains the result of a file upload
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Uploader stores uploaded files and returns where they can be fetched
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*UploadResult, error)
}

// LocalStore writes uploads below a directory served by the API under urlPrefix
type LocalStore struct {
	dir       string
	urlPrefix string
}

// NewLocalStore 로컬 디스크 저장소 생성
func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Dir returns the directory uploads are written to
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := filepath.Base(key)
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("local upload failed: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, body)
	if err != nil {
		return nil, fmt.Errorf("local upload failed: %w", err)
	}

	return &UploadResult{
		Key:         name,
		URL:         s.urlPrefix + "/" + name,
		ContentType: contentType,
		Size:        written,
	}, nil
}

// GenerateKey creates a storage key "<field>-<unix ms><ext>" under prefix
func GenerateKey(prefix, field, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	name := fmt.Sprintf("%s-%d%s", field, now.UnixMilli(), ext)
	if prefix == "" {
		return name
	}
	return fmt.Sprintf("%s/%d/%02d/%s", prefix, now.Year(), now.Month(), name)
}
