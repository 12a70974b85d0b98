package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	pkglogger "github.com/campusloop/campusloop-backend/pkg/logger"
	"github.com/campusloop/campusloop-backend/pkg/storage"
)

// DefaultMaxImageBytes upload size limit when none is configured
const DefaultMaxImageBytes int64 = 10 << 20

var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrUnsupportedImage = errors.New("unsupported image format")
)

// MediaService stores uploaded images (S3 compatible storage or local disk)
type MediaService struct {
	uploader  storage.Uploader
	keyPrefix string
	maxSize   int64
	clock     func() time.Time
}

// NewMediaService creates a new MediaService
func NewMediaService(uploader storage.Uploader, keyPrefix string, maxSize int64) *MediaService {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageBytes
	}
	return &MediaService{
		uploader:  uploader,
		keyPrefix: keyPrefix,
		maxSize:   maxSize,
		clock:     time.Now,
	}
}

// MediaUploadResult represents the result of an upload operation
type MediaUploadResult struct {
	ImageURL    string `json:"imageUrl"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// UploadImage stores the multipart file under "<field>-<unix ms><ext>"
func (s *MediaService) UploadImage(ctx context.Context, field string, file *multipart.FileHeader) (*MediaUploadResult, error) {
	if file.Size > s.maxSize {
		return nil, fmt.Errorf("%w (max %dMB)", ErrFileTooLarge, s.maxSize/(1024*1024))
	}

	ext := strings.ToLower(path.Ext(file.Filename))
	if ext != "" && !isImageExt(ext) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, ext)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, s.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("%w (max %dMB)", ErrFileTooLarge, s.maxSize/(1024*1024))
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}

	key := storage.GenerateKey(s.keyPrefix, field, file.Filename, s.clock())
	result, err := s.uploader.Upload(ctx, key, bytes.NewReader(data), contentType, int64(len(data)))
	if err != nil {
		pkglogger.FromContext(ctx).Error().Err(err).Str("key", key).Msg("image upload")
		return nil, err
	}

	return &MediaUploadResult{
		ImageURL:    result.URL,
		Key:         result.Key,
		ContentType: contentType,
		Size:        result.Size,
	}, nil
}

func isImageExt(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic":
		return true
	}
	return false
}
