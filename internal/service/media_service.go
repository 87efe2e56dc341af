package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-portal/internal/dto"
	"github.com/noah-isme/alumni-portal/internal/models"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
	"github.com/noah-isme/alumni-portal/pkg/storage"
)

// ImageStore hosts uploaded images.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (storage.Object, error)
}

// ImageUpload is one file received from a client.
type ImageUpload struct {
	Filename     string
	Size         int64
	DeclaredType string
	Content      io.Reader
}

// MediaServiceConfig bounds uploads.
type MediaServiceConfig struct {
	MaxUploadMB  int
	AllowedMIMEs []string
}

// MediaService validates images and forwards them to the hosting backend.
// Size and type are checked before anything is stored.
type MediaService struct {
	store    ImageStore
	metrics  *MetricsService
	logger   *zap.Logger
	maxBytes int64
	maxMB    int
	mimeSet  map[string]struct{}
	now      func() time.Time
}

// NewMediaService constructs the service with defaults.
func NewMediaService(store ImageStore, metrics *MetricsService, logger *zap.Logger, cfg MediaServiceConfig) *MediaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 25
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(mt)] = struct{}{}
	}
	return &MediaService{
		store:    store,
		metrics:  metrics,
		logger:   logger,
		maxBytes: int64(cfg.MaxUploadMB) * 1024 * 1024,
		maxMB:    cfg.MaxUploadMB,
		mimeSet:  mimeSet,
		now:      time.Now,
	}
}

// MaxBytes is the upload cap in bytes.
func (s *MediaService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload validates and hosts one image for an authenticated user.
func (s *MediaService) Upload(ctx context.Context, sess *models.Session, upload ImageUpload) (*dto.UploadedImage, error) {
	if sess == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if upload.Content == nil || upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.maxBytes {
		s.metrics.RecordUpload("too_large")
		return nil, appErrors.Clone(appErrors.ErrFileTooLarge, fmt.Sprintf("Image must be smaller than %d MB", s.maxMB))
	}
	if declared := normalizeMIME(upload.DeclaredType); declared != "" && !s.allowed(declared) {
		s.metrics.RecordUpload("invalid_type")
		return nil, s.invalidType()
	}

	header := make([]byte, 512)
	n, err := io.ReadFull(upload.Content, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect file")
	}
	if n == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty file")
	}
	sniffed := normalizeMIME(http.DetectContentType(header[:n]))
	if !s.allowed(sniffed) {
		s.metrics.RecordUpload("invalid_type")
		return nil, s.invalidType()
	}

	key := s.objectKey(sniffed)
	body := io.LimitReader(io.MultiReader(bytes.NewReader(header[:n]), upload.Content), upload.Size)
	obj, err := s.store.Put(ctx, key, sniffed, body, upload.Size)
	if err != nil {
		s.metrics.RecordUpload("failed")
		s.logger.Error("image upload failed", zap.String("key", key), zap.String("actor_id", sess.ActorID()), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, appErrors.ErrUploadFailed.Message)
	}

	s.metrics.RecordUpload("ok")
	s.logger.Info("image uploaded", zap.String("key", obj.Key), zap.Int64("size", obj.Size), zap.String("actor_id", sess.ActorID()))
	return &dto.UploadedImage{URL: obj.URL, Key: obj.Key, ContentType: obj.ContentType, Size: obj.Size}, nil
}

func (s *MediaService) allowed(mime string) bool {
	_, ok := s.mimeSet[mime]
	return ok
}

func (s *MediaService) invalidType() error {
	return appErrors.Clone(appErrors.ErrInvalidFileType, "Only image files are allowed")
}

func (s *MediaService) objectKey(mime string) string {
	now := s.now().UTC()
	return fmt.Sprintf("images/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString(), imageExtension(mime))
}

func normalizeMIME(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexByte(raw, ';'); i >= 0 {
		raw = strings.TrimSpace(raw[:i])
	}
	if raw == "image/jpg" {
		raw = "image/jpeg"
	}
	return raw
}

func imageExtension(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
