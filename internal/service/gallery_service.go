package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-portal/internal/dto"
	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/permission"
	"github.com/noah-isme/alumni-portal/internal/validation"
	"github.com/noah-isme/alumni-portal/internal/view"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

// GalleryBackLink is where the gallery not-found view points.
const GalleryBackLink = "/gallery"

type galleryRemote interface {
	ListGallery(ctx context.Context, token string, d listing.Descriptor) (models.Page[models.GalleryItem], error)
	GetGalleryItem(ctx context.Context, token, id string) (*models.GalleryItem, error)
	CreateGalleryItem(ctx context.Context, token string, item models.NewGalleryItem) (*models.GalleryItem, string, error)
}

// GalleryService lists, shows and publishes gallery items.
type GalleryService struct {
	remote    galleryRemote
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGalleryService constructs a GalleryService.
func NewGalleryService(remote galleryRemote, validate *validator.Validate, logger *zap.Logger) *GalleryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &GalleryService{remote: remote, validator: validate, logger: logger}
}

func (s *GalleryService) Fetcher(sess *models.Session) listing.Fetcher[models.GalleryItem] {
	return func(ctx context.Context, d listing.Descriptor) (models.Page[models.GalleryItem], error) {
		return s.remote.ListGallery(ctx, sess.Token, d)
	}
}

// Page fetches one page of gallery items, filterable by year.
func (s *GalleryService) Page(ctx context.Context, sess *models.Session, d listing.Descriptor) (*view.ListView[models.GalleryItem], error) {
	if sess == nil {
		return nil, appErrors.ErrUnauthorized
	}
	page, err := s.remote.ListGallery(ctx, sess.Token, d)
	if err != nil {
		return nil, err
	}
	if clamped := listing.Clamp(d.Page, page.TotalPages); page.TotalPages > 0 && clamped != d.Page {
		d = d.WithPage(clamped)
		if page, err = s.remote.ListGallery(ctx, sess.Token, d); err != nil {
			return nil, err
		}
	}
	v := view.FromPage(d, page, identity[models.GalleryItem])
	return &v, nil
}

// Detail loads one item with its carousel positioned on the first image.
func (s *GalleryService) Detail(ctx context.Context, sess *models.Session, id string) (*dto.GalleryDetail, error) {
	if sess == nil {
		return nil, appErrors.ErrUnauthorized
	}
	item, err := s.remote.GetGalleryItem(ctx, sess.Token, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			nf := view.NewNotFound("Gallery item", GalleryBackLink)
			return &dto.GalleryDetail{NotFound: &nf}, nil
		}
		return nil, err
	}
	state := view.NewCarousel(item.Images).State()
	return &dto.GalleryDetail{Item: item, Carousel: &state}, nil
}

// Create publishes already-hosted images as a new gallery item.
func (s *GalleryService) Create(ctx context.Context, sess *models.Session, req dto.GalleryCreateRequest) (*models.GalleryItem, string, error) {
	if err := requirePermission(sess, permission.UploadGallery); err != nil {
		return nil, "", err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := validation.Struct(s.validator, req, "invalid gallery item"); err != nil {
		return nil, "", err
	}
	item, message, err := s.remote.CreateGalleryItem(ctx, sess.Token, models.NewGalleryItem{
		Title:       req.Title,
		Description: req.Description,
		Year:        req.Year,
		Images:      req.Images,
	})
	if err != nil {
		return nil, appErrors.UserMessage(err), err
	}
	if message == "" {
		message = "Gallery item published"
	}
	s.logger.Info("gallery item created", zap.String("id", item.ID), zap.String("actor_id", sess.ActorID()))
	return item, message, nil
}

func identity[T any](items []T) []T {
	return items
}
