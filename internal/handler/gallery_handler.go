package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-portal/internal/dto"
	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/middleware"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/view"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
	"github.com/noah-isme/alumni-portal/pkg/response"
)

type galleryService interface {
	Page(ctx context.Context, sess *models.Session, d listing.Descriptor) (*view.ListView[models.GalleryItem], error)
	Detail(ctx context.Context, sess *models.Session, id string) (*dto.GalleryDetail, error)
	Create(ctx context.Context, sess *models.Session, req dto.GalleryCreateRequest) (*models.GalleryItem, string, error)
}

// GalleryHandler serves the photo gallery.
type GalleryHandler struct {
	service galleryService
	limits  listing.Limits
}

// NewGalleryHandler constructs the handler.
func NewGalleryHandler(svc galleryService, limits listing.Limits) *GalleryHandler {
	return &GalleryHandler{service: svc, limits: limits}
}

// List godoc
// @Summary List gallery items
// @Tags Gallery
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param year query int false "Year filter"
// @Success 200 {object} response.Envelope
// @Router /gallery [get]
func (h *GalleryHandler) List(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	d, err := descriptorFromQuery(c, h.limits)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.service.Page(c.Request.Context(), sess, d)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, page.Pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get gallery item
// @Tags Gallery
// @Produce json
// @Param id path string true "Gallery item ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /gallery/{id} [get]
func (h *GalleryHandler) Get(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.service.Detail(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if detail.NotFound != nil {
		status = http.StatusNotFound
	}
	response.JSON(c, status, detail, nil)
}

// Create godoc
// @Summary Publish gallery item
// @Tags Gallery
// @Accept json
// @Produce json
// @Param payload body dto.GalleryCreateRequest true "Gallery item"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /gallery [post]
func (h *GalleryHandler) Create(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.GalleryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, message, err := h.service.Create(c.Request.Context(), sess, req)
	if err != nil {
		response.Error(c, actionError(err, message))
		return
	}
	response.Created(c, gin.H{"item": item, "message": message})
}
