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

type postService interface {
	Page(ctx context.Context, sess *models.Session, d listing.Descriptor) (*view.ListView[view.PostRow], error)
	Perform(ctx context.Context, sess *models.Session, postID string, req dto.ActionRequest, d listing.Descriptor) (*dto.PostActionResponse, error)
}

// PostHandler serves the post feed and moderation.
type PostHandler struct {
	service postService
	limits  listing.Limits
}

// NewPostHandler constructs the handler.
func NewPostHandler(svc postService, limits listing.Limits) *PostHandler {
	return &PostHandler{service: svc, limits: limits}
}

// List godoc
// @Summary List posts
// @Tags Posts
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param search query string false "Search term"
// @Param status query string false "Status filter"
// @Param author query string false "Author ID"
// @Success 200 {object} response.Envelope
// @Router /posts [get]
func (h *PostHandler) List(c *gin.Context) {
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

// Act godoc
// @Summary Moderate a post
// @Tags Posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Param payload body dto.ActionRequest true "Action"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /posts/{id}/actions [post]
func (h *PostHandler) Act(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	d, err := descriptorFromQuery(c, h.limits)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Perform(c.Request.Context(), sess, c.Param("id"), req, d)
	if err != nil {
		var message string
		if result != nil {
			message = result.Message
		}
		response.Error(c, actionError(err, message))
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
