package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/middleware"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/view"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
	"github.com/noah-isme/alumni-portal/pkg/response"
)

type eventService interface {
	Page(ctx context.Context, sess *models.Session, d listing.Descriptor) (*view.ListView[models.Event], error)
}

// EventHandler serves the events listing.
type EventHandler struct {
	service eventService
	limits  listing.Limits
}

func NewEventHandler(svc eventService, limits listing.Limits) *EventHandler {
	return &EventHandler{service: svc, limits: limits}
}

// List godoc
// @Summary List events
// @Tags Events
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
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
