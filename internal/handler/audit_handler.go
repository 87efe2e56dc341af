package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-portal/internal/models"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
	"github.com/noah-isme/alumni-portal/pkg/response"
)

type auditService interface {
	List(ctx context.Context, sess *models.Session, filter models.AuditFilter) ([]models.AuditLog, *models.Pagination, error)
}

// AuditHandler exposes the mutation audit trail.
type AuditHandler struct {
	service auditService
}

func NewAuditHandler(svc auditService) *AuditHandler {
	return &AuditHandler{service: svc}
}

// List godoc
// @Summary List audit entries
// @Tags Audit
// @Produce json
// @Param actorId query string false "Actor filter"
// @Param targetId query string false "Target filter"
// @Param entity query string false "Entity filter"
// @Param outcome query string false "success or error"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.AuditFilter{
		ActorID:  strings.TrimSpace(c.Query("actorId")),
		TargetID: strings.TrimSpace(c.Query("targetId")),
		Entity:   strings.TrimSpace(c.Query("entity")),
		Outcome:  strings.TrimSpace(c.Query("outcome")),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}
	entries, pagination, err := h.service.List(c.Request.Context(), sess, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}
