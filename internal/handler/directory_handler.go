package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-portal/internal/dto"
	"github.com/noah-isme/alumni-portal/internal/listing"
	"github.com/noah-isme/alumni-portal/internal/middleware"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/service"
	"github.com/noah-isme/alumni-portal/internal/view"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
	"github.com/noah-isme/alumni-portal/pkg/response"
)

type directoryService interface {
	Page(ctx context.Context, sess *models.Session, d listing.Descriptor) (*view.ListView[view.UserRow], error)
	Detail(ctx context.Context, sess *models.Session, id string) (*dto.UserDetail, error)
	Perform(ctx context.Context, sess *models.Session, targetID string, req dto.ActionRequest, d listing.Descriptor) (*dto.ActionResponse, error)
}

type directoryExporter interface {
	Directory(ctx context.Context, sess *models.Session, d listing.Descriptor, format string) (*service.ExportFile, error)
}

// DirectoryHandler serves the administrative user directory.
type DirectoryHandler struct {
	service  directoryService
	exporter directoryExporter
	limits   listing.Limits
}

// NewDirectoryHandler constructs the handler.
func NewDirectoryHandler(svc directoryService, exporter directoryExporter, limits listing.Limits) *DirectoryHandler {
	return &DirectoryHandler{service: svc, exporter: exporter, limits: limits}
}

// List godoc
// @Summary List users
// @Description Paginated, filterable user directory with per-row actions
// @Tags Directory
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param search query string false "Search term"
// @Param status query string false "Status filter"
// @Param role query string false "Role filter"
// @Param year query int false "Graduation year"
// @Param sortBy query string false "Sort field"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/users [get]
func (h *DirectoryHandler) List(c *gin.Context) {
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
// @Summary Get user
// @Description User detail with its action menu, or a not-found view
// @Tags Directory
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id} [get]
func (h *DirectoryHandler) Get(c *gin.Context) {
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

// Act godoc
// @Summary Run a user action
// @Description Approve, reject, activate, deactivate, block, delete or change roles. Destructive actions require confirmed=true.
// @Tags Directory
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body dto.ActionRequest true "Action"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /admin/users/{id}/actions [post]
func (h *DirectoryHandler) Act(c *gin.Context) {
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

// Export godoc
// @Summary Export users
// @Description Download the filtered directory as CSV or PDF
// @Tags Directory
// @Produce octet-stream
// @Param format query string false "csv or pdf"
// @Param search query string false "Search term"
// @Param status query string false "Status filter"
// @Param role query string false "Role filter"
// @Success 200 {file} binary
// @Router /admin/users/export [get]
func (h *DirectoryHandler) Export(c *gin.Context) {
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
	file, err := h.exporter.Directory(c.Request.Context(), sess, d, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("X-Export-Rows", strconv.Itoa(file.Rows))
	if file.Truncated {
		c.Header("X-Export-Truncated", "true")
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// actionError keeps the user-facing message the dispatcher settled on.
func actionError(err error, message string) error {
	appErr := appErrors.FromError(err)
	if message == "" || message == appErr.Message {
		return appErr
	}
	return appErrors.Clone(appErr, message)
}
