package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-portal/internal/dto"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/view"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
	"github.com/noah-isme/alumni-portal/pkg/response"
)

// ProfileBackLink is where the profile not-found view points.
const ProfileBackLink = "/"

type profileService interface {
	Page(ctx context.Context, sess *models.Session, userID string) (*dto.ProfilePage, error)
	Update(ctx context.Context, sess *models.Session, req dto.ProfileUpdateRequest) (*models.User, string, error)
}

// ProfileHandler serves profile pages and self-service edits.
type ProfileHandler struct {
	service profileService
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(svc profileService) *ProfileHandler {
	return &ProfileHandler{service: svc}
}

// Me godoc
// @Summary Current user
// @Tags Profiles
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /me [get]
func (h *ProfileHandler) Me(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, sess.User, nil)
}

// Get godoc
// @Summary Profile page
// @Description A user with their latest posts and gallery items
// @Tags Profiles
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id}/profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	page, err := h.service.Page(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			response.JSON(c, http.StatusNotFound, gin.H{"notFound": view.NewNotFound("Profile", ProfileBackLink)}, nil)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, nil)
}

// Update godoc
// @Summary Edit own profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body dto.ProfileUpdateRequest true "Profile"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users/{id}/profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if c.Param("id") != sess.User.ID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "you can only edit your own profile"))
		return
	}
	var req dto.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, message, err := h.service.Update(c.Request.Context(), sess, req)
	if err != nil {
		response.Error(c, actionError(err, message))
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"user": user, "message": message}, nil)
}
