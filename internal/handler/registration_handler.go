package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/alumni-portal/internal/dto"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
	"github.com/noah-isme/alumni-portal/pkg/response"
)

type registrationService interface {
	StartDraft(ctx context.Context, req dto.RegistrationStepOne) (*dto.RegistrationDraft, error)
	Complete(ctx context.Context, req dto.RegistrationStepTwo) (*dto.RegistrationResult, error)
}

// RegistrationHandler serves the two-step sign-up wizard.
type RegistrationHandler struct {
	service registrationService
}

// NewRegistrationHandler constructs the handler.
func NewRegistrationHandler(svc registrationService) *RegistrationHandler {
	return &RegistrationHandler{service: svc}
}

// StepOne godoc
// @Summary Start registration
// @Description Validate identity and background details and hold them as a draft
// @Tags Registration
// @Accept json
// @Produce json
// @Param payload body dto.RegistrationStepOne true "Step one payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /register/step1 [post]
func (h *RegistrationHandler) StepOne(c *gin.Context) {
	var req dto.RegistrationStepOne
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	draft, err := h.service.StartDraft(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, draft)
}

// StepTwo godoc
// @Summary Complete registration
// @Description Submit credentials for a draft and create the account
// @Tags Registration
// @Accept json
// @Produce json
// @Param payload body dto.RegistrationStepTwo true "Step two payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /register/step2 [post]
func (h *RegistrationHandler) StepTwo(c *gin.Context) {
	var req dto.RegistrationStepTwo
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Complete(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
