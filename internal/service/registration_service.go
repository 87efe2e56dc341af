package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-portal/internal/dto"
	"github.com/noah-isme/alumni-portal/internal/models"
	"github.com/noah-isme/alumni-portal/internal/validation"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

const draftKeyPrefix = "registration:draft:"

type accountCreator interface {
	CreateAccount(ctx context.Context, account models.NewAccount) (*models.User, string, error)
}

// RegistrationService runs the two-step sign-up wizard. Step one is held as
// a draft; step two consumes it and creates the account in one call.
type RegistrationService struct {
	remote    accountCreator
	drafts    *CacheService
	ttl       time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(remote accountCreator, drafts *CacheService, ttl time.Duration, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RegistrationService{remote: remote, drafts: drafts, ttl: ttl, validator: validate, logger: logger}
}

// StartDraft validates step one and stores it.
func (s *RegistrationService) StartDraft(ctx context.Context, req dto.RegistrationStepOne) (*dto.RegistrationDraft, error) {
	req.Normalize()
	if err := validation.Struct(s.validator, req, "invalid registration details"); err != nil {
		return nil, err
	}
	if !s.drafts.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrInternal, "registration is unavailable")
	}

	id := uuid.NewString()
	if err := s.drafts.Set(ctx, draftKeyPrefix+id, req, s.ttl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save registration draft")
	}
	return &dto.RegistrationDraft{DraftID: id, ExpiresIn: int(s.ttl.Seconds())}, nil
}

// Complete validates step two, consumes the draft and creates the account.
// The password comes from step two only. A failed creation restores the
// draft so the user can retry without repeating step one.
func (s *RegistrationService) Complete(ctx context.Context, req dto.RegistrationStepTwo) (*dto.RegistrationResult, error) {
	if err := validation.Struct(s.validator, req, "invalid registration details"); err != nil {
		return nil, err
	}

	var draft dto.RegistrationStepOne
	hit, err := s.drafts.Take(ctx, draftKeyPrefix+req.DraftID, &draft)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration draft")
	}
	if !hit {
		return nil, appErrors.ErrDraftExpired
	}

	account := buildAccount(draft, req)
	user, message, err := s.remote.CreateAccount(ctx, account)
	if err != nil {
		if restoreErr := s.drafts.Set(ctx, draftKeyPrefix+req.DraftID, draft, s.ttl); restoreErr != nil {
			s.logger.Warn("failed to restore registration draft", zap.String("draft_id", req.DraftID), zap.Error(restoreErr))
		}
		return nil, err
	}

	s.logger.Info("account registered", zap.String("user_id", user.ID))
	if message == "" {
		message = "Registration successful. Your account is pending approval."
	}
	return &dto.RegistrationResult{User: *user, Message: message}, nil
}

func buildAccount(one dto.RegistrationStepOne, two dto.RegistrationStepTwo) models.NewAccount {
	return models.NewAccount{
		FirstName:      one.FirstName,
		LastName:       one.LastName,
		Email:          one.Email,
		Phone:          one.Phone,
		Location:       one.Location,
		Profession:     one.Profession,
		Batch:          one.Batch,
		AlumniType:     one.AlumniType,
		IsGraduated:    one.IsGraduated,
		GraduationYear: one.GraduationYear,
		LeftAt:         one.LeftAt,
		Bio:            one.Bio,
		ProfilePhoto:   two.ProfilePhoto,
		Password:       two.Password,
	}
}
