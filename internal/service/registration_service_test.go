package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-portal/internal/dto"
	"github.com/noah-isme/alumni-portal/internal/models"
	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

func intPtr(v int) *int { return &v }

func validStepOne() dto.RegistrationStepOne {
	return dto.RegistrationStepOne{
		ProfileFields: dto.ProfileFields{
			FirstName:      "  Sari ",
			LastName:       "Wulandari",
			Phone:          "+62 812 3456 7890",
			Profession:     "Engineer",
			AlumniType:     models.AlumniStudent,
			IsGraduated:    true,
			GraduationYear: intPtr(2015),
			LeftAt:         intPtr(2014),
		},
		Email: " Sari@Example.COM ",
	}
}

func TestRegistrationRoundTripCreatesAccountOnce(t *testing.T) {
	remote := &mockRemote{}
	svc := NewRegistrationService(remote, newMemoryCache(), time.Minute, nil, nil)

	draft, err := svc.StartDraft(context.Background(), validStepOne())
	require.NoError(t, err)
	require.NotEmpty(t, draft.DraftID)
	assert.Equal(t, 60, draft.ExpiresIn)
	assert.Empty(t, remote.accounts)

	result, err := svc.Complete(context.Background(), dto.RegistrationStepTwo{
		DraftID:         draft.DraftID,
		Password:        "s3cret-pass",
		ConfirmPassword: "s3cret-pass",
		ProfilePhoto:    "https://cdn.example.com/p.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-user", result.User.ID)
	assert.NotEmpty(t, result.Message)

	require.Len(t, remote.accounts, 1)
	account := remote.accounts[0]
	assert.Equal(t, "Sari", account.FirstName)
	assert.Equal(t, "sari@example.com", account.Email)
	assert.Equal(t, "Engineer", account.Profession)
	assert.Equal(t, 2015, *account.GraduationYear)
	assert.Nil(t, account.LeftAt)
	assert.Equal(t, "s3cret-pass", account.Password)
	assert.Equal(t, "https://cdn.example.com/p.png", account.ProfilePhoto)

	_, err = svc.Complete(context.Background(), dto.RegistrationStepTwo{
		DraftID:         draft.DraftID,
		Password:        "s3cret-pass",
		ConfirmPassword: "s3cret-pass",
	})
	assert.ErrorIs(t, err, appErrors.ErrDraftExpired)
	assert.Len(t, remote.accounts, 1)
}

func TestRegistrationStepOneRequiresLeftAtWhenNotGraduated(t *testing.T) {
	svc := NewRegistrationService(&mockRemote{}, newMemoryCache(), time.Minute, nil, nil)
	req := validStepOne()
	req.IsGraduated = false
	req.LeftAt = nil

	_, err := svc.StartDraft(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "Left at year is required when not graduated", appErr.Fields["leftAt"])
}

func TestRegistrationUnknownDraftMakesNoUpstreamCall(t *testing.T) {
	remote := &mockRemote{}
	svc := NewRegistrationService(remote, newMemoryCache(), time.Minute, nil, nil)

	_, err := svc.Complete(context.Background(), dto.RegistrationStepTwo{
		DraftID:         "9b2f6f0e-6a4c-4d8e-9d7a-2f1b3c4d5e6f",
		Password:        "s3cret-pass",
		ConfirmPassword: "s3cret-pass",
	})
	assert.ErrorIs(t, err, appErrors.ErrDraftExpired)
	assert.Empty(t, remote.accounts)
}

func TestRegistrationPasswordMismatchFailsValidation(t *testing.T) {
	svc := NewRegistrationService(&mockRemote{}, newMemoryCache(), time.Minute, nil, nil)

	_, err := svc.Complete(context.Background(), dto.RegistrationStepTwo{
		DraftID:         "9b2f6f0e-6a4c-4d8e-9d7a-2f1b3c4d5e6f",
		Password:        "s3cret-pass",
		ConfirmPassword: "different",
	})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "confirmPassword")
}

func TestRegistrationFailureRestoresDraft(t *testing.T) {
	remote := &mockRemote{createErr: appErrors.Clone(appErrors.ErrConflict, "Email already registered")}
	svc := NewRegistrationService(remote, newMemoryCache(), time.Minute, nil, nil)

	draft, err := svc.StartDraft(context.Background(), validStepOne())
	require.NoError(t, err)

	step2 := dto.RegistrationStepTwo{DraftID: draft.DraftID, Password: "s3cret-pass", ConfirmPassword: "s3cret-pass"}
	_, err = svc.Complete(context.Background(), step2)
	require.Error(t, err)
	assert.Equal(t, "Email already registered", appErrors.UserMessage(err))

	remote.createErr = nil
	result, err := svc.Complete(context.Background(), step2)
	require.NoError(t, err)
	assert.Equal(t, "new-user", result.User.ID)
	assert.Len(t, remote.accounts, 2)
}
