package dto

import (
	"strings"

	"github.com/noah-isme/alumni-portal/internal/models"
)

// ProfileFields is the editable profile shared by registration and profile
// edit. Exactly one of GraduationYear and LeftAt applies, chosen by
// IsGraduated.
type ProfileFields struct {
	FirstName      string            `json:"firstName" validate:"required,min=2,max=50,alphaspace"`
	LastName       string            `json:"lastName" validate:"required,min=1,max=50,alphaspace"`
	Phone          string            `json:"phone,omitempty" validate:"omitempty,phone"`
	Location       string            `json:"location,omitempty" validate:"omitempty,max=100"`
	Profession     string            `json:"profession,omitempty" validate:"omitempty,max=100"`
	Batch          string            `json:"batch,omitempty" validate:"omitempty,max=20"`
	AlumniType     models.AlumniType `json:"alumniType" validate:"required,oneof=student faculty"`
	IsGraduated    bool              `json:"isGraduated"`
	GraduationYear *int              `json:"graduationYear,omitempty" validate:"required_if=IsGraduated true,omitempty,pastyear"`
	LeftAt         *int              `json:"leftAt,omitempty" validate:"required_if=IsGraduated false,omitempty,pastyear"`
	Bio            string            `json:"bio,omitempty" validate:"omitempty,max=500"`
}

// Normalize trims text fields and drops the year that does not apply.
func (p *ProfileFields) Normalize() {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Location = strings.TrimSpace(p.Location)
	p.Profession = strings.TrimSpace(p.Profession)
	p.Batch = strings.TrimSpace(p.Batch)
	p.Bio = strings.TrimSpace(p.Bio)
	if p.IsGraduated {
		p.LeftAt = nil
	} else {
		p.GraduationYear = nil
	}
}

// ToFields renders the profile as an upstream patch body.
func (p ProfileFields) ToFields() map[string]interface{} {
	fields := map[string]interface{}{
		"firstName":   p.FirstName,
		"lastName":    p.LastName,
		"phone":       p.Phone,
		"location":    p.Location,
		"profession":  p.Profession,
		"batch":       p.Batch,
		"alumniType":  p.AlumniType,
		"isGraduated": p.IsGraduated,
		"bio":         p.Bio,
	}
	if p.IsGraduated {
		fields["graduationYear"] = p.GraduationYear
		fields["leftAt"] = nil
	} else {
		fields["leftAt"] = p.LeftAt
		fields["graduationYear"] = nil
	}
	return fields
}

// RegistrationStepOne is the first wizard step: identity and background.
type RegistrationStepOne struct {
	ProfileFields
	Email string `json:"email" validate:"required,email,max=254"`
}

// Normalize trims and lower-cases the email and normalises the profile.
func (r *RegistrationStepOne) Normalize() {
	r.ProfileFields.Normalize()
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// RegistrationStepTwo completes a draft with credentials.
type RegistrationStepTwo struct {
	DraftID         string `json:"draftId" validate:"required,uuid4"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	ProfilePhoto    string `json:"profilePhoto,omitempty" validate:"omitempty,url"`
}

// RegistrationDraft is the response to step one.
type RegistrationDraft struct {
	DraftID   string `json:"draftId"`
	ExpiresIn int    `json:"expiresInSeconds"`
}

// RegistrationResult is the response to step two.
type RegistrationResult struct {
	User    models.User `json:"user"`
	Message string      `json:"message"`
}
