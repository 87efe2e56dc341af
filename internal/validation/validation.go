// Package validation configures the shared validator and turns its errors
// into field-level application errors.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/alumni-portal/pkg/errors"
)

const minYear = 1900

// messages overrides the generic text for a field/tag pair.
var messages = map[string]string{
	"leftAt.required_if":         "Left at year is required when not graduated",
	"graduationYear.required_if": "Graduation year is required when graduated",
	"confirmPassword.eqfield":    "Passwords do not match",
	"alumniType.oneof":           "Alumni type must be student or faculty",
	"firstName.alphaspace":       "First name may only contain letters",
	"lastName.alphaspace":        "Last name may only contain letters",
	"phone.phone":                "Phone number is not valid",
	"email.email":                "Email address is not valid",
	"password.min":               "Password must be at least 8 characters",
	"leftAt.pastyear":            "Left at year must be a past year",
	"graduationYear.pastyear":    "Graduation year must be a past year",
	"images.required":            "At least one image is required",
	"profilePhoto.url":           "Profile photo must be a URL",
	"draftId.uuid4":              "Registration session is not valid",
}

// New returns a validator that reports json field names and knows the
// portal's custom tags.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return isAlphaSpace(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return isPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("pastyear", func(fl validator.FieldLevel) bool {
		year := fl.Field().Int()
		return year >= minYear && year <= int64(time.Now().Year())
	})
	return v
}

// Struct validates s and translates failures. message is the top-level
// error text.
func Struct(v *validator.Validate, s interface{}, message string) error {
	if err := v.Struct(s); err != nil {
		return Translate(err, message)
	}
	return nil
}

// Translate converts validator errors into an ErrValidation carrying one
// message per field. Other errors are wrapped unchanged.
func Translate(err error, message string) error {
	if err == nil {
		return nil
	}
	if message == "" {
		message = appErrors.ErrValidation.Message
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = describe(fe)
	}
	out := appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, message), fields)
	out.Err = err
	return out
}

func describe(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required", "required_if", "required_unless", "required_with":
		return label + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return label + " must be at least " + fe.Param() + " characters"
		}
		return label + " must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return label + " must be at most " + fe.Param() + " characters"
		}
		return label + " must be at most " + fe.Param()
	case "oneof":
		return label + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return label + " must be a valid email"
	case "url":
		return label + " must be a valid URL"
	}
	return label + " is invalid"
}

// humanize turns a camelCase field name into a sentence-case label.
func humanize(field string) string {
	if field == "" {
		return "Value"
	}
	var b strings.Builder
	for i, r := range field {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
			r = unicode.ToLower(r)
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isAlphaSpace(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) || r == ' ' || r == '-' || r == '\'' || r == '.' {
			continue
		}
		return false
	}
	return true
}

func isPhone(s string) bool {
	digits := 0
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}
