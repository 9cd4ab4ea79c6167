// Package validation validates request payloads with go-playground
// validator struct tags plus a custom `password` complexity rule.
package validation

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/connexa-app/connexa/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Use json tag names for field names in error messages.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("password", passwordRule)
	})
	return validate
}

// Validate validates a struct using `validate` tags. A failure returns a
// 400 AppError with one detail line per violated rule.
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("Invalid request body")
	}

	details := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, formatFieldError(e)...)
	}
	return errors.Validation(details...)
}

// passwordRule enforces the registration password policy: at least one
// uppercase letter, one lowercase letter, one digit and one special
// character. Length bounds are separate min/max tags.
func passwordRule(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	var upper, lower, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && lower && digit && special
}

func formatFieldError(e validator.FieldError) []string {
	field := capitalize(e.Field())
	switch e.Tag() {
	case "required":
		return []string{field + " is required"}
	case "email":
		return []string{"Invalid email format"}
	case "min":
		return []string{field + " must be at least " + e.Param() + " characters long"}
	case "max":
		return []string{field + " must be at most " + e.Param() + " characters"}
	case "password":
		return passwordDetails(e.Value().(string))
	default:
		return []string{field + " is invalid"}
	}
}

// passwordDetails names each unmet complexity requirement, matching the
// message-per-rule style clients already display.
func passwordDetails(p string) []string {
	var upper, lower, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	var details []string
	if !upper {
		details = append(details, "Password must contain at least one uppercase letter")
	}
	if !lower {
		details = append(details, "Password must contain at least one lowercase letter")
	}
	if !digit {
		details = append(details, "Password must contain at least one number")
	}
	if !special {
		details = append(details, "Password must contain at least one special character")
	}
	return details
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
