// validation.go
package recruitprefs

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/CreativeUnicorns/recruitprefs/security"
)

var (
	personNamePattern = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	phonePattern      = regexp.MustCompile(`^[+]?[\d\s()-]{10,15}$`)
	regNumberPattern  = regexp.MustCompile(`^[0-9]{2}[A-Z]{3}[0-9]{4}$`)
)

// fieldMessages are the applicant-facing messages, keyed by JSON field name.
var fieldMessages = map[string]string{
	"firstName":    "First name must be 2-50 characters and contain only letters",
	"lastName":     "Last name must be 2-50 characters and contain only letters",
	"email":        "Please enter a valid email address",
	"phone":        "Please enter a valid phone number",
	"regNumber":    "Please enter a valid VIT registration number (e.g., 22BCE1234)",
	"year":         "Please select a valid year",
	"skills":       "Please describe your skills (10-1000 characters)",
	"motivation":   "Please explain your motivation (20-2000 characters)",
	"contribution": "Contribution must be no more than 2000 characters",
	"department":   "Please select a department",
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
			return personNamePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
			return isValidMailbox(fl.Field().String())
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return isValidPhone(fl.Field().String())
		})
		_ = v.RegisterValidation("regnumber", func(fl validator.FieldLevel) bool {
			return regNumberPattern.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// isValidMailbox applies the length and dot rules the generic email check misses.
func isValidMailbox(email string) bool {
	if len(email) > 254 || strings.Contains(email, "..") {
		return false
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return false
	}
	return len(local) <= 64 && len(domain) <= 253
}

// isValidPhone requires 10-15 digits that are not all the same digit.
func isValidPhone(phone string) bool {
	if !phonePattern.MatchString(phone) {
		return false
	}

	var digits []rune
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 10 || len(digits) > 15 {
		return false
	}
	for _, d := range digits[1:] {
		if d != digits[0] {
			return true
		}
	}
	return false
}

// SanitizeForm returns a copy of form with every field cleaned for its kind.
func SanitizeForm(form ApplicationForm) ApplicationForm {
	return ApplicationForm{
		FirstName:    security.CollapseWhitespace(security.Sanitize(form.FirstName, security.KindName)),
		LastName:     security.CollapseWhitespace(security.Sanitize(form.LastName, security.KindName)),
		Email:        strings.ToLower(security.Sanitize(form.Email, security.KindEmail)),
		Phone:        security.Sanitize(form.Phone, security.KindPhone),
		RegNumber:    security.Sanitize(form.RegNumber, security.KindRegNumber),
		Year:         security.Sanitize(form.Year, security.KindDefault),
		Skills:       security.Sanitize(form.Skills, security.KindText),
		Motivation:   security.Sanitize(form.Motivation, security.KindText),
		Contribution: security.Sanitize(form.Contribution, security.KindText),
		Website:      form.Website,
	}
}

// ValidateForm checks a sanitized form and returns a *ValidationError naming every
// rejected field, or nil.
func ValidateForm(form ApplicationForm) error {
	err := formValidator().Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if _, seen := fields[name]; seen {
			continue
		}
		msg, ok := fieldMessages[name]
		if !ok {
			msg = name + " is invalid"
		}
		fields[name] = msg
	}
	return &ValidationError{Fields: fields}
}

// validateSelection checks that a selection can be persisted against catalog.
func validateSelection(state SelectionState, catalog *Catalog) error {
	if state.Primary == nil {
		return ErrMissingPreference
	}
	if !catalog.Contains(state.PrimaryID()) {
		return ErrUnknownOption
	}
	if state.Secondary == nil {
		return nil
	}
	if !catalog.Contains(state.SecondaryID()) {
		return ErrUnknownOption
	}
	if state.PrimaryID() == state.SecondaryID() {
		return &ConflictError{Reason: "duplicate selection", OptionID: state.SecondaryID()}
	}
	return nil
}

// FieldMessage returns the applicant-facing message for a form field.
func FieldMessage(field string) string {
	return fieldMessages[field]
}
