package validation

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const maxTextLength = 255

// identifierRegex matches usernames, team codes and organisation names.
var identifierRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._@-]{0,127}$`)

func required(errs []FieldError, field, value string) []FieldError {
	v := strings.TrimSpace(value)
	if v == "" {
		return append(errs, FieldError{Field: field, Message: field + " is required"})
	}
	if len(v) > maxTextLength {
		return append(errs, FieldError{Field: field, Message: field + " must be at most 255 characters"})
	}
	return errs
}

func identifier(errs []FieldError, field, value string) []FieldError {
	if value == "" {
		return append(errs, FieldError{Field: field, Message: field + " is required"})
	}
	if !identifierRegex.MatchString(value) {
		return append(errs, FieldError{Field: field, Message: field + " must be 1-128 letters, digits or . _ @ - characters"})
	}
	return errs
}

func email(errs []FieldError, field, value string) []FieldError {
	if _, err := mail.ParseAddress(value); err != nil {
		return append(errs, FieldError{Field: field, Message: field + " must be a valid email address"})
	}
	return errs
}

func dateRange(errs []FieldError, start, end *time.Time, endRequired bool) []FieldError {
	if endRequired && end == nil {
		errs = append(errs, FieldError{Field: "endDate", Message: "endDate is required"})
	}
	if start != nil && end != nil && end.Before(*start) {
		errs = append(errs, FieldError{Field: "endDate", Message: "endDate must not be before startDate"})
	}
	return errs
}

func oneOf(errs []FieldError, field, value string, allowed ...string) []FieldError {
	if value == "" {
		return errs
	}
	for _, a := range allowed {
		if value == a {
			return errs
		}
	}
	return append(errs, FieldError{Field: field, Message: field + " must be one of: " + strings.Join(allowed, ", ")})
}
