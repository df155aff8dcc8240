package validation

import (
	"fmt"
	"strings"
)

const maxRecipients = 50

// EmailRequest mirrors the fields of a send email request.
type EmailRequest struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// ValidateEmailRequest validates a send email request.
func ValidateEmailRequest(req EmailRequest) []FieldError {
	var errs []FieldError

	switch {
	case len(req.To) == 0:
		errs = append(errs, FieldError{Field: "to", Message: "to must list at least one recipient"})
	case len(req.To) > maxRecipients:
		errs = append(errs, FieldError{Field: "to", Message: fmt.Sprintf("to must list at most %d recipients", maxRecipients)})
	default:
		for i, addr := range req.To {
			errs = email(errs, fmt.Sprintf("to[%d]", i), addr)
		}
	}

	errs = required(errs, "subject", req.Subject)
	if strings.TrimSpace(req.Text) == "" && strings.TrimSpace(req.HTML) == "" {
		errs = append(errs, FieldError{Field: "text", Message: "text or html is required"})
	}
	return errs
}
