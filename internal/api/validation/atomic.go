package validation

import (
	"bytes"
	"encoding/json"
)

// AtomicRecordRequest mirrors the fields of an atomic record request.
type AtomicRecordRequest struct {
	Reference string
	Data      json.RawMessage
}

// ValidateAtomicRecordRequest checks that data, when present, is a JSON object.
func ValidateAtomicRecordRequest(req AtomicRecordRequest) []FieldError {
	var errs []FieldError
	if len(req.Reference) > maxTextLength {
		errs = append(errs, FieldError{Field: "reference", Message: "reference must be at most 255 characters"})
	}
	data := bytes.TrimSpace(req.Data)
	if len(data) > 0 && (data[0] != '{' || !json.Valid(data)) {
		errs = append(errs, FieldError{Field: "data", Message: "data must be a JSON object"})
	}
	return errs
}
