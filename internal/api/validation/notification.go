package validation

import "time"

// NotificationRequest mirrors the fields needed to create a notification.
type NotificationRequest struct {
	Username   string
	Title      string
	Message    string
	Importance string
}

// ValidateNotificationRequest validates a notification request.
func ValidateNotificationRequest(req NotificationRequest) []FieldError {
	var errs []FieldError
	errs = identifier(errs, "username", req.Username)
	errs = required(errs, "title", req.Title)
	if req.Message == "" {
		errs = append(errs, FieldError{Field: "message", Message: "message is required"})
	}
	errs = oneOf(errs, "importance", req.Importance, "low", "medium", "high")
	return errs
}

// AlertRequest mirrors the fields needed for system alert validation.
type AlertRequest struct {
	Name      string
	Message   string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}

// ValidateAlertRequest validates a system alert request.
func ValidateAlertRequest(req AlertRequest) []FieldError {
	var errs []FieldError
	errs = required(errs, "name", req.Name)
	if req.Message == "" {
		errs = append(errs, FieldError{Field: "message", Message: "message is required"})
	}
	errs = oneOf(errs, "status", req.Status, "info", "warning", "danger", "success")
	if req.StartDate == nil {
		errs = append(errs, FieldError{Field: "startDate", Message: "startDate is required"})
	}
	errs = dateRange(errs, req.StartDate, req.EndDate, true)
	return errs
}
