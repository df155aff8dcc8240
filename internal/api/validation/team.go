package validation

import "time"

// TeamRequest mirrors the fields needed for team create and replace validation.
type TeamRequest struct {
	Code         string
	Name         string
	Organisation string
}

// ValidateTeamRequest validates the fields of a team request.
func ValidateTeamRequest(req TeamRequest) []FieldError {
	var errs []FieldError
	errs = identifier(errs, "code", req.Code)
	errs = required(errs, "name", req.Name)
	errs = required(errs, "organisation", req.Organisation)
	return errs
}

// TeamRoleRequest mirrors the fields needed for team role validation.
type TeamRoleRequest struct {
	Username  string
	Role      string
	StartDate *time.Time
	EndDate   *time.Time
}

// ValidateTeamRoleRequest validates the fields of a team role request.
func ValidateTeamRoleRequest(req TeamRoleRequest) []FieldError {
	var errs []FieldError
	errs = identifier(errs, "username", req.Username)
	errs = required(errs, "role", req.Role)
	errs = dateRange(errs, req.StartDate, req.EndDate, false)
	return errs
}

// OrgMemberRequest mirrors the fields needed to add an organisation member.
type OrgMemberRequest struct {
	Username string
}

// ValidateOrgMemberRequest validates an organisation member request.
func ValidateOrgMemberRequest(req OrgMemberRequest) []FieldError {
	return identifier(nil, "username", req.Username)
}
