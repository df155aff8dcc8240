package validation

import "strings"

const minPasswordLength = 8

// Capability mirrors one capability entry in a request.
type Capability struct {
	Name  string
	Value string
}

// AuthenticateRequest mirrors the fields of a login request.
type AuthenticateRequest struct {
	Username string
	Password string
}

// ValidateAuthenticateRequest validates a login request.
func ValidateAuthenticateRequest(req AuthenticateRequest) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(req.Username) == "" {
		errs = append(errs, FieldError{Field: "username", Message: "username is required"})
	}
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}
	return errs
}

// RegisterUserRequest mirrors the fields needed for user registration.
type RegisterUserRequest struct {
	Username     string
	Password     string
	Email        string
	Name         string
	Organisation string
	Capabilities []Capability
}

// ValidateRegisterUserRequest validates the fields of a register request.
func ValidateRegisterUserRequest(req RegisterUserRequest) []FieldError {
	var errs []FieldError

	errs = identifier(errs, "username", req.Username)
	errs = append(errs, ValidatePassword(req.Password)...)
	if req.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	} else {
		errs = email(errs, "email", req.Email)
	}
	errs = required(errs, "name", req.Name)
	errs = required(errs, "organisation", req.Organisation)
	errs = append(errs, ValidateCapabilities(req.Capabilities)...)

	return errs
}

// ValidatePassword checks the password policy.
func ValidatePassword(password string) []FieldError {
	if password == "" {
		return []FieldError{{Field: "password", Message: "password is required"}}
	}
	if len(password) < minPasswordLength {
		return []FieldError{{Field: "password", Message: "password must be at least 8 characters"}}
	}
	return nil
}

// ValidateCapabilities checks that every capability carries a name.
func ValidateCapabilities(caps []Capability) []FieldError {
	var errs []FieldError
	for _, c := range caps {
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, FieldError{Field: "capabilities", Message: "every capability must have a name"})
			break
		}
	}
	return errs
}
