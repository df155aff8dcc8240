package auth

import (
	"time"
)

// User represents a row in the users table.
type User struct {
	Username     string
	PasswordHash string
	Email        string
	Name         string
	Organisation string
	Capabilities []Capability
	Archived     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is stored in the request context after authentication.
type Identity struct {
	Username     string       `json:"username"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Organisation string       `json:"organisation"`
	Capabilities []Capability `json:"capabilities"`
}

// IsAdmin reports whether the identity is a global administrator.
func (i *Identity) IsAdmin() bool {
	return i != nil && IsAdmin(i.Capabilities)
}

// HasCapability reports whether the identity holds the named capability.
func (i *Identity) HasCapability(name string) bool {
	return i != nil && HasCapability(i.Capabilities, name)
}

// IdentityFromUser builds the token identity for a stored user.
func IdentityFromUser(u *User) *Identity {
	return &Identity{
		Username:     u.Username,
		Name:         u.Name,
		Email:        u.Email,
		Organisation: u.Organisation,
		Capabilities: u.Capabilities,
	}
}
