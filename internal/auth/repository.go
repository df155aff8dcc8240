package auth

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateUsername is returned when the username is already registered.
var ErrDuplicateUsername = errors.New("username already exists")

// UserRepository provides operations on the users table.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateCapabilities(ctx context.Context, username string, caps []Capability) (*User, error)
	UpdatePassword(ctx context.Context, username, hash string) error
	Archive(ctx context.Context, username string) error
}
