package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when a username/password pair does not
// match an active user.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service provides authentication operations.
type Service struct {
	userRepo   UserRepository
	tokens     *TokenIssuer
	bcryptCost int
}

// NewService creates a new auth Service.
func NewService(userRepo UserRepository, tokens *TokenIssuer, bcryptCost int) *Service {
	return &Service{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

// HashPassword bcrypt-hashes a plaintext password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Authenticate checks a username/password pair and issues a token.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if u.Archived {
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(IdentityFromUser(u))
	if err != nil {
		return nil, err
	}

	slog.Info("user authenticated", "username", u.Username)
	return &Session{Token: token, ExpiresAt: expires, User: u}, nil
}

// Register creates a user with a hashed password.
func (s *Service) Register(ctx context.Context, u *User, password string) error {
	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash

	if err := s.userRepo.Create(ctx, u); err != nil {
		return err
	}
	return nil
}

// ChangePassword replaces a user's password.
func (s *Service) ChangePassword(ctx context.Context, username, password string) error {
	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, username, hash)
}

// Verify resolves a bearer token to an Identity.
func (s *Service) Verify(raw string) (*Identity, error) {
	return s.tokens.Verify(raw)
}
