package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a bearer token fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload issued at login.
type Claims struct {
	Username     string       `json:"username"`
	Name         string       `json:"name,omitempty"`
	Email        string       `json:"email,omitempty"`
	Organisation string       `json:"organisation,omitempty"`
	Capabilities []Capability `json:"capabilities"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer.
func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for the identity.
func (t *TokenIssuer) Issue(id *Identity) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)

	claims := &Claims{
		Username:     id.Username,
		Name:         id.Name,
		Email:        id.Email,
		Organisation: id.Organisation,
		Capabilities: id.Capabilities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expires, nil
}

// Verify parses a token and returns the identity it carries.
func (t *TokenIssuer) Verify(raw string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Username == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{
		Username:     claims.Username,
		Name:         claims.Name,
		Email:        claims.Email,
		Organisation: claims.Organisation,
		Capabilities: claims.Capabilities,
	}, nil
}
