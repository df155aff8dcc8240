package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/auth"
)

const testSecret = "test-secret-value"

func TestTokenIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := auth.NewTokenIssuer(testSecret, "nexus", time.Hour)
	id := &auth.Identity{
		Username:     "jdoe",
		Name:         "Jane Doe",
		Email:        "jane@example.nhs.uk",
		Organisation: "Blackpool",
		Capabilities: []auth.Capability{{Name: "Admin", Value: auth.PrivilegedRole}},
	}

	token, expires, err := issuer.Issue(id)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expires.After(time.Now()))

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	t.Parallel()

	token, _, err := auth.NewTokenIssuer("one", "nexus", time.Hour).Issue(&auth.Identity{Username: "jdoe"})
	require.NoError(t, err)

	_, err = auth.NewTokenIssuer("two", "nexus", time.Hour).Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenIssuer_WrongIssuer(t *testing.T) {
	t.Parallel()

	token, _, err := auth.NewTokenIssuer(testSecret, "other", time.Hour).Issue(&auth.Identity{Username: "jdoe"})
	require.NoError(t, err)

	_, err = auth.NewTokenIssuer(testSecret, "nexus", time.Hour).Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenIssuer_Expired(t *testing.T) {
	t.Parallel()

	token, _, err := auth.NewTokenIssuer(testSecret, "nexus", -time.Minute).Issue(&auth.Identity{Username: "jdoe"})
	require.NoError(t, err)

	_, err = auth.NewTokenIssuer(testSecret, "nexus", time.Hour).Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenIssuer_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	claims := &auth.Claims{
		Username: "jdoe",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "nexus",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = auth.NewTokenIssuer(testSecret, "nexus", time.Hour).Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenIssuer_Garbage(t *testing.T) {
	t.Parallel()

	_, err := auth.NewTokenIssuer(testSecret, "nexus", time.Hour).Verify("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
