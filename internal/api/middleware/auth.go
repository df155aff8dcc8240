package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/response"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/auth"
)

const identityKey contextKey = "identity"

// TokenVerifier resolves a raw token to an Identity.
type TokenVerifier interface {
	Verify(raw string) (*auth.Identity, error)
}

// Auth is middleware that reads the Authorization header ("Bearer <token>"
// or "JWT <token>") and resolves it to an Identity. Missing or invalid
// tokens return 401.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			raw := bearerToken(r.Header.Get("Authorization"))
			if raw == "" {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization token is required", requestID)
				return
			}

			identity, err := verifier.Verify(raw)
			if err != nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", requestID)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	if !strings.EqualFold(scheme, "Bearer") && !strings.EqualFold(scheme, "JWT") {
		return ""
	}
	return strings.TrimSpace(token)
}

// WithIdentity returns a context carrying the given Identity.
func WithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity retrieves the authenticated Identity from the request context.
func GetIdentity(ctx context.Context) *auth.Identity {
	if id, ok := ctx.Value(identityKey).(*auth.Identity); ok {
		return id
	}
	return nil
}
