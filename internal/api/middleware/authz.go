package middleware

import (
	"net/http"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/response"
)

// RequireAdmin returns middleware that rejects callers who are not system
// administrators with 401.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !GetIdentity(r.Context()).IsAdmin() {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Administrator access required", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCapability returns middleware that rejects callers lacking the named
// capability with 401. Administrators hold every capability.
func RequireCapability(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !GetIdentity(r.Context()).HasCapability(name) {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing capability: "+name, GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
