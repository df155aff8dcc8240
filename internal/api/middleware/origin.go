package middleware

import (
	"net/http"
	"strings"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/response"
)

// CheckOrigin returns middleware that requires the Referer header to contain
// allowed. An empty allowed value disables the check.
func CheckOrigin(allowed string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if allowed == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Referer"), allowed) {
				response.Err(w, http.StatusForbidden, "FORBIDDEN_ORIGIN", "Request origin is not allowed", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
