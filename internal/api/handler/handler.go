package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/middleware"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/response"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/validation"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

// invalid writes a 400 with field details when errs is non-empty.
func invalid(w http.ResponseWriter, r *http.Request, errs []validation.FieldError) bool {
	if len(errs) == 0 {
		return false
	}
	response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", errs, middleware.GetRequestID(r.Context()))
	return true
}

func internalError(w http.ResponseWriter, r *http.Request, msg string, err error, attrs ...any) {
	slog.ErrorContext(r.Context(), msg, append([]any{"error", err}, attrs...)...)
	response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", msg, middleware.GetRequestID(r.Context()))
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", msg, middleware.GetRequestID(r.Context()))
}

func notFound(w http.ResponseWriter, r *http.Request, msg string) {
	response.Err(w, http.StatusNotFound, "NOT_FOUND", msg, middleware.GetRequestID(r.Context()))
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
