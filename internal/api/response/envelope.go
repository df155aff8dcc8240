package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Meta holds metadata for every API response.
type Meta struct {
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
}

// ListMeta extends Meta with the number of returned items.
type ListMeta struct {
	Meta
	Total int `json:"total"`
}

// Error represents a structured API error. The human-readable message is
// carried in the envelope's msg field.
type Error struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the standard API response wrapper.
type Envelope struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Data    any    `json:"data"`
	Error   *Error `json:"error"`
	Meta    any    `json:"meta"`
}

// NewMeta creates a Meta with a new UUID and current timestamp.
// If requestID is provided, it uses that instead of generating a new one.
func NewMeta(requestID string) Meta {
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return Meta{
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// JSON writes a JSON response with the given status code and envelope.
func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Success writes a successful JSON response.
func Success(w http.ResponseWriter, status int, msg string, data any, requestID string) {
	JSON(w, status, Envelope{
		Success: true,
		Msg:     msg,
		Data:    data,
		Meta:    NewMeta(requestID),
	})
}

// SuccessList writes a successful list JSON response with the item count.
func SuccessList(w http.ResponseWriter, status int, msg string, data any, total int, requestID string) {
	JSON(w, status, Envelope{
		Success: true,
		Msg:     msg,
		Data:    data,
		Meta: ListMeta{
			Meta:  NewMeta(requestID),
			Total: total,
		},
	})
}

// Err writes an error JSON response.
func Err(w http.ResponseWriter, status int, code string, msg string, requestID string) {
	JSON(w, status, Envelope{
		Msg:   msg,
		Error: &Error{Code: code},
		Meta:  NewMeta(requestID),
	})
}

// ErrWithDetails writes an error JSON response with additional details.
func ErrWithDetails(w http.ResponseWriter, status int, code string, msg string, details any, requestID string) {
	JSON(w, status, Envelope{
		Msg:   msg,
		Error: &Error{Code: code, Details: details},
		Meta:  NewMeta(requestID),
	})
}
