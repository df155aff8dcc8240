package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/response"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestNewMeta_GeneratesUUID(t *testing.T) {
	meta := response.NewMeta("")

	_, err := uuid.Parse(meta.RequestID)
	assert.NoError(t, err, "requestId should be a valid UUID")
}

func TestNewMeta_UsesProvidedRequestID(t *testing.T) {
	meta := response.NewMeta("my-custom-request-id")

	assert.Equal(t, "my-custom-request-id", meta.RequestID)
}

func TestNewMeta_TimestampIsRFC3339(t *testing.T) {
	before := time.Now().UTC().Add(-1 * time.Second)

	meta := response.NewMeta("")

	parsed, err := time.Parse(time.RFC3339, meta.Timestamp)
	require.NoError(t, err, "timestamp should be valid RFC3339")
	assert.False(t, parsed.Before(before), "timestamp should be recent")
}

func TestSuccess_WritesCorrectEnvelope(t *testing.T) {
	w := httptest.NewRecorder()

	response.Success(w, http.StatusOK, "Team found", map[string]string{"code": "BI"}, "test-req-id")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	env := decode(t, w)
	assert.Equal(t, true, env["success"])
	assert.Equal(t, "Team found", env["msg"])
	assert.Equal(t, map[string]any{"code": "BI"}, env["data"])
	assert.Nil(t, env["error"])

	meta := env["meta"].(map[string]any)
	assert.Equal(t, "test-req-id", meta["requestId"])
	assert.NotEmpty(t, meta["timestamp"])
	assert.NotContains(t, meta, "total")
}

func TestSuccessList_IncludesTotal(t *testing.T) {
	w := httptest.NewRecorder()

	response.SuccessList(w, http.StatusOK, "Teams", []string{"a", "b"}, 2, "req-1")

	env := decode(t, w)
	assert.Equal(t, true, env["success"])
	meta := env["meta"].(map[string]any)
	assert.Equal(t, float64(2), meta["total"])
	assert.Equal(t, "req-1", meta["requestId"])
}

func TestErr_WritesErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()

	response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", "req-2")

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decode(t, w)
	assert.Equal(t, false, env["success"])
	assert.Equal(t, "Team not found", env["msg"])
	assert.Nil(t, env["data"])

	errObj := env["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errObj["code"])
	assert.NotContains(t, errObj, "details")
}

func TestErrWithDetails_IncludesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	details := []map[string]string{{"field": "code", "message": "code is required"}}

	response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", details, "req-3")

	env := decode(t, w)
	errObj := env["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
	assert.Len(t, errObj["details"], 1)
}
