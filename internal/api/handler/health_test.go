package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/handler"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error {
	return m.err
}

func TestHealthHandler_Healthy(t *testing.T) {
	t.Parallel()
	h := handler.NewHealthHandler(map[string]handler.Pinger{
		"postgres": &mockPinger{},
		"dynamodb": &mockPinger{},
	}, "1.2.3")

	req, w := makeChiRequest(http.MethodGet, "/health", nil, nil)
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, w)
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "1.2.3", data["version"])
	deps := data["dependencies"].([]interface{})
	require.Len(t, deps, 2)
	assert.Equal(t, "dynamodb", deps[0].(map[string]interface{})["name"])
	assert.Nil(t, deps[0].(map[string]interface{})["error"])
}

func TestHealthHandler_Degraded(t *testing.T) {
	t.Parallel()
	h := handler.NewHealthHandler(map[string]handler.Pinger{
		"postgres": &mockPinger{err: errors.New("connection refused")},
		"dynamodb": &mockPinger{},
	}, "dev")

	req, w := makeChiRequest(http.MethodGet, "/health", nil, nil)
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, w)
	assert.Equal(t, "degraded", data["status"])
	deps := data["dependencies"].([]interface{})
	pg := deps[1].(map[string]interface{})
	assert.Equal(t, "postgres", pg["name"])
	assert.Equal(t, false, pg["connected"])
	assert.Equal(t, "connection refused", pg["error"])
}
