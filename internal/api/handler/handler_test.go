package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/middleware"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/auth"
)

var (
	adminIdentity = &auth.Identity{
		Username:     "admin",
		Organisation: "Blackpool",
		Capabilities: []auth.Capability{{Name: "Admin", Value: auth.PrivilegedRole}},
	}
	userIdentity = &auth.Identity{
		Username:     "jdoe",
		Email:        "jane@example.nhs.uk",
		Organisation: "Blackpool",
	}
)

func makeChiRequest(method, path string, body []byte, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req, w
}

// asUser attaches an authenticated identity to the request.
func asUser(req *http.Request, id *auth.Identity) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), id))
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := parseEnvelope(t, w)
	require.Equal(t, false, env["success"])
	errObj, ok := env["error"].(map[string]interface{})
	require.True(t, ok, "error object missing: %s", w.Body.String())
	return errObj["code"].(string)
}

func dataMap(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	env := parseEnvelope(t, w)
	require.Equal(t, true, env["success"])
	data, ok := env["data"].(map[string]interface{})
	require.True(t, ok, "data is not an object: %s", w.Body.String())
	return data
}

func dataList(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	env := parseEnvelope(t, w)
	require.Equal(t, true, env["success"])
	data, ok := env["data"].([]interface{})
	require.True(t, ok, "data is not a list: %s", w.Body.String())
	return data
}
