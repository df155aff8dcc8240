package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/metrics"
)

func TestInstrumentHandler_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.InstrumentHandler)
	r.Get("/teams/{code}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", metrics.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teams/BI", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	metrics.RecordProxyRequest("reports", http.StatusOK)
	metrics.RecordAlertsArchived(2)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `nexus_http_requests_total{method="GET",route="/teams/{code}",status="418"}`)
	assert.Contains(t, text, `nexus_proxy_requests_total{status="200",upstream="reports"}`)
	assert.Contains(t, text, "nexus_alerts_archived_total")
}
