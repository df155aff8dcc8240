package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/middleware"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/response"
)

const pingTimeout = 2 * time.Second

// Pinger checks connectivity to a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	checks  map[string]Pinger
	version string
}

// NewHealthHandler creates a new HealthHandler. checks maps a dependency
// name (e.g. "postgres") to its pinger.
func NewHealthHandler(checks map[string]Pinger, version string) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		version: version,
	}
}

type dependencyStatus struct {
	Name      string  `json:"name"`
	Connected bool    `json:"connected"`
	Error     *string `json:"error"`
}

type healthData struct {
	Status       string             `json:"status"`
	Version      string             `json:"version"`
	Dependencies []dependencyStatus `json:"dependencies"`
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "healthy"
	deps := make([]dependencyStatus, 0, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		err := h.checks[name].Ping(ctx)
		cancel()

		dep := dependencyStatus{Name: name, Connected: err == nil}
		if err != nil {
			msg := err.Error()
			dep.Error = &msg
			status = "degraded"
		}
		deps = append(deps, dep)
	}

	response.Success(w, http.StatusOK, "Service is "+status, healthData{
		Status:       status,
		Version:      h.version,
		Dependencies: deps,
	}, requestID)
}
