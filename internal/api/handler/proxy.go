package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/middleware"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/response"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/proxy"
)

// ProxyHandler forwards requests to configured upstream services.
type ProxyHandler struct {
	registry *proxy.Registry
}

// NewProxyHandler creates a new ProxyHandler.
func NewProxyHandler(registry *proxy.Registry) *ProxyHandler {
	return &ProxyHandler{registry: registry}
}

// UpstreamError writes the 502 envelope for a failed upstream round trip.
// It is passed to proxy.NewRegistry as the registry's error handler.
func UpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	slog.WarnContext(r.Context(), "upstream request failed", "path", r.URL.Path, "error", err)
	response.Err(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Upstream service unavailable", middleware.GetRequestID(r.Context()))
}

// List handles GET /proxy.
func (h *ProxyHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	names := h.registry.Names()
	response.SuccessList(w, http.StatusOK, "Upstreams", names, len(names), requestID)
}

// Forward handles /proxy/{upstream}/*.
func (h *ProxyHandler) Forward(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	name := chi.URLParam(r, "upstream")

	upstream, ok := h.registry.Get(name)
	if !ok {
		notFound(w, r, "Upstream not found")
		return
	}
	if upstream.Capability != "" && !middleware.GetIdentity(r.Context()).HasCapability(upstream.Capability) {
		unauthorized(w, r, "Missing capability "+upstream.Capability)
		return
	}
	if !upstream.Allow() {
		response.Err(w, http.StatusTooManyRequests, "RATE_LIMITED", "Upstream rate limit exceeded", requestID)
		return
	}

	if err := upstream.Forward(w, r, chi.URLParam(r, "*")); err != nil {
		if errors.Is(err, proxy.ErrInvalidPath) {
			response.Err(w, http.StatusBadRequest, "INVALID_PATH", "Invalid upstream path", requestID)
			return
		}
		internalError(w, r, "Failed to forward request", err)
	}
}
