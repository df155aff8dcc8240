package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/alert"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/middleware"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/response"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/validation"
)

type alertRequest struct {
	Name      string     `json:"name"`
	Message   string     `json:"message"`
	Icon      string     `json:"icon"`
	Status    string     `json:"status"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

func (req alertRequest) validate() []validation.FieldError {
	return validation.ValidateAlertRequest(validation.AlertRequest{
		Name:      req.Name,
		Message:   req.Message,
		Status:    req.Status,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
}

// toAlert must only be called after validate succeeds.
func (req alertRequest) toAlert() *alert.Alert {
	return &alert.Alert{
		Name:      req.Name,
		Message:   req.Message,
		Icon:      req.Icon,
		Status:    req.Status,
		StartDate: req.StartDate.UTC(),
		EndDate:   req.EndDate.UTC(),
	}
}

// AlertHandler handles system alert endpoints.
type AlertHandler struct {
	repo alert.Repository
	now  func() time.Time
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(repo alert.Repository) *AlertHandler {
	return &AlertHandler{repo: repo, now: nowUTC}
}

// List handles GET /systemalerts.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	alerts, err := h.repo.List(r.Context())
	if err != nil {
		internalError(w, r, "Failed to list system alerts", err)
		return
	}
	if alerts == nil {
		alerts = []alert.Alert{}
	}
	response.SuccessList(w, http.StatusOK, "System alerts", alerts, len(alerts), requestID)
}

// Active handles GET /systemalerts/active.
func (h *AlertHandler) Active(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	alerts, err := alert.Active(r.Context(), h.repo, h.now())
	if err != nil {
		internalError(w, r, "Failed to list active system alerts", err)
		return
	}
	if alerts == nil {
		alerts = []alert.Alert{}
	}
	response.SuccessList(w, http.StatusOK, "Active system alerts", alerts, len(alerts), requestID)
}

// Create handles POST /systemalerts.
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req alertRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, r, req.validate()) {
		return
	}

	a := req.toAlert()
	if identity := middleware.GetIdentity(r.Context()); identity != nil {
		a.Author = identity.Username
	}
	if err := h.repo.Create(r.Context(), a); err != nil {
		internalError(w, r, "Failed to create system alert", err)
		return
	}
	response.Success(w, http.StatusCreated, "System alert created", a, requestID)
}

// Replace handles PUT /systemalerts/{id}.
func (h *AlertHandler) Replace(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")

	var req alertRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, r, req.validate()) {
		return
	}

	a := req.toAlert()
	a.ID = id
	if identity := middleware.GetIdentity(r.Context()); identity != nil {
		a.Author = identity.Username
	}
	if err := h.repo.Replace(r.Context(), a); err != nil {
		if errors.Is(err, alert.ErrAlertNotFound) {
			notFound(w, r, "System alert not found")
			return
		}
		internalError(w, r, "Failed to update system alert", err, "id", id)
		return
	}
	response.Success(w, http.StatusOK, "System alert updated", a, requestID)
}

// Archive handles DELETE /systemalerts/{id}.
func (h *AlertHandler) Archive(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.repo.Archive(r.Context(), id); err != nil {
		if errors.Is(err, alert.ErrAlertNotFound) {
			notFound(w, r, "System alert not found")
			return
		}
		internalError(w, r, "Failed to archive system alert", err, "id", id)
		return
	}
	response.Success(w, http.StatusOK, "System alert archived", nil, requestID)
}
