package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/middleware"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/response"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/validation"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/notification"
)

type notificationRequest struct {
	Username   string `json:"username"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Importance string `json:"importance"`
	SendEmail  bool   `json:"sendEmail"`
}

type notificationCreatedResponse struct {
	Notification *notification.Notification `json:"notification"`
	Emailed      bool                       `json:"emailed"`
}

// NotificationHandler handles notification endpoints. Reads and updates
// are scoped to the calling user.
type NotificationHandler struct {
	svc *notification.Service
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(svc *notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List handles GET /notifications.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		unauthorized(w, r, "Authorization token is required")
		return
	}

	items, err := h.svc.Repository().ListForUser(r.Context(), identity.Username)
	if err != nil {
		internalError(w, r, "Failed to list notifications", err, "username", identity.Username)
		return
	}
	if items == nil {
		items = []notification.Notification{}
	}
	response.SuccessList(w, http.StatusOK, "Notifications", items, len(items), requestID)
}

// Create handles POST /notifications.
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req notificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Importance == "" {
		req.Importance = "low"
	}
	if invalid(w, r, validation.ValidateNotificationRequest(validation.NotificationRequest{
		Username:   req.Username,
		Title:      req.Title,
		Message:    req.Message,
		Importance: req.Importance,
	})) {
		return
	}

	n := &notification.Notification{
		Username:   req.Username,
		Title:      req.Title,
		Message:    req.Message,
		Type:       req.Type,
		Importance: req.Importance,
	}
	if identity := middleware.GetIdentity(r.Context()); identity != nil {
		n.Author = identity.Username
	}

	emailed, err := h.svc.Send(r.Context(), n, req.SendEmail)
	if err != nil {
		internalError(w, r, "Failed to create notification", err, "username", req.Username)
		return
	}
	response.Success(w, http.StatusCreated, "Notification created", notificationCreatedResponse{
		Notification: n,
		Emailed:      emailed,
	}, requestID)
}

// MarkRead handles PUT /notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		unauthorized(w, r, "Authorization token is required")
		return
	}

	n, err := h.svc.Repository().MarkRead(r.Context(), identity.Username, id)
	if err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			notFound(w, r, "Notification not found")
			return
		}
		internalError(w, r, "Failed to mark notification read", err, "id", id)
		return
	}
	response.Success(w, http.StatusOK, "Notification marked read", n, requestID)
}

// Archive handles DELETE /notifications/{id}.
func (h *NotificationHandler) Archive(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		unauthorized(w, r, "Authorization token is required")
		return
	}

	if err := h.svc.Repository().Archive(r.Context(), identity.Username, id); err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			notFound(w, r, "Notification not found")
			return
		}
		internalError(w, r, "Failed to archive notification", err, "id", id)
		return
	}
	response.Success(w, http.StatusOK, "Notification archived", nil, requestID)
}
