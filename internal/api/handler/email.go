package handler

import (
	"net/http"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/middleware"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/response"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/validation"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/mail"
)

type emailRequest struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html"`
}

// EmailHandler handles POST /email/send.
type EmailHandler struct {
	sender mail.Sender
}

// NewEmailHandler creates a new EmailHandler.
func NewEmailHandler(sender mail.Sender) *EmailHandler {
	return &EmailHandler{sender: sender}
}

// Send validates the message and hands it to the configured mail driver.
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req emailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, r, validation.ValidateEmailRequest(validation.EmailRequest{
		To:      req.To,
		Subject: req.Subject,
		Text:    req.Text,
		HTML:    req.HTML,
	})) {
		return
	}

	err := h.sender.Send(r.Context(), mail.Message{
		To:      req.To,
		Subject: req.Subject,
		Text:    req.Text,
		HTML:    req.HTML,
	})
	if err != nil {
		internalError(w, r, "Failed to send email", err, "recipients", len(req.To))
		return
	}
	response.Success(w, http.StatusOK, "Email sent", nil, requestID)
}
