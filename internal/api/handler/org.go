package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/middleware"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/response"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/validation"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/org"
)

type orgMemberRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// OrgMemberHandler handles organisation membership endpoints.
type OrgMemberHandler struct {
	repo org.Repository
}

// NewOrgMemberHandler creates a new OrgMemberHandler.
func NewOrgMemberHandler(repo org.Repository) *OrgMemberHandler {
	return &OrgMemberHandler{repo: repo}
}

// List handles GET /organisations/{org}/members.
func (h *OrgMemberHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	organisation := chi.URLParam(r, "org")

	members, err := h.repo.List(r.Context(), organisation)
	if err != nil {
		internalError(w, r, "Failed to list organisation members", err, "organisation", organisation)
		return
	}
	if members == nil {
		members = []org.Member{}
	}
	response.SuccessList(w, http.StatusOK, "Organisation members", members, len(members), requestID)
}

// Add handles POST /organisations/{org}/members.
func (h *OrgMemberHandler) Add(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	organisation := chi.URLParam(r, "org")

	var req orgMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, r, validation.ValidateOrgMemberRequest(validation.OrgMemberRequest{Username: req.Username})) {
		return
	}

	m := &org.Member{Organisation: organisation, Username: req.Username, Role: req.Role}
	if err := h.repo.Add(r.Context(), m); err != nil {
		if errors.Is(err, org.ErrDuplicateMember) {
			response.Err(w, http.StatusConflict, "DUPLICATE_MEMBER", "User is already a member of the organisation", requestID)
			return
		}
		internalError(w, r, "Failed to add organisation member", err, "organisation", organisation)
		return
	}
	response.Success(w, http.StatusCreated, "Member added", m, requestID)
}

// Remove handles DELETE /organisations/{org}/members/{username}.
func (h *OrgMemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	organisation := chi.URLParam(r, "org")
	username := chi.URLParam(r, "username")

	if err := h.repo.Remove(r.Context(), organisation, username); err != nil {
		if errors.Is(err, org.ErrMemberNotFound) {
			notFound(w, r, "Organisation member not found")
			return
		}
		internalError(w, r, "Failed to remove organisation member", err, "organisation", organisation, "username", username)
		return
	}
	response.Success(w, http.StatusOK, "Member removed", nil, requestID)
}
