package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/middleware"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/response"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/validation"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/auth"
)

type authenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerUserRequest struct {
	Username     string            `json:"username"`
	Password     string            `json:"password"`
	Email        string            `json:"email"`
	Name         string            `json:"name"`
	Organisation string            `json:"organisation"`
	Capabilities []auth.Capability `json:"capabilities"`
}

type capabilitiesRequest struct {
	Capabilities []auth.Capability `json:"capabilities"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type userResponse struct {
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	Name         string            `json:"name"`
	Organisation string            `json:"organisation"`
	Capabilities []auth.Capability `json:"capabilities"`
	Archived     bool              `json:"archived"`
	CreatedAt    string            `json:"createdAt"`
	UpdatedAt    string            `json:"updatedAt"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expiresAt"`
	User      userResponse `json:"user"`
}

func toUserResponse(u *auth.User) userResponse {
	caps := u.Capabilities
	if caps == nil {
		caps = []auth.Capability{}
	}
	return userResponse{
		Username:     u.Username,
		Email:        u.Email,
		Name:         u.Name,
		Organisation: u.Organisation,
		Capabilities: caps,
		Archived:     u.Archived,
		CreatedAt:    u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toValidationCaps(caps []auth.Capability) []validation.Capability {
	out := make([]validation.Capability, 0, len(caps))
	for _, c := range caps {
		out = append(out, validation.Capability{Name: c.Name, Value: c.Value})
	}
	return out
}

// UserHandler handles login and user management endpoints.
type UserHandler struct {
	svc  *auth.Service
	repo auth.UserRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *auth.Service, repo auth.UserRepository) *UserHandler {
	return &UserHandler{svc: svc, repo: repo}
}

// Authenticate handles POST /users/authenticate.
func (h *UserHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req authenticateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, r, validation.ValidateAuthenticateRequest(validation.AuthenticateRequest{
		Username: req.Username,
		Password: req.Password,
	})) {
		return
	}

	session, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			unauthorized(w, r, "Invalid username or password")
			return
		}
		internalError(w, r, "Failed to authenticate", err)
		return
	}

	response.Success(w, http.StatusOK, "Authenticated", sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
		User:      toUserResponse(session.User),
	}, requestID)
}

// Profile handles GET /users/profile.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		unauthorized(w, r, "Authorization token is required")
		return
	}
	response.Success(w, http.StatusOK, "Profile", identity, requestID)
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	users, err := h.repo.List(r.Context())
	if err != nil {
		internalError(w, r, "Failed to list users", err)
		return
	}

	items := make([]userResponse, 0, len(users))
	for i := range users {
		items = append(items, toUserResponse(&users[i]))
	}
	response.SuccessList(w, http.StatusOK, "Users", items, len(items), requestID)
}

// Register handles POST /users/register.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req registerUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, r, validation.ValidateRegisterUserRequest(validation.RegisterUserRequest{
		Username:     req.Username,
		Password:     req.Password,
		Email:        req.Email,
		Name:         req.Name,
		Organisation: req.Organisation,
		Capabilities: toValidationCaps(req.Capabilities),
	})) {
		return
	}

	u := &auth.User{
		Username:     req.Username,
		Email:        req.Email,
		Name:         req.Name,
		Organisation: req.Organisation,
		Capabilities: req.Capabilities,
	}
	if err := h.svc.Register(r.Context(), u, req.Password); err != nil {
		if errors.Is(err, auth.ErrDuplicateUsername) {
			response.Err(w, http.StatusConflict, "DUPLICATE_USERNAME", fmt.Sprintf("A user named %q already exists", req.Username), requestID)
			return
		}
		internalError(w, r, "Failed to register user", err)
		return
	}

	response.Success(w, http.StatusCreated, "User registered", toUserResponse(u), requestID)
}

// UpdateCapabilities handles PUT /users/{username}/capabilities.
func (h *UserHandler) UpdateCapabilities(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	username := chi.URLParam(r, "username")

	var req capabilitiesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, r, validation.ValidateCapabilities(toValidationCaps(req.Capabilities))) {
		return
	}
	if req.Capabilities == nil {
		req.Capabilities = []auth.Capability{}
	}

	u, err := h.repo.UpdateCapabilities(r.Context(), username, req.Capabilities)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			notFound(w, r, "User not found")
			return
		}
		internalError(w, r, "Failed to update capabilities", err, "username", username)
		return
	}

	response.Success(w, http.StatusOK, "Capabilities updated", toUserResponse(u), requestID)
}

// ChangePassword handles PUT /users/{username}/password. Users may change
// their own password; administrators may change anyone's.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	username := chi.URLParam(r, "username")

	identity := middleware.GetIdentity(r.Context())
	if identity == nil || (identity.Username != username && !identity.IsAdmin()) {
		unauthorized(w, r, "You may only change your own password")
		return
	}

	var req passwordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, r, validation.ValidatePassword(req.Password)) {
		return
	}

	if err := h.svc.ChangePassword(r.Context(), username, req.Password); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			notFound(w, r, "User not found")
			return
		}
		internalError(w, r, "Failed to change password", err, "username", username)
		return
	}

	response.Success(w, http.StatusOK, "Password changed", nil, requestID)
}

// Archive handles DELETE /users/{username}.
func (h *UserHandler) Archive(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	username := chi.URLParam(r, "username")

	if err := h.repo.Archive(r.Context(), username); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			notFound(w, r, "User not found")
			return
		}
		internalError(w, r, "Failed to archive user", err, "username", username)
		return
	}

	response.Success(w, http.StatusOK, "User archived", nil, requestID)
}
