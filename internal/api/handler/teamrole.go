package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/middleware"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/response"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/validation"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/team"
)

type teamRoleRequest struct {
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

func (req teamRoleRequest) validate() []validation.FieldError {
	return validation.ValidateTeamRoleRequest(validation.TeamRoleRequest{
		Username:  req.Username,
		Role:      req.Role,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
}

func (req teamRoleRequest) toRole(teamCode string) *team.Role {
	role := &team.Role{
		TeamCode: teamCode,
		Username: req.Username,
		Role:     req.Role,
		EndDate:  req.EndDate,
	}
	if req.StartDate != nil {
		role.StartDate = req.StartDate.UTC()
	}
	return role
}

// TeamRoleHandler handles team role endpoints. Role changes require the
// caller to administer the team.
type TeamRoleHandler struct {
	teams *TeamHandler
}

// NewTeamRoleHandler creates a new TeamRoleHandler.
func NewTeamRoleHandler(teams *TeamHandler) *TeamRoleHandler {
	return &TeamRoleHandler{teams: teams}
}

// ListByTeam handles GET /teams/{code}/roles.
func (h *TeamRoleHandler) ListByTeam(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	code := chi.URLParam(r, "code")

	roles, err := h.teams.roles.ListByTeam(r.Context(), code)
	if err != nil {
		internalError(w, r, "Failed to list team roles", err, "code", code)
		return
	}
	if roles == nil {
		roles = []team.Role{}
	}
	response.SuccessList(w, http.StatusOK, "Team roles", roles, len(roles), requestID)
}

// ListByUser handles GET /users/{username}/teamroles.
func (h *TeamRoleHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	username := chi.URLParam(r, "username")

	roles, err := h.teams.roles.ListByUser(r.Context(), username)
	if err != nil {
		internalError(w, r, "Failed to list team roles", err, "username", username)
		return
	}
	if roles == nil {
		roles = []team.Role{}
	}
	response.SuccessList(w, http.StatusOK, "Team roles", roles, len(roles), requestID)
}

// Create handles POST /teams/{code}/roles.
func (h *TeamRoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	code := chi.URLParam(r, "code")

	var req teamRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, r, req.validate()) {
		return
	}

	if _, err := h.teams.repo.Get(r.Context(), code); err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			notFound(w, r, "Team not found")
			return
		}
		internalError(w, r, "Failed to get team", err, "code", code)
		return
	}
	if !h.teams.authorize(w, r, code) {
		return
	}

	role := req.toRole(code)
	if err := h.teams.roles.Create(r.Context(), role); err != nil {
		internalError(w, r, "Failed to create team role", err, "code", code)
		return
	}
	response.Success(w, http.StatusCreated, "Team role created", role, requestID)
}

// Replace handles PUT /teams/{code}/roles/{id}.
func (h *TeamRoleHandler) Replace(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	code := chi.URLParam(r, "code")
	id := chi.URLParam(r, "id")

	var req teamRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, r, req.validate()) {
		return
	}
	if !h.teams.authorize(w, r, code) {
		return
	}

	role := req.toRole(code)
	role.ID = id
	if err := h.teams.roles.Replace(r.Context(), role); err != nil {
		if errors.Is(err, team.ErrRoleNotFound) {
			notFound(w, r, "Team role not found")
			return
		}
		internalError(w, r, "Failed to update team role", err, "code", code, "id", id)
		return
	}
	response.Success(w, http.StatusOK, "Team role updated", role, requestID)
}

// Archive handles DELETE /teams/{code}/roles/{id}.
func (h *TeamRoleHandler) Archive(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	code := chi.URLParam(r, "code")
	id := chi.URLParam(r, "id")

	if !h.teams.authorize(w, r, code) {
		return
	}

	if err := h.teams.roles.Archive(r.Context(), code, id); err != nil {
		if errors.Is(err, team.ErrRoleNotFound) {
			notFound(w, r, "Team role not found")
			return
		}
		internalError(w, r, "Failed to archive team role", err, "code", code, "id", id)
		return
	}
	response.Success(w, http.StatusOK, "Team role archived", nil, requestID)
}
