package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/middleware"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/response"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/validation"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/team"
)

type teamRequest struct {
	Code              string   `json:"code"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Organisation      string   `json:"organisation"`
	ResponsiblePeople []string `json:"responsiblePeople"`
}

func (req teamRequest) validate() []validation.FieldError {
	return validation.ValidateTeamRequest(validation.TeamRequest{
		Code:         req.Code,
		Name:         req.Name,
		Organisation: req.Organisation,
	})
}

func (req teamRequest) toTeam() *team.Team {
	people := req.ResponsiblePeople
	if people == nil {
		people = []string{}
	}
	return &team.Team{
		Code:              req.Code,
		Name:              req.Name,
		Description:       req.Description,
		Organisation:      req.Organisation,
		ResponsiblePeople: people,
	}
}

// TeamHandler handles team management endpoints.
type TeamHandler struct {
	repo  team.Repository
	roles team.RoleRepository
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(repo team.Repository, roles team.RoleRepository) *TeamHandler {
	return &TeamHandler{repo: repo, roles: roles}
}

// List handles GET /teams.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teams, err := h.repo.List(r.Context(), r.URL.Query().Get("organisation"))
	if err != nil {
		internalError(w, r, "Failed to list teams", err)
		return
	}
	if teams == nil {
		teams = []team.Team{}
	}
	response.SuccessList(w, http.StatusOK, "Teams", teams, len(teams), requestID)
}

// Get handles GET /teams/{code}.
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	code := chi.URLParam(r, "code")

	t, err := h.repo.Get(r.Context(), code)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			notFound(w, r, "Team not found")
			return
		}
		internalError(w, r, "Failed to get team", err, "code", code)
		return
	}
	response.Success(w, http.StatusOK, "Team", t, requestID)
}

// Create handles POST /teams.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req teamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, r, req.validate()) {
		return
	}

	t := req.toTeam()
	if err := h.repo.Create(r.Context(), t); err != nil {
		if errors.Is(err, team.ErrDuplicateTeamCode) {
			response.Err(w, http.StatusConflict, "DUPLICATE_CODE", fmt.Sprintf("A team with code %q already exists", req.Code), requestID)
			return
		}
		internalError(w, r, "Failed to create team", err, "code", req.Code)
		return
	}
	response.Success(w, http.StatusCreated, "Team created", t, requestID)
}

// Replace handles PUT /teams/{code}. The caller must be a global or team
// administrator.
func (h *TeamHandler) Replace(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	code := chi.URLParam(r, "code")

	var req teamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Code = code
	if invalid(w, r, req.validate()) {
		return
	}

	if !h.authorize(w, r, code) {
		return
	}

	t := req.toTeam()
	if err := h.repo.Replace(r.Context(), t); err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			notFound(w, r, "Team not found")
			return
		}
		internalError(w, r, "Failed to update team", err, "code", code)
		return
	}
	response.Success(w, http.StatusOK, "Team updated", t, requestID)
}

// Archive handles DELETE /teams/{code}.
func (h *TeamHandler) Archive(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	code := chi.URLParam(r, "code")

	if err := h.repo.Archive(r.Context(), code); err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			notFound(w, r, "Team not found")
			return
		}
		internalError(w, r, "Failed to archive team", err, "code", code)
		return
	}
	response.Success(w, http.StatusOK, "Team archived", nil, requestID)
}

// authorize writes a 401 and returns false unless the caller may manage the team.
func (h *TeamHandler) authorize(w http.ResponseWriter, r *http.Request, code string) bool {
	ok, err := team.CanManage(r.Context(), h.roles, middleware.GetIdentity(r.Context()), code, nowUTC())
	if err != nil {
		internalError(w, r, "Failed to check team permissions", err, "code", code)
		return false
	}
	if !ok {
		unauthorized(w, r, "Team administrator role required")
		return false
	}
	return true
}
