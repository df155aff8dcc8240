package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/handler"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/dynamo/dynamotest"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/team"
)

type teamFixture struct {
	fake  *dynamotest.Fake
	teams team.Repository
	roles team.RoleRepository
	h     *handler.TeamHandler
	rh    *handler.TeamRoleHandler
}

func newTeamFixture(t *testing.T) *teamFixture {
	t.Helper()
	fake := dynamotest.New().
		CreateTable(team.TeamsTable, "code", "").
		CreateTable(team.RolesTable, "teamcode", "id")
	teams := team.NewRepository(fake, team.TeamsTable)
	roles := team.NewRoleRepository(fake, team.RolesTable)
	h := handler.NewTeamHandler(teams, roles)
	return &teamFixture{fake: fake, teams: teams, roles: roles, h: h, rh: handler.NewTeamRoleHandler(h)}
}

func (f *teamFixture) seedTeam(t *testing.T, code, organisation string) {
	t.Helper()
	require.NoError(t, f.teams.Create(context.Background(), &team.Team{Code: code, Name: code + " team", Organisation: organisation}))
}

func (f *teamFixture) seedRole(t *testing.T, code, username, role string) *team.Role {
	t.Helper()
	r := &team.Role{TeamCode: code, Username: username, Role: role, StartDate: time.Now().UTC().Add(-time.Hour)}
	require.NoError(t, f.roles.Create(context.Background(), r))
	return r
}

// ===== POST /teams =====

func TestTeamCreate_Success(t *testing.T) {
	t.Parallel()
	f := newTeamFixture(t)

	body := mustJSON(t, map[string]any{"code": "BI", "name": "Business Intelligence", "organisation": "Blackpool"})
	req, w := makeChiRequest(http.MethodPost, "/teams", body, nil)
	f.h.Create(w, asUser(req, userIdentity))

	require.Equal(t, http.StatusCreated, w.Code)
	data := dataMap(t, w)
	assert.Equal(t, "BI", data["code"])
	assert.Equal(t, []interface{}{}, data["responsiblePeople"])
}

func TestTeamCreate_Duplicate(t *testing.T) {
	t.Parallel()
	f := newTeamFixture(t)
	f.seedTeam(t, "BI", "Blackpool")

	body := mustJSON(t, map[string]any{"code": "BI", "name": "Again", "organisation": "Blackpool"})
	req, w := makeChiRequest(http.MethodPost, "/teams", body, nil)
	f.h.Create(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_CODE", errorCode(t, w))
}

func TestTeamCreate_ValidationError(t *testing.T) {
	t.Parallel()
	f := newTeamFixture(t)

	req, w := makeChiRequest(http.MethodPost, "/teams", []byte(`{"code":"bad code!"}`), nil)
	f.h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestTeamCreate_StoreError(t *testing.T) {
	t.Parallel()
	f := newTeamFixture(t)
	f.fake.Err = errors.New("throttled")

	body := mustJSON(t, map[string]any{"code": "BI", "name": "BI", "organisation": "Blackpool"})
	req, w := makeChiRequest(http.MethodPost, "/teams", body, nil)
	f.h.Create(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ===== GET /teams =====

func TestTeamList_FilterByOrganisation(t *testing.T) {
	t.Parallel()
	f := newTeamFixture(t)
	f.seedTeam(t, "BI", "Blackpool")
	f.seedTeam(t, "OPS", "Fylde")

	req, w := makeChiRequest(http.MethodGet, "/teams", nil, nil)
	f.h.List(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, w), 2)

	req, w = makeChiRequest(http.MethodGet, "/teams?organisation=Fylde", nil, nil)
	f.h.List(w, req)
	items := dataList(t, w)
	require.Len(t, items, 1)
	assert.Equal(t, "OPS", items[0].(map[string]interface{})["code"])
}

// ===== GET /teams/{code} =====

func TestTeamGet(t *testing.T) {
	t.Parallel()
	f := newTeamFixture(t)
	f.seedTeam(t, "BI", "Blackpool")

	req, w := makeChiRequest(http.MethodGet, "/teams/BI", nil, map[string]string{"code": "BI"})
	f.h.Get(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "BI team", dataMap(t, w)["name"])

	req, w = makeChiRequest(http.MethodGet, "/teams/NOPE", nil, map[string]string{"code": "NOPE"})
	f.h.Get(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}

// ===== PUT /teams/{code} =====

func TestTeamReplace_Authorization(t *testing.T) {
	t.Parallel()
	f := newTeamFixture(t)
	f.seedTeam(t, "BI", "Blackpool")
	body := mustJSON(t, map[string]any{"name": "Renamed", "organisation": "Blackpool"})

	req, w := makeChiRequest(http.MethodPut, "/teams/BI", body, map[string]string{"code": "BI"})
	f.h.Replace(w, asUser(req, userIdentity))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	f.seedRole(t, "BI", userIdentity.Username, team.AdminRole)

	req, w = makeChiRequest(http.MethodPut, "/teams/BI", body, map[string]string{"code": "BI"})
	f.h.Replace(w, asUser(req, userIdentity))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Renamed", dataMap(t, w)["name"])

	got, err := f.teams.Get(context.Background(), "BI")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
}

func TestTeamReplace_NotFound(t *testing.T) {
	t.Parallel()
	f := newTeamFixture(t)

	body := mustJSON(t, map[string]any{"name": "Ghost", "organisation": "Blackpool"})
	req, w := makeChiRequest(http.MethodPut, "/teams/GHOST", body, map[string]string{"code": "GHOST"})
	f.h.Replace(w, asUser(req, adminIdentity))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ===== DELETE /teams/{code} =====

func TestTeamArchive(t *testing.T) {
	t.Parallel()
	f := newTeamFixture(t)
	f.seedTeam(t, "BI", "Blackpool")

	req, w := makeChiRequest(http.MethodDelete, "/teams/BI", nil, map[string]string{"code": "BI"})
	f.h.Archive(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	teams, err := f.teams.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, teams)

	req, w = makeChiRequest(http.MethodDelete, "/teams/NOPE", nil, map[string]string{"code": "NOPE"})
	f.h.Archive(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ===== Team roles =====

func TestTeamRoleCreate(t *testing.T) {
	t.Parallel()
	f := newTeamFixture(t)
	f.seedTeam(t, "BI", "Blackpool")
	body := mustJSON(t, map[string]any{"username": "asmith", "role": "Analyst"})

	req, w := makeChiRequest(http.MethodPost, "/teams/NOPE/roles", body, map[string]string{"code": "NOPE"})
	f.rh.Create(w, asUser(req, adminIdentity))
	assert.Equal(t, http.StatusNotFound, w.Code)

	req, w = makeChiRequest(http.MethodPost, "/teams/BI/roles", body, map[string]string{"code": "BI"})
	f.rh.Create(w, asUser(req, userIdentity))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req, w = makeChiRequest(http.MethodPost, "/teams/BI/roles", body, map[string]string{"code": "BI"})
	f.rh.Create(w, asUser(req, adminIdentity))
	require.Equal(t, http.StatusCreated, w.Code)
	data := dataMap(t, w)
	assert.NotEmpty(t, data["id"])
	assert.Equal(t, "BI", data["teamcode"])
}

func TestTeamRoleCreate_InvalidDates(t *testing.T) {
	t.Parallel()
	f := newTeamFixture(t)
	f.seedTeam(t, "BI", "Blackpool")

	body := mustJSON(t, map[string]any{
		"username":  "asmith",
		"role":      "Analyst",
		"startDate": "2026-02-01T00:00:00Z",
		"endDate":   "2026-01-01T00:00:00Z",
	})
	req, w := makeChiRequest(http.MethodPost, "/teams/BI/roles", body, map[string]string{"code": "BI"})
	f.rh.Create(w, asUser(req, adminIdentity))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestTeamRoleLists(t *testing.T) {
	t.Parallel()
	f := newTeamFixture(t)
	f.seedTeam(t, "BI", "Blackpool")
	f.seedTeam(t, "OPS", "Blackpool")
	f.seedRole(t, "BI", "asmith", "Analyst")
	f.seedRole(t, "OPS", "asmith", "Lead")
	f.seedRole(t, "BI", "bjones", "Analyst")

	req, w := makeChiRequest(http.MethodGet, "/teams/BI/roles", nil, map[string]string{"code": "BI"})
	f.rh.ListByTeam(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, w), 2)

	req, w = makeChiRequest(http.MethodGet, "/users/asmith/teamroles", nil, map[string]string{"username": "asmith"})
	f.rh.ListByUser(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, w), 2)
}

func TestTeamRoleReplaceAndArchive(t *testing.T) {
	t.Parallel()
	f := newTeamFixture(t)
	f.seedTeam(t, "BI", "Blackpool")
	role := f.seedRole(t, "BI", "asmith", "Analyst")
	params := map[string]string{"code": "BI", "id": role.ID}

	body := mustJSON(t, map[string]any{"username": "asmith", "role": "Lead"})
	req, w := makeChiRequest(http.MethodPut, "/teams/BI/roles/"+role.ID, body, params)
	f.rh.Replace(w, asUser(req, adminIdentity))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lead", dataMap(t, w)["role"])

	req, w = makeChiRequest(http.MethodDelete, "/teams/BI/roles/"+role.ID, nil, params)
	f.rh.Archive(w, asUser(req, userIdentity))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req, w = makeChiRequest(http.MethodDelete, "/teams/BI/roles/"+role.ID, nil, params)
	f.rh.Archive(w, asUser(req, adminIdentity))
	require.Equal(t, http.StatusOK, w.Code)

	roles, err := f.roles.ListByTeam(context.Background(), "BI")
	require.NoError(t, err)
	assert.Empty(t, roles)

	missing := map[string]string{"code": "BI", "id": "nope"}
	req, w = makeChiRequest(http.MethodPut, "/teams/BI/roles/nope", body, missing)
	f.rh.Replace(w, asUser(req, adminIdentity))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
