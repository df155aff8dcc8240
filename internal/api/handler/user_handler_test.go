package handler_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/api/handler"
	"github.com/morgans3/NHS-Business-Intelligence-Platform-Api-sub001/internal/auth"
)

// --- In-memory UserRepository ---

type mockUserRepo struct {
	mu     sync.Mutex
	users  map[string]auth.User
	listFn func(ctx context.Context) ([]auth.User, error)
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]auth.User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return auth.ErrDuplicateUsername
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.users[u.Username] = *u
	return nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return &u, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]auth.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]auth.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepo) UpdateCapabilities(_ context.Context, username string, caps []auth.Capability) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	u.Capabilities = caps
	m.users[username] = u
	return &u, nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, username, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.PasswordHash = hash
	m.users[username] = u
	return nil
}

func (m *mockUserRepo) Archive(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.Archived = true
	m.users[username] = u
	return nil
}

// --- Helpers ---

func newUserHandler(t *testing.T) (*handler.UserHandler, *auth.Service, *mockUserRepo) {
	t.Helper()
	repo := newMockUserRepo()
	svc := auth.NewService(repo, auth.NewTokenIssuer("test-secret", "nexus", time.Hour), 4)
	return handler.NewUserHandler(svc, repo), svc, repo
}

func seedUser(t *testing.T, svc *auth.Service, username, password string) {
	t.Helper()
	require.NoError(t, svc.Register(context.Background(), &auth.User{
		Username:     username,
		Email:        username + "@example.nhs.uk",
		Organisation: "Blackpool",
	}, password))
}

// ===== POST /users/authenticate =====

func TestUserAuthenticate_Success(t *testing.T) {
	t.Parallel()
	h, svc, _ := newUserHandler(t)
	seedUser(t, svc, "jdoe", "s3cret-pass")

	body := mustJSON(t, map[string]string{"username": "jdoe", "password": "s3cret-pass"})
	req, w := makeChiRequest(http.MethodPost, "/users/authenticate", body, nil)
	h.Authenticate(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, w)
	assert.NotEmpty(t, data["token"])
	user := data["user"].(map[string]interface{})
	assert.Equal(t, "jdoe", user["username"])
	assert.NotContains(t, user, "passwordHash")

	id, err := svc.Verify(data["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "jdoe", id.Username)
}

func TestUserAuthenticate_WrongPassword(t *testing.T) {
	t.Parallel()
	h, svc, _ := newUserHandler(t)
	seedUser(t, svc, "jdoe", "s3cret-pass")

	body := mustJSON(t, map[string]string{"username": "jdoe", "password": "nope"})
	req, w := makeChiRequest(http.MethodPost, "/users/authenticate", body, nil)
	h.Authenticate(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, w))
}

func TestUserAuthenticate_ArchivedUser(t *testing.T) {
	t.Parallel()
	h, svc, repo := newUserHandler(t)
	seedUser(t, svc, "jdoe", "s3cret-pass")
	require.NoError(t, repo.Archive(context.Background(), "jdoe"))

	body := mustJSON(t, map[string]string{"username": "jdoe", "password": "s3cret-pass"})
	req, w := makeChiRequest(http.MethodPost, "/users/authenticate", body, nil)
	h.Authenticate(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserAuthenticate_BadInput(t *testing.T) {
	t.Parallel()
	h, _, _ := newUserHandler(t)

	tests := []struct {
		name string
		body []byte
		code string
	}{
		{name: "invalid json", body: []byte("{not json"), code: "INVALID_JSON"},
		{name: "missing fields", body: []byte(`{}`), code: "VALIDATION_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, w := makeChiRequest(http.MethodPost, "/users/authenticate", tc.body, nil)
			h.Authenticate(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.code, errorCode(t, w))
		})
	}
}

// ===== GET /users/profile =====

func TestUserProfile(t *testing.T) {
	t.Parallel()
	h, _, _ := newUserHandler(t)

	req, w := makeChiRequest(http.MethodGet, "/users/profile", nil, nil)
	h.Profile(w, asUser(req, userIdentity))

	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, w)
	assert.Equal(t, "jdoe", data["username"])

	req, w = makeChiRequest(http.MethodGet, "/users/profile", nil, nil)
	h.Profile(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ===== GET /users =====

func TestUserList(t *testing.T) {
	t.Parallel()
	h, svc, _ := newUserHandler(t)
	seedUser(t, svc, "jdoe", "s3cret-pass")

	req, w := makeChiRequest(http.MethodGet, "/users", nil, nil)
	h.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	env := parseEnvelope(t, w)
	assert.Equal(t, float64(1), env["meta"].(map[string]interface{})["total"])
	assert.Len(t, dataList(t, w), 1)
}

func TestUserList_RepositoryError(t *testing.T) {
	t.Parallel()
	h, _, repo := newUserHandler(t)
	repo.listFn = func(_ context.Context) ([]auth.User, error) {
		return nil, errors.New("connection refused")
	}

	req, w := makeChiRequest(http.MethodGet, "/users", nil, nil)
	h.List(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, w))
}

// ===== POST /users/register =====

func TestUserRegister_Success(t *testing.T) {
	t.Parallel()
	h, _, repo := newUserHandler(t)

	body := mustJSON(t, map[string]any{
		"username":     "asmith",
		"password":     "long-enough",
		"email":        "asmith@example.nhs.uk",
		"organisation": "Blackpool",
		"capabilities": []map[string]string{{"name": "Reports", "value": "read"}},
	})
	req, w := makeChiRequest(http.MethodPost, "/users/register", body, nil)
	h.Register(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "asmith", dataMap(t, w)["username"])

	u, err := repo.GetByUsername(context.Background(), "asmith")
	require.NoError(t, err)
	assert.NotEqual(t, "long-enough", u.PasswordHash)
	assert.True(t, u.Capabilities[0].Name == "Reports")
}

func TestUserRegister_Duplicate(t *testing.T) {
	t.Parallel()
	h, svc, _ := newUserHandler(t)
	seedUser(t, svc, "asmith", "long-enough")

	body := mustJSON(t, map[string]any{"username": "asmith", "password": "long-enough", "email": "a@example.nhs.uk"})
	req, w := makeChiRequest(http.MethodPost, "/users/register", body, nil)
	h.Register(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_USERNAME", errorCode(t, w))
}

func TestUserRegister_ValidationError(t *testing.T) {
	t.Parallel()
	h, _, _ := newUserHandler(t)

	body := mustJSON(t, map[string]any{"username": "asmith", "password": "short", "email": "not-an-email"})
	req, w := makeChiRequest(http.MethodPost, "/users/register", body, nil)
	h.Register(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := parseEnvelope(t, w)
	details := env["error"].(map[string]interface{})["details"].([]interface{})
	assert.NotEmpty(t, details)
}

// ===== PUT /users/{username}/capabilities =====

func TestUserUpdateCapabilities(t *testing.T) {
	t.Parallel()
	h, svc, _ := newUserHandler(t)
	seedUser(t, svc, "jdoe", "s3cret-pass")

	body := mustJSON(t, map[string]any{"capabilities": []map[string]string{{"name": "OrgAdmin", "value": "Blackpool"}}})
	req, w := makeChiRequest(http.MethodPut, "/users/jdoe/capabilities", body, map[string]string{"username": "jdoe"})
	h.UpdateCapabilities(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	caps := dataMap(t, w)["capabilities"].([]interface{})
	require.Len(t, caps, 1)

	req, w = makeChiRequest(http.MethodPut, "/users/nobody/capabilities", body, map[string]string{"username": "nobody"})
	h.UpdateCapabilities(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ===== PUT /users/{username}/password =====

func TestUserChangePassword(t *testing.T) {
	t.Parallel()
	h, svc, _ := newUserHandler(t)
	seedUser(t, svc, "jdoe", "s3cret-pass")
	seedUser(t, svc, "other", "s3cret-pass")

	body := mustJSON(t, map[string]string{"password": "brand-new-pass"})

	tests := []struct {
		name     string
		identity *auth.Identity
		target   string
		want     int
	}{
		{name: "self", identity: userIdentity, target: "jdoe", want: http.StatusOK},
		{name: "someone else", identity: userIdentity, target: "other", want: http.StatusUnauthorized},
		{name: "admin for someone else", identity: adminIdentity, target: "other", want: http.StatusOK},
		{name: "admin for unknown user", identity: adminIdentity, target: "nobody", want: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, w := makeChiRequest(http.MethodPut, "/users/"+tc.target+"/password", body, map[string]string{"username": tc.target})
			h.ChangePassword(w, asUser(req, tc.identity))
			assert.Equal(t, tc.want, w.Code)
		})
	}

	_, err := svc.Authenticate(context.Background(), "jdoe", "brand-new-pass")
	assert.NoError(t, err)
}

// ===== DELETE /users/{username} =====

func TestUserArchive(t *testing.T) {
	t.Parallel()
	h, svc, repo := newUserHandler(t)
	seedUser(t, svc, "jdoe", "s3cret-pass")

	req, w := makeChiRequest(http.MethodDelete, "/users/jdoe", nil, map[string]string{"username": "jdoe"})
	h.Archive(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	u, err := repo.GetByUsername(context.Background(), "jdoe")
	require.NoError(t, err)
	assert.True(t, u.Archived)

	req, w = makeChiRequest(http.MethodDelete, "/users/nobody", nil, map[string]string{"username": "nobody"})
	h.Archive(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
