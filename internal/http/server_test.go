package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exampro/internal/api"
	"exampro/internal/auth"
	"exampro/internal/cache"
	"exampro/internal/config"
	"exampro/internal/crypto"
	"exampro/internal/model"
	"exampro/internal/repository"
)

const adminPassword = "correct"

type testEnv struct {
	t      *testing.T
	cfg    config.Config
	store  *repository.Memory
	server *Server
	app    *httptest.Server
}

func testConfig() config.Config {
	return config.Config{
		HTTPAddr:               ":0",
		Store:                  config.StoreMemory,
		JWTSecret:              "test-secret",
		JWTIssuer:              "test-issuer",
		AccessTokenTTL:         15 * time.Minute,
		BcryptCost:             crypto.MinCost,
		DefaultStudentPassword: "student-pass",
	}
}

func newTestEnv(t *testing.T, denylist auth.Denylist) *testEnv {
	t.Helper()
	cfg := testConfig()
	store := repository.NewMemory()
	server := NewServer(cfg, store, denylist, nil, nil)
	app := httptest.NewServer(server.Router())
	t.Cleanup(app.Close)

	hash, err := crypto.HashPassword(adminPassword)
	require.NoError(t, err)
	_, err = store.CreateUser(context.Background(), model.User{
		Email: "admin@x.com", PasswordHash: hash, Role: model.RoleAdministrator, Name: "Admin",
	})
	require.NoError(t, err)

	return &testEnv{t: t, cfg: cfg, store: store, server: server, app: app}
}

// tokenFor creates a user with the given role and returns a token for it.
func (e *testEnv) tokenFor(role model.Role, email string) (string, model.User) {
	e.t.Helper()
	user, err := e.store.CreateUser(context.Background(), model.User{
		Email: email, PasswordHash: "unused", Role: role, Name: string(role),
	})
	require.NoError(e.t, err)
	token, _, err := e.server.Tokens().Issue(user)
	require.NoError(e.t, err)
	return token, user
}

func (e *testEnv) login(email, password string) (int, api.LoginResponse) {
	e.t.Helper()
	resp := doReq(e.t, http.MethodPost, e.app.URL+"/api/auth/login", "", api.LoginRequest{Email: email, Password: password})
	defer resp.Body.Close()
	var body api.LoginResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body
}

func doReq(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func expectError(t *testing.T, resp *http.Response, status int, code string) api.Error {
	t.Helper()
	require.Equal(t, status, resp.StatusCode)
	body := decodeBody[api.Error](t, resp)
	assert.Equal(t, code, body.Error)
	return body
}

func TestLoginAndAdminUsers(t *testing.T) {
	env := newTestEnv(t, nil)

	status, login := env.login("admin@x.com", adminPassword)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, model.RoleAdministrator, login.User.Role)
	assert.Equal(t, "admin@x.com", login.User.Email)

	resp := doReq(t, http.MethodGet, env.app.URL+"/api/admin/users", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	users := decodeBody[[]api.User](t, resp)
	assert.Len(t, users, 1)

	resp = doReq(t, http.MethodGet, env.app.URL+"/api/admin/users", "", nil)
	expectError(t, resp, http.StatusUnauthorized, "access_token_required")
}

func TestLoginRejections(t *testing.T) {
	env := newTestEnv(t, nil)

	status, _ := env.login("admin@x.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.login("nobody@x.com", adminPassword)
	assert.Equal(t, http.StatusUnauthorized, status)

	resp := doReq(t, http.MethodPost, env.app.URL+"/api/auth/login", "", map[string]string{"email": "admin@x.com"})
	body := expectError(t, resp, http.StatusBadRequest, "validation_failed")
	assert.Contains(t, body.Fields, "password")

	resp = doReq(t, http.MethodPost, env.app.URL+"/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "p", "extra": "x"})
	expectError(t, resp, http.StatusBadRequest, "invalid_request")
}

func TestRoleGating(t *testing.T) {
	env := newTestEnv(t, nil)
	studentToken, _ := env.tokenFor(model.RoleStudent, "s@x.com")
	directorToken, _ := env.tokenFor(model.RoleDirector, "d@x.com")
	teacherToken, _ := env.tokenFor(model.RoleTeacher, "t@x.com")

	resp := doReq(t, http.MethodGet, env.app.URL+"/api/admin/users", studentToken, nil)
	expectError(t, resp, http.StatusForbidden, "insufficient_permissions")

	resp = doReq(t, http.MethodGet, env.app.URL+"/api/admin/users", directorToken, nil)
	expectError(t, resp, http.StatusForbidden, "insufficient_permissions")

	body := api.CreateFiliereRequest{Name: "Informatique", Code: "info", Duration: 3}
	resp = doReq(t, http.MethodPost, env.app.URL+"/api/filieres", teacherToken, body)
	expectError(t, resp, http.StatusForbidden, "insufficient_permissions")

	resp = doReq(t, http.MethodPost, env.app.URL+"/api/filieres", directorToken, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	filiere := decodeBody[api.Filiere](t, resp)
	assert.Equal(t, "INFO", filiere.Code)

	resp = doReq(t, http.MethodGet, env.app.URL+"/api/filieres", studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]api.Filiere](t, resp), 1)
}

func TestTokenFailures(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := doReq(t, http.MethodGet, env.app.URL+"/api/auth/me", "not-a-token", nil)
	expectError(t, resp, http.StatusUnauthorized, "invalid_token")

	past := time.Now().Add(-48 * time.Hour)
	expired := auth.NewTokenService(env.cfg.JWTSecret, env.cfg.JWTIssuer, time.Hour).WithClock(func() time.Time { return past })
	token, _, err := expired.Issue(model.User{ID: 1, Email: "admin@x.com", Role: model.RoleAdministrator})
	require.NoError(t, err)
	resp = doReq(t, http.MethodGet, env.app.URL+"/api/auth/me", token, nil)
	expectError(t, resp, http.StatusUnauthorized, "token_expired")

	forged := auth.NewTokenService("other-secret", env.cfg.JWTIssuer, time.Hour)
	token, _, err = forged.Issue(model.User{ID: 1, Email: "admin@x.com", Role: model.RoleAdministrator})
	require.NoError(t, err)
	resp = doReq(t, http.MethodGet, env.app.URL+"/api/auth/me", token, nil)
	expectError(t, resp, http.StatusUnauthorized, "invalid_token")
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t, cache.NewMemoryDenylist())
	status, login := env.login("admin@x.com", adminPassword)
	require.Equal(t, http.StatusOK, status)

	resp := doReq(t, http.MethodGet, env.app.URL+"/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeBody[api.User](t, resp)
	assert.Equal(t, "Admin", me.Name)

	resp = doReq(t, http.MethodPost, env.app.URL+"/api/auth/logout", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doReq(t, http.MethodGet, env.app.URL+"/api/auth/me", login.Token, nil)
	expectError(t, resp, http.StatusUnauthorized, "token_revoked")
}

type brokenDenylist struct{}

func (brokenDenylist) Revoke(context.Context, string, time.Duration) error {
	return errors.New("redis down")
}

func (brokenDenylist) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestDenylistFailureFailsClosed(t *testing.T) {
	env := newTestEnv(t, brokenDenylist{})
	status, login := env.login("admin@x.com", adminPassword)
	require.Equal(t, http.StatusOK, status)

	resp := doReq(t, http.MethodGet, env.app.URL+"/api/auth/me", login.Token, nil)
	expectError(t, resp, http.StatusServiceUnavailable, "service_unavailable")
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t, nil)
	_, login := env.login("admin@x.com", adminPassword)

	resp := doReq(t, http.MethodPost, env.app.URL+"/api/auth/change-password", login.Token,
		api.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "new-password-1"})
	expectError(t, resp, http.StatusUnauthorized, "invalid_current_password")

	resp = doReq(t, http.MethodPost, env.app.URL+"/api/auth/change-password", login.Token,
		api.ChangePasswordRequest{CurrentPassword: adminPassword, NewPassword: "new-password-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	status, _ := env.login("admin@x.com", adminPassword)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = env.login("admin@x.com", "new-password-1")
	assert.Equal(t, http.StatusOK, status)

	ghost := auth.NewTokenService(env.cfg.JWTSecret, env.cfg.JWTIssuer, time.Hour)
	token, _, err := ghost.Issue(model.User{ID: 9999, Email: "ghost@x.com", Role: model.RoleTeacher})
	require.NoError(t, err)
	resp = doReq(t, http.MethodPost, env.app.URL+"/api/auth/change-password", token,
		api.ChangePasswordRequest{CurrentPassword: "x", NewPassword: "new-password-2"})
	expectError(t, resp, http.StatusNotFound, "user_not_found")
}

func TestAdminUserManagement(t *testing.T) {
	env := newTestEnv(t, nil)
	_, login := env.login("admin@x.com", adminPassword)

	resp := doReq(t, http.MethodPost, env.app.URL+"/api/admin/users", login.Token,
		api.CreateUserRequest{Name: "Prof Martin", Email: "prof@x.com", Role: model.RoleTeacher})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[api.CreateUserResponse](t, resp)
	assert.Len(t, created.DefaultPassword, 16)

	status, _ := env.login("prof@x.com", created.DefaultPassword)
	assert.Equal(t, http.StatusOK, status)

	resp = doReq(t, http.MethodGet, env.app.URL+"/api/teachers", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	teachers := decodeBody[[]api.Teacher](t, resp)
	require.Len(t, teachers, 1)
	assert.Equal(t, "Prof Martin", teachers[0].Name)

	resp = doReq(t, http.MethodPost, env.app.URL+"/api/admin/users", login.Token,
		api.CreateUserRequest{Name: "Dup", Email: "PROF@x.com", Role: model.RoleDirector})
	expectError(t, resp, http.StatusConflict, "email_already_exists")

	resp = doReq(t, http.MethodPost, env.app.URL+"/api/admin/users", login.Token,
		map[string]string{"name": "Bad", "email": "bad@x.com", "role": "superuser"})
	body := expectError(t, resp, http.StatusBadRequest, "validation_failed")
	assert.Contains(t, body.Fields, "role")

	resp = doReq(t, http.MethodPost, env.app.URL+"/api/admin/change-user-password", login.Token,
		api.AdminChangePasswordRequest{UserID: created.User.ID, NewPassword: "reset-password"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	status, _ = env.login("prof@x.com", "reset-password")
	assert.Equal(t, http.StatusOK, status)

	resp = doReq(t, http.MethodDelete, env.app.URL+"/api/admin/users/"+itoa(login.User.ID), login.Token, nil)
	expectError(t, resp, http.StatusBadRequest, "cannot_delete_self")

	resp = doReq(t, http.MethodDelete, env.app.URL+"/api/admin/users/"+itoa(created.User.ID), login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doReq(t, http.MethodDelete, env.app.URL+"/api/admin/users/"+itoa(created.User.ID), login.Token, nil)
	expectError(t, resp, http.StatusNotFound, "user_not_found")

	resp = doReq(t, http.MethodPost, env.app.URL+"/api/admin/change-user-password", login.Token,
		api.AdminChangePasswordRequest{UserID: created.User.ID, NewPassword: "reset-password"})
	expectError(t, resp, http.StatusNotFound, "user_not_found")
}

func TestSettingsAndHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	_, login := env.login("admin@x.com", adminPassword)
	teacherToken, _ := env.tokenFor(model.RoleTeacher, "t@x.com")

	resp := doReq(t, http.MethodGet, env.app.URL+"/api/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	health := decodeBody[api.Health](t, resp)
	assert.Equal(t, "OK", health.Status)
	assert.False(t, health.Timestamp.IsZero())

	resp = doReq(t, http.MethodGet, env.app.URL+"/api/settings", teacherToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]api.Setting](t, resp), len(repository.DefaultSettings))

	resp = doReq(t, http.MethodPut, env.app.URL+"/api/settings/school_name", teacherToken, api.UpdateSettingRequest{Value: "X"})
	expectError(t, resp, http.StatusForbidden, "insufficient_permissions")

	resp = doReq(t, http.MethodPut, env.app.URL+"/api/settings/school_name", login.Token, api.UpdateSettingRequest{Value: "EFREI"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "EFREI", decodeBody[api.Setting](t, resp).Value)

	resp = doReq(t, http.MethodPut, env.app.URL+"/api/settings/unknown", login.Token, api.UpdateSettingRequest{Value: "x"})
	expectError(t, resp, http.StatusNotFound, "setting_not_found")

	resp = doReq(t, http.MethodGet, env.app.URL+"/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doReq(t, http.MethodGet, env.app.URL+"/api/nope", "", nil)
	expectError(t, resp, http.StatusNotFound, "not_found")
}

func TestRecoverMiddleware(t *testing.T) {
	env := newTestEnv(t, nil)
	handler := env.server.recoverMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/students", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "server_error")
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("Bearer"))
	assert.Equal(t, "", bearerToken(""))
}
