package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daap14/formadmin/internal/api"
	"github.com/daap14/formadmin/internal/api/middleware"
	"github.com/daap14/formadmin/internal/auth"
	"github.com/daap14/formadmin/internal/store"
)

type testApp struct {
	t       *testing.T
	handler http.Handler
	store   store.Store
	base    string
}

func newTestApp(t *testing.T, basePath string) *testApp {
	t.Helper()

	s, err := store.OpenJSONFile(filepath.Join(t.TempDir(), "mockdb.json"))
	require.NoError(t, err)

	cookiePath := basePath
	if cookiePath == "" {
		cookiePath = "/"
	}
	svc := auth.NewService(s,
		auth.NewHasher(auth.SchemeSHA256, 0),
		auth.NewSessions(auth.SessionOptions{TTL: 7 * 24 * time.Hour, Path: cookiePath}),
		auth.AdminAccount{ID: "admin-001-unidas", Email: "admin@unidas.com.br", Password: "admin123", Name: "Administrador"},
	)

	router := api.NewRouter(api.RouterDeps{
		Store:       s,
		AuthService: svc,
		Metrics:     middleware.NewMetrics("test"),
		Version:     "test",
		BasePath:    basePath,
		EmailDomain: "@unidas.com.br",
	})

	return &testApp{t: t, handler: router, store: s, base: basePath}
}

func (a *testApp) do(method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, a.base+path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testApp) login(email, password string) []*http.Cookie {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return w.Result().Cookies()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRouter_RegisterApproveLoginScenario(t *testing.T) {
	app := newTestApp(t, "")

	// Landing bootstraps the principal admin.
	w := app.do(http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	adminCookies := app.login("admin@unidas.com.br", "admin123")

	creds := map[string]string{"email": "a@unidas.com.br", "name": "A", "password": "secret1"}
	w = app.do(http.MethodPost, "/api/auth/register", creds, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = app.do(http.MethodPost, "/api/auth/login", creds, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Your access has not been approved by an administrator yet.", decode(t, w)["error"])

	w = app.do(http.MethodGet, "/api/users/pending", nil, adminCookies)
	require.Equal(t, http.StatusOK, w.Code)
	pending := decode(t, w)["users"].([]interface{})
	require.Len(t, pending, 1)
	id := pending[0].(map[string]interface{})["id"].(string)

	w = app.do(http.MethodPost, "/api/users/"+id+"/approve", nil, adminCookies)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodPost, "/api/auth/login", creds, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "user", user["role"])

	w = app.do(http.MethodGet, "/api/auth/me", nil, w.Result().Cookies())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a@unidas.com.br", decode(t, w)["email"])
}

func TestRouter_RoleUpdateRestrictions(t *testing.T) {
	app := newTestApp(t, "")
	ctx := context.Background()

	app.do(http.MethodGet, "/", nil, nil)
	secondAdmin, err := app.store.CreateUser(ctx, &store.User{
		Email:        "boss@unidas.com.br",
		Name:         "Boss",
		PasswordHash: auth.SHA256Digest("pw"),
		Role:         store.RoleAdmin,
		Status:       store.StatusActive,
	})
	require.NoError(t, err)
	cookies := app.login("boss@unidas.com.br", "pw")

	w := app.do(http.MethodPut, "/api/users/"+secondAdmin+"/role", map[string]string{"role": "user"}, cookies)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(http.MethodPut, "/api/users/admin-001-unidas/role", map[string]string{"status": "blocked"}, cookies)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin, err := app.store.GetUserByID(ctx, "admin-001-unidas")
	require.NoError(t, err)
	assert.Equal(t, store.StatusActive, admin.Status)
	assert.Equal(t, store.RoleAdmin, admin.Role)

	w = app.do(http.MethodPut, "/api/users/nobody/role", map[string]string{"role": "user"}, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_UsersEdgeGuard(t *testing.T) {
	app := newTestApp(t, "")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/users/all"},
		{http.MethodGet, "/api/users/pending"},
		{http.MethodPut, "/api/users/x/role"},
		{http.MethodPost, "/api/users/x/approve"},
	} {
		w := app.do(tc.method, tc.path, map[string]string{"role": "admin"}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
		assert.Equal(t, "UNAUTHORIZED", decode(t, w)["code"], tc.path)
	}

	w := app.do(http.MethodGet, "/api/forms", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"forms":[]}`, w.Body.String())
}

func TestRouter_FormRenameScenario(t *testing.T) {
	app := newTestApp(t, "")
	ctx := context.Background()

	created := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, app.store.CreateForm(ctx, &store.Form{
		ID: "f1", Name: "Old", CreatedBy: "u1", CreatedByName: "Ana", CreatedAt: created, Status: "active",
	}))

	w := app.do(http.MethodPut, "/api/forms/f1", map[string]string{"name": "New"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodGet, "/api/forms", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	forms := decode(t, w)["forms"].([]interface{})
	require.Len(t, forms, 1)
	assert.Equal(t, map[string]interface{}{
		"id": "f1", "name": "New", "createdBy": "u1", "createdByName": "Ana",
		"createdAt": "2025-05-01T12:00:00Z", "status": "active",
	}, forms[0])
}

func TestRouter_BasePath(t *testing.T) {
	app := newTestApp(t, "/portal")

	w := app.do(http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/portal/login", w.Header().Get("Location"))

	cookies := app.login("admin@unidas.com.br", "admin123")
	for _, c := range cookies {
		assert.Equal(t, "/portal", c.Path)
	}

	w = app.do(http.MethodGet, "/login", nil, cookies)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "/portal/admin", w.Header().Get("Location"))

	w = app.do(http.MethodGet, "/dashboard", nil, nil)
	assert.Equal(t, "/portal/login", w.Header().Get("Location"))
}

func TestRouter_LogoutThenGate(t *testing.T) {
	app := newTestApp(t, "")
	app.do(http.MethodGet, "/", nil, nil)
	app.login("admin@unidas.com.br", "admin123")

	w := app.do(http.MethodPost, "/api/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		assert.Empty(t, c.Value)
	}

	w = app.do(http.MethodGet, "/admin", nil, nil)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	app := newTestApp(t, "/portal")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	app.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","version":"test","backend":"jsonfile","database":"connected"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	app.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/health"`)
}
