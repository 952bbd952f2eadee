package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/daap14/formadmin/internal/api/middleware"
	"github.com/daap14/formadmin/internal/auth"
	"github.com/daap14/formadmin/internal/store"
)

// --- Mock Store ---

type mockStore struct {
	createUserFn        func(ctx context.Context, u *store.User) (string, error)
	getUserByEmailFn    func(ctx context.Context, email string) (*store.User, error)
	getUserByIDFn       func(ctx context.Context, id string) (*store.User, error)
	listUsersByStatusFn func(ctx context.Context, status store.Status) ([]store.User, error)
	listUsersFn         func(ctx context.Context) ([]store.User, error)
	updateUserStatusFn  func(ctx context.Context, id string, status store.Status) error
	updateUserFn        func(ctx context.Context, id string, upd store.UserUpdate) error
	createFormFn        func(ctx context.Context, f *store.Form) error
	listFormsFn         func(ctx context.Context) ([]store.Form, error)
	renameFormFn        func(ctx context.Context, id, name string) error
	pingFn              func(ctx context.Context) error
}

func (m *mockStore) CreateUser(ctx context.Context, u *store.User) (string, error) {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, u)
	}
	return "new-id", nil
}

func (m *mockStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(ctx, email)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) ListUsersByStatus(ctx context.Context, status store.Status) ([]store.User, error) {
	if m.listUsersByStatusFn != nil {
		return m.listUsersByStatusFn(ctx, status)
	}
	return []store.User{}, nil
}

func (m *mockStore) ListUsers(ctx context.Context) ([]store.User, error) {
	if m.listUsersFn != nil {
		return m.listUsersFn(ctx)
	}
	return []store.User{}, nil
}

func (m *mockStore) UpdateUserStatus(ctx context.Context, id string, status store.Status) error {
	if m.updateUserStatusFn != nil {
		return m.updateUserStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockStore) UpdateUser(ctx context.Context, id string, upd store.UserUpdate) error {
	if m.updateUserFn != nil {
		return m.updateUserFn(ctx, id, upd)
	}
	return nil
}

func (m *mockStore) CreateForm(ctx context.Context, f *store.Form) error {
	if m.createFormFn != nil {
		return m.createFormFn(ctx, f)
	}
	return nil
}

func (m *mockStore) ListForms(ctx context.Context) ([]store.Form, error) {
	if m.listFormsFn != nil {
		return m.listFormsFn(ctx)
	}
	return []store.Form{}, nil
}

func (m *mockStore) RenameForm(ctx context.Context, id, name string) error {
	if m.renameFormFn != nil {
		return m.renameFormFn(ctx, id, name)
	}
	return nil
}

func (m *mockStore) Backend() store.Backend { return "mock" }

func (m *mockStore) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func (m *mockStore) Close() error { return nil }

// --- Helpers ---

const principalAdminID = "admin-001-unidas"

var testSessions = auth.NewSessions(auth.SessionOptions{TTL: time.Hour})

func newAuthService(s store.Store) *auth.Service {
	return auth.NewService(s,
		auth.NewHasher(auth.SchemeSHA256, 0),
		testSessions,
		auth.AdminAccount{
			ID:       principalAdminID,
			Email:    "admin@unidas.com.br",
			Password: "admin123",
			Name:     "Administrador",
		},
	)
}

func makeChiRequest(method, path string, body []byte, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	return req, w
}

// signIn attaches session cookies for claims to req.
func signIn(t *testing.T, req *http.Request, claims auth.Claims) {
	t.Helper()

	sess, err := testSessions.Issue(&store.User{
		ID:    claims.ID,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, testSessions.Write(rec, sess))
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
}

// serve runs h behind the session loader.
func serve(h http.HandlerFunc, w http.ResponseWriter, req *http.Request) {
	middleware.LoadSession(testSessions)(h).ServeHTTP(w, req)
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &body)
	require.NoError(t, err, "failed to parse response body")
	return body
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
