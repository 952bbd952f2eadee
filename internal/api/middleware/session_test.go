package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daap14/formadmin/internal/api/middleware"
	"github.com/daap14/formadmin/internal/auth"
	"github.com/daap14/formadmin/internal/store"
)

func loadState(t *testing.T, sessions *auth.Sessions, cookies ...*http.Cookie) *middleware.SessionState {
	t.Helper()

	var state *middleware.SessionState
	h := middleware.LoadSession(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state = middleware.GetSession(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, state)
	return state
}

func claimsCookie(json string) *http.Cookie {
	return &http.Cookie{Name: auth.ClaimsCookie, Value: url.PathEscape(json)}
}

func TestLoadSession_Anonymous(t *testing.T) {
	state := loadState(t, auth.NewSessions(auth.SessionOptions{TTL: time.Hour}))

	assert.False(t, state.HasToken)
	assert.Nil(t, state.Claims())
}

func TestLoadSession_Unsigned(t *testing.T) {
	sessions := auth.NewSessions(auth.SessionOptions{TTL: time.Hour})

	state := loadState(t, sessions,
		&http.Cookie{Name: auth.TokenCookie, Value: "abc"},
		claimsCookie(`{"id":"u1","email":"a@unidas.com.br","name":"A","role":"admin"}`),
	)
	assert.True(t, state.HasToken)
	require.NotNil(t, state.Claims())
	assert.Equal(t, "u1", state.Claims().ID)
	assert.True(t, state.Claims().IsAdmin())

	tokenOnly := loadState(t, sessions, &http.Cookie{Name: auth.TokenCookie, Value: "abc"})
	assert.True(t, tokenOnly.HasToken)
	assert.Nil(t, tokenOnly.Claims())
}

func TestLoadSession_SignedRejectsForgedToken(t *testing.T) {
	sessions := auth.NewSessions(auth.SessionOptions{TTL: time.Hour, Secret: "s3cret"})

	state := loadState(t, sessions,
		&http.Cookie{Name: auth.TokenCookie, Value: "forged"},
		claimsCookie(`{"id":"u1","role":"admin"}`),
	)
	assert.False(t, state.HasToken)
	assert.Nil(t, state.Claims())

	sess, err := sessions.Issue(&store.User{ID: "u1", Role: store.RoleUser})
	require.NoError(t, err)
	valid := loadState(t, sessions, &http.Cookie{Name: auth.TokenCookie, Value: sess.Token})
	assert.True(t, valid.HasToken)
	assert.Equal(t, "u1", valid.Claims().ID)
}

func TestRequireSession(t *testing.T) {
	sessions := auth.NewSessions(auth.SessionOptions{TTL: time.Hour})
	reached := false
	h := middleware.LoadSession(sessions)(middleware.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/users/all", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, reached)

	req = httptest.NewRequest(http.MethodGet, "/api/users/all", nil)
	req.AddCookie(&http.Cookie{Name: auth.TokenCookie, Value: "abc"})
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.True(t, reached)
}
