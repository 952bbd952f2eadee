package middleware

import (
	"context"
	"net/http"

	"github.com/daap14/formadmin/internal/api/response"
	"github.com/daap14/formadmin/internal/auth"
)

const sessionKey contextKey = "session"

// SessionState is the session information resolved for a request.
type SessionState struct {
	// HasToken is true when the request carries a usable session token.
	HasToken bool
	// Session is nil when no identity could be resolved.
	Session *auth.Session
}

// Claims returns the resolved identity, or nil.
func (s *SessionState) Claims() *auth.Claims {
	if s == nil || s.Session == nil {
		return nil
	}
	return &s.Session.Claims
}

// LoadSession is middleware that resolves the session cookies into a
// SessionState stored in the request context. It never rejects a request.
// With signed sessions a token that fails verification counts as absent.
func LoadSession(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := &SessionState{HasToken: sessions.HasToken(r)}

			if sess, err := sessions.Read(r); err == nil {
				state.Session = sess
			} else if sessions.Signed() {
				state.HasToken = false
			}

			ctx := context.WithValue(r.Context(), sessionKey, state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession retrieves the SessionState from the context. It returns an
// empty state when LoadSession did not run.
func GetSession(ctx context.Context) *SessionState {
	if s, ok := ctx.Value(sessionKey).(*SessionState); ok {
		return s
	}
	return &SessionState{}
}

// RequireSession is middleware that rejects requests without a session token
// with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetSession(r.Context()).HasToken {
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
