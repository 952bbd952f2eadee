package middleware

import (
	"net/http"
	"strings"

	"github.com/daap14/formadmin/internal/auth"
	"github.com/daap14/formadmin/internal/config"
)

// PageGate is middleware that applies the authorization gate to page
// requests. Paths are evaluated relative to basePath and redirects are
// prefixed with it.
func PageGate(gate *auth.Gate, basePath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d := EvaluatePage(gate, basePath, r); !d.Allowed() {
				RedirectPage(w, r, basePath, d.Redirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// EvaluatePage runs the gate for r using the session loaded by LoadSession.
func EvaluatePage(gate *auth.Gate, basePath string, r *http.Request) auth.Decision {
	state := GetSession(r.Context())
	return gate.Evaluate(relativePath(basePath, r.URL.Path), state.HasToken, state.Claims())
}

// RedirectPage sends a temporary redirect to target under basePath.
func RedirectPage(w http.ResponseWriter, r *http.Request, basePath, target string) {
	http.Redirect(w, r, config.JoinPath(basePath, target), http.StatusTemporaryRedirect)
}

func relativePath(basePath, path string) string {
	if basePath == "" {
		return path
	}
	rel := strings.TrimPrefix(path, basePath)
	if rel == "" {
		return "/"
	}
	return rel
}
