package auth

import "strings"

// Page paths, relative to the deployment base path.
const (
	PathRoot      = "/"
	PathLogin     = "/login"
	PathRegister  = "/register"
	PathAdmin     = "/admin"
	PathDashboard = "/dashboard"
	PathForms     = "/forms"
)

// Decision is the outcome of evaluating a page request. An empty Redirect
// means the request may proceed.
type Decision struct {
	Redirect string
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

// Gate decides page access from the request path and session state.
type Gate struct {
	protected  []string
	publicOnly []string
	adminOnly  []string
}

// NewGate returns the gate for the application's pages.
func NewGate() *Gate {
	return &Gate{
		protected:  []string{PathAdmin, PathDashboard, PathForms},
		publicOnly: []string{PathLogin, PathRegister},
		adminOnly:  []string{PathAdmin},
	}
}

// Evaluate applies the access rules in order: protected pages need a token,
// public-only pages bounce signed-in users, the root resolves to login or the
// landing page, and admin-only pages send non-admins to the user landing page.
// claims may be nil when the token is present but the identity is unknown.
func (g *Gate) Evaluate(path string, hasToken bool, claims *Claims) Decision {
	path = cleanPath(path)

	if matchAny(path, g.protected) && !hasToken {
		return Decision{Redirect: PathLogin}
	}
	if matchAny(path, g.publicOnly) && hasToken {
		return Decision{Redirect: Landing(claims)}
	}
	if path == PathRoot {
		if !hasToken {
			return Decision{Redirect: PathLogin}
		}
		return Decision{Redirect: Landing(claims)}
	}
	if matchAny(path, g.adminOnly) && !claims.IsAdmin() {
		return Decision{Redirect: PathForms}
	}
	return Decision{}
}

// Landing is the page a signed-in user is sent to.
func Landing(claims *Claims) string {
	if claims.IsAdmin() {
		return PathAdmin
	}
	return PathForms
}

func cleanPath(path string) string {
	if path == "" {
		return PathRoot
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return PathRoot
		}
	}
	return path
}

// matchAny reports whether path is one of prefixes or lies beneath one.
func matchAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
