package handler

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/daap14/formadmin/internal/api/middleware"
	"github.com/daap14/formadmin/internal/api/response"
	"github.com/daap14/formadmin/internal/auth"
)

// PageHandler serves the landing redirect and the gated pages.
type PageHandler struct {
	authService *auth.Service
	gate        *auth.Gate
	basePath    string
	uiDir       string
}

// NewPageHandler creates a new PageHandler. Pages are read from uiDir as
// <name>.html; when uiDir is empty every page responds 404.
func NewPageHandler(authService *auth.Service, gate *auth.Gate, basePath, uiDir string) *PageHandler {
	return &PageHandler{
		authService: authService,
		gate:        gate,
		basePath:    basePath,
		uiDir:       uiDir,
	}
}

// Root handles GET /. It ensures the principal administrator exists and then
// redirects to the login or landing page.
func (h *PageHandler) Root(w http.ResponseWriter, r *http.Request) {
	if res, err := h.authService.Bootstrap(r.Context()); err != nil {
		slog.Error("principal admin bootstrap failed", "error", err, "requestId", middleware.GetRequestID(r.Context()))
	} else if res.Conflict {
		slog.Warn("principal admin email is held by a non-admin account", "userId", res.ID)
	}

	d := middleware.EvaluatePage(h.gate, h.basePath, r)
	target := d.Redirect
	if target == "" {
		target = auth.PathLogin
	}
	middleware.RedirectPage(w, r, h.basePath, target)
}

// Page returns a handler serving the named page.
func (h *PageHandler) Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.uiDir == "" {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Page not found", middleware.GetRequestID(r.Context()))
			return
		}

		path := filepath.Join(h.uiDir, name+".html")
		if _, err := os.Stat(path); err != nil {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Page not found", middleware.GetRequestID(r.Context()))
			return
		}
		http.ServeFile(w, r, path)
	}
}
