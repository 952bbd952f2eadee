package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/daap14/formadmin/internal/api/middleware"
	"github.com/daap14/formadmin/internal/api/response"
)

// DBPinger checks connectivity to the active store.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	pinger  DBPinger
	backend string
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pinger DBPinger, backend, version string) *HealthHandler {
	return &HealthHandler{
		pinger:  pinger,
		backend: backend,
		version: version,
	}
}

type healthData struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Backend  string `json:"backend"`
	Database string `json:"database"`
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data := healthData{
		Status:   "healthy",
		Version:  h.version,
		Backend:  h.backend,
		Database: "connected",
	}

	if err := h.pinger.Ping(r.Context()); err != nil {
		slog.Warn("store ping failed", "error", err, "requestId", middleware.GetRequestID(r.Context()))
		data.Status = "degraded"
		data.Database = "unreachable"
	}

	response.JSON(w, http.StatusOK, data)
}
