package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/api/response"
)

// pingTimeout bounds the database probe.
const pingTimeout = 2 * time.Second

// DBPinger checks database connectivity.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	db      DBPinger
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db DBPinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

type databaseStatus struct {
	Connected bool `json:"connected"`
}

type healthData struct {
	Status   string         `json:"status"`
	Version  string         `json:"version"`
	Database databaseStatus `json:"database"`
}

// ServeHTTP handles the health check request. A failed ping reports
// "degraded" with status 200.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	status := "healthy"
	connected := true

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()
	if h.db == nil {
		connected = false
	} else if err := h.db.Ping(ctx); err != nil {
		slog.Warn("database ping failed", "error", err)
		connected = false
	}
	if !connected {
		status = "degraded"
	}

	response.Success(w, http.StatusOK, healthData{
		Status:   status,
		Version:  h.version,
		Database: databaseStatus{Connected: connected},
	}, requestID)
}
