package api

import (
	"context"
	"net/http"

	"github.com/vyronlabs/agencyos/internal/log"
)

// Pinger reports whether the backing store is reachable.
// *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db     Pinger
	logger log.Logger
}

// NewHealthHandler creates a health handler. db may be nil, in which case
// readiness always fails closed.
func NewHealthHandler(db Pinger, logger log.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// RegisterRoutes registers health routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.liveness)
	mux.HandleFunc("GET /ready", h.readiness)
}

type healthStatus struct {
	Status string `json:"status"`
}

// liveness reports that the process is up. It never touches the database.
func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthStatus{Status: "ok"}, h.logger)
}

// readiness reports whether the service can take traffic, which it can
// only when the database answers a ping.
func (h *HealthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, healthStatus{Status: "no database"}, h.logger)
		return
	}
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Error("readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, healthStatus{Status: "database unreachable"}, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, healthStatus{Status: "ok"}, h.logger)
}
