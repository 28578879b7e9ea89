package api

import (
	"net/http"
	"time"

	"github.com/vibecheck/vibecheck/internal/api/respond"
	"github.com/vibecheck/vibecheck/internal/store"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	pinger store.HealthPinger
}

// NewHealthHandler creates a new health handler. pinger may be nil when the
// backing store exposes no connectivity probe.
func NewHealthHandler(pinger store.HealthPinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

// CheckHealth handles GET /api/health.
// Always returns 200; the body reports liveness only.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// CheckStorageHealth handles GET /api/health/db by pinging the store.
func (h *HealthHandler) CheckStorageHealth(w http.ResponseWriter, r *http.Request) {
	if h.pinger == nil {
		respond.WriteServiceUnavailable(w, "no storage probe configured")
		return
	}
	if err := h.pinger.HealthPing(r.Context()); err != nil {
		respond.WriteServiceUnavailable(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
