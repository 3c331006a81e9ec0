package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/buyer-portal-bff-go/internal/infra/observability"
)

// SystemHandler serves health probes and the session metrics snapshot.
type SystemHandler struct {
	metrics *observability.Metrics
	started time.Time
}

// NewSystemHandler creates a new system handler.
func NewSystemHandler(metrics *observability.Metrics) *SystemHandler {
	return &SystemHandler{metrics: metrics, started: time.Now()}
}

// Healthz handles GET /healthz: process liveness only.
func (h *SystemHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// Readyz handles GET /readyz. All session state is in-process, so
// readiness follows liveness; the endpoint exists for deploy tooling
// that probes both.
func (h *SystemHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// SessionMetrics handles GET /v1/metrics/session. Requires auth and
// manage_users: the snapshot exposes aggregate login failure and
// denial counts, which are operator data.
func (h *SystemHandler) SessionMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.SessionSnapshot())
}
