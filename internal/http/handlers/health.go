package handlers

import (
	"net/http"

	"github.com/curesight/triage-platform/pkg/logging"
)

// HealthHandler serves the root banner and the readiness probe.
type HealthHandler struct {
	policies PolicyStore
	logger   *logging.Logger
}

func NewHealthHandler(policies PolicyStore, logger *logging.Logger) *HealthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &HealthHandler{policies: policies, logger: logger}
}

// GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "CureSight backend running"})
}

// GET /health
//
// Ready means the policy store answers; the triage engine is pure compute and
// cannot fail independently.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.policies != nil {
		if _, err := h.policies.LoadRules(r.Context()); err != nil {
			h.logger.Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
