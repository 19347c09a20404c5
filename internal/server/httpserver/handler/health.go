package handler

import (
	"net/http"

	"github.com/yndnr/scand-go/internal/infra/buildinfo"
)

// Health handles GET /health. It reports liveness only.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: buildinfo.Version,
	})
}

// Ready handles GET /ready. The device is ready once its service
// answers; there is no external dependency to probe.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if _, err := h.device.Stat(r.Context()); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "SD-SYS-5030", "device not ready")
		return
	}
	h.writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ready",
		Version: buildinfo.Version,
	})
}
