package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yndnr/scand-go/internal/core/service"
)

// Handler serves the HTTP endpoints.
type Handler struct {
	device *service.DeviceService
	logger *slog.Logger
}

// New creates a Handler.
func New(device *service.DeviceService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		device: device,
		logger: logger,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("X-Error-Code", code)
	h.writeJSON(w, status, errorResponse{Code: code, Message: message})
}
