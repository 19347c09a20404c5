package handler

import (
	"net/http"

	"github.com/yndnr/scand-go/internal/core/domain"
	"github.com/yndnr/scand-go/internal/core/service"
	"github.com/yndnr/scand-go/internal/infra/buildinfo"
)

// Status handles GET /v1/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.device.Stat(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, domain.ErrorCode(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, statusResponse{
		Status:  st,
		Version: buildinfo.Version,
	})
}

// Sessions handles GET /v1/sessions.
func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	infos, err := h.device.Sessions(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, domain.ErrorCode(err), err.Error())
		return
	}
	if infos == nil {
		infos = []service.SessionInfo{}
	}
	h.writeJSON(w, http.StatusOK, sessionsResponse{
		Count:    len(infos),
		Sessions: infos,
	})
}
