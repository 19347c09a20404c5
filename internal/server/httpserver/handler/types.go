package handler

import "github.com/yndnr/scand-go/internal/core/service"

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// healthResponse is returned by the health and readiness probes.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// statusResponse wraps the device status view.
type statusResponse struct {
	service.Status
	Version string `json:"version"`
}

// sessionsResponse wraps the session listing.
type sessionsResponse struct {
	Count    int                   `json:"count"`
	Sessions []service.SessionInfo `json:"sessions"`
}
