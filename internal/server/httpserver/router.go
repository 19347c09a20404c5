package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/scand-go/internal/core/service"
	"github.com/yndnr/scand-go/internal/server/httpserver/handler"
	"github.com/yndnr/scand-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Device is the device service the views read from.
	Device *service.DeviceService

	// Metrics supplies the Prometheus exposition handler.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger *slog.Logger

	// RatePerSecond is the per-IP request rate (non-positive disables).
	RatePerSecond float64

	// RateBurst is the per-IP burst size.
	RateBurst int
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	h := handler.New(cfg.Device, cfg.Logger)

	base := []Middleware{
		RequestID(),
		Recover(cfg.Logger),
		RequestLog(cfg.Logger),
	}
	limited := base
	if cfg.RatePerSecond > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limited = append([]Middleware{RateLimit(cfg.RatePerSecond, burst)}, base...)
	}

	mux := http.NewServeMux()

	// Probes stay outside the rate limiter so orchestrators are never
	// throttled away from them.
	mux.Handle("GET /health", Chain(http.HandlerFunc(h.Health), base...))
	mux.Handle("GET /ready", Chain(http.HandlerFunc(h.Ready), base...))

	mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), base...))

	mux.Handle("GET /v1/status", Chain(http.HandlerFunc(h.Status), limited...))
	mux.Handle("GET /v1/sessions", Chain(http.HandlerFunc(h.Sessions), limited...))

	return mux
}
