package localserver

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/yndnr/scand-go/internal/core/service"
	"github.com/yndnr/scand-go/internal/infra/buildinfo"
	"github.com/yndnr/scand-go/internal/telemetry/logger"
)

// Handler handles local management commands. Every response ends with a
// blank line so clients can frame multi-line output.
type Handler struct {
	device   *service.DeviceService
	shutdown func()
}

// NewHandler creates a Handler. shutdown triggers process shutdown and
// may be nil when the command should be unavailable.
func NewHandler(device *service.DeviceService, shutdown func()) *Handler {
	return &Handler{
		device:   device,
		shutdown: shutdown,
	}
}

// Execute executes a local management command.
func (h *Handler) Execute(ctx context.Context, w io.Writer, cmd string, args []string) error {
	switch cmd {
	case "status":
		return h.handleStatus(ctx, w)
	case "sessions":
		return h.handleSessions(ctx, w)
	case "loglevel":
		return h.handleLogLevel(w, args)
	case "reset":
		return h.handleReset(ctx, w)
	case "shutdown":
		return h.handleShutdown(w)
	case "help":
		return h.handleHelp(w)
	default:
		return respond(w, "error: unknown command: "+cmd)
	}
}

func respond(w io.Writer, lines ...string) error {
	for _, line := range lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (h *Handler) handleStatus(ctx context.Context, w io.Writer) error {
	st, err := h.device.Stat(ctx)
	if err != nil {
		return respond(w, "error: "+err.Error())
	}
	return respond(w,
		"version: "+buildinfo.String(),
		"uptime_seconds: "+strconv.FormatInt(st.UptimeSeconds, 10),
		"buffer_bytes: "+strconv.Itoa(st.BufferBytes),
		"buffer_generation: "+strconv.FormatUint(st.BufferGeneration, 10),
		"buffer_fingerprint: "+st.BufferFingerprint,
		fmt.Sprintf("sessions_open: %d/%d", st.SessionsOpen, st.MaxOpenSessions),
		"log_level: "+logger.GetLevel(),
	)
}

func (h *Handler) handleSessions(ctx context.Context, w io.Writer) error {
	infos, err := h.device.Sessions(ctx)
	if err != nil {
		return respond(w, "error: "+err.Error())
	}

	lines := make([]string, 0, len(infos)+1)
	lines = append(lines, "count: "+strconv.Itoa(len(infos)))
	for _, info := range infos {
		lines = append(lines, fmt.Sprintf("%s position=%d generation=%d last_active=%s",
			info.ID, info.Position, info.Generation,
			time.UnixMilli(info.LastActive).UTC().Format(time.RFC3339)))
	}
	return respond(w, lines...)
}

func (h *Handler) handleLogLevel(w io.Writer, args []string) error {
	if len(args) == 0 {
		return respond(w, "log_level: "+logger.GetLevel())
	}
	switch args[0] {
	case "debug", "info", "warn", "error":
		logger.SetLevel(args[0])
		return respond(w, "log_level: "+args[0])
	default:
		return respond(w, "error: level must be one of debug, info, warn, error")
	}
}

func (h *Handler) handleReset(ctx context.Context, w io.Writer) error {
	if err := h.device.Reset(ctx); err != nil {
		return respond(w, "error: "+err.Error())
	}
	return respond(w, "ok: device reset")
}

func (h *Handler) handleShutdown(w io.Writer) error {
	if h.shutdown == nil {
		return respond(w, "error: shutdown not available")
	}
	if err := respond(w, "ok: shutting down"); err != nil {
		return err
	}
	h.shutdown()
	return nil
}

func (h *Handler) handleHelp(w io.Writer) error {
	return respond(w,
		"status            show device status",
		"sessions          list open sessions",
		"loglevel [level]  get or set the log level",
		"reset             release all sessions and clear the buffer",
		"shutdown          stop the server",
	)
}
