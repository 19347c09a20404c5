package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yndnr/scand-go/internal/core/domain"
	"github.com/yndnr/scand-go/internal/telemetry/metric"
)

// SessionStore is the session persistence contract the service depends
// on. The in-memory store in internal/storage/memory implements it.
type SessionStore interface {
	Create(sess *domain.Session) error
	Get(id string) (*domain.Session, error)
	Delete(id string) error
	Count() int
	Range(fn func(sess *domain.Session) bool)
	Clear()
}

// Config bounds the device service.
type Config struct {
	// MaxOpenSessions caps concurrently open sessions. Non-positive
	// means DefaultMaxOpenSessions.
	MaxOpenSessions int
}

// DefaultMaxOpenSessions caps open sessions when no quota is configured.
const DefaultMaxOpenSessions = 1024

// DeviceService implements the device semantics: one shared buffer,
// independent cursors per open session, write replaces wholesale.
type DeviceService struct {
	buffer  *domain.Buffer
	store   SessionStore
	metrics *metric.Registry
	log     *slog.Logger

	maxOpenSessions int
	startedAt       time.Time
}

// NewDeviceService wires a DeviceService over the given buffer and
// session store.
func NewDeviceService(buffer *domain.Buffer, store SessionStore, metrics *metric.Registry, log *slog.Logger, cfg Config) *DeviceService {
	maxSessions := cfg.MaxOpenSessions
	if maxSessions <= 0 {
		maxSessions = DefaultMaxOpenSessions
	}
	return &DeviceService{
		buffer:          buffer,
		store:           store,
		metrics:         metrics,
		log:             log,
		maxOpenSessions: maxSessions,
		startedAt:       time.Now(),
	}
}

// interrupted reports context cancellation as the domain's interrupted
// error. Checked at operation entry so a cancelled caller never touches
// device state.
func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return domain.ErrInterrupted.WithCause(err)
	}
	return nil
}

// Open creates a new session with the default delimiter set and a
// cursor at the start of the current buffer content.
func (d *DeviceService) Open(ctx context.Context) (*domain.Session, error) {
	if err := interrupted(ctx); err != nil {
		d.metrics.OpensTotal.WithLabelValues(metric.StatusError).Inc()
		return nil, err
	}
	if d.store.Count() >= d.maxOpenSessions {
		d.metrics.OpensTotal.WithLabelValues(metric.StatusError).Inc()
		return nil, domain.ErrSessionQuota.WithDetails(
			fmt.Sprintf("%d sessions open, quota %d", d.store.Count(), d.maxOpenSessions))
	}

	sess, err := domain.NewSession(nil, d.buffer.Generation())
	if err != nil {
		d.metrics.OpensTotal.WithLabelValues(metric.StatusError).Inc()
		return nil, err
	}
	if err := d.store.Create(sess); err != nil {
		d.metrics.OpensTotal.WithLabelValues(metric.StatusError).Inc()
		return nil, err
	}

	d.metrics.OpensTotal.WithLabelValues(metric.StatusOK).Inc()
	d.metrics.SessionsActive.Set(float64(d.store.Count()))
	d.log.Debug("session opened", "session_id", sess.ID)
	return sess, nil
}

// Read returns the session's next token from the shared buffer, cut to
// capacity. A nil token with n == 0 means end-of-stream for this
// cursor; the session stays open and a later write makes it readable
// again.
func (d *DeviceService) Read(ctx context.Context, id string, capacity int) ([]byte, error) {
	if err := interrupted(ctx); err != nil {
		d.metrics.ReadsTotal.WithLabelValues(metric.StatusError).Inc()
		return nil, err
	}
	sess, err := d.lookup(id)
	if err != nil {
		d.metrics.ReadsTotal.WithLabelValues(metric.StatusError).Inc()
		return nil, err
	}

	content, generation := d.buffer.Snapshot()
	tok, n, truncated := sess.NextToken(content, generation, capacity)

	d.metrics.ReadsTotal.WithLabelValues(metric.StatusOK).Inc()
	if n > 0 {
		d.metrics.TokensTotal.Inc()
		d.metrics.TokenBytes.Observe(float64(n))
	}
	if truncated {
		d.metrics.TruncationsTotal.Inc()
		d.log.Debug("token truncated to capacity",
			"session_id", sess.ID, "capacity", capacity)
	}
	return tok, nil
}

// Write replaces the shared buffer content wholesale with payload.
// Every open session's cursor restarts from the beginning of the new
// content. On a payload over the buffer bound the buffer is left empty
// rather than holding stale content.
func (d *DeviceService) Write(ctx context.Context, id string, payload []byte) (int, error) {
	if err := interrupted(ctx); err != nil {
		d.metrics.WritesTotal.WithLabelValues(metric.StatusError).Inc()
		return 0, err
	}
	sess, err := d.lookup(id)
	if err != nil {
		d.metrics.WritesTotal.WithLabelValues(metric.StatusError).Inc()
		return 0, err
	}

	n, err := d.buffer.Replace(payload)
	if err != nil {
		d.buffer.Clear()
		d.metrics.BufferBytes.Set(0)
		d.metrics.WritesTotal.WithLabelValues(metric.StatusError).Inc()
		d.log.Warn("write rejected, buffer cleared",
			"session_id", sess.ID, "payload", payload, "error", err)
		return 0, err
	}

	sess.Rebind(d.buffer.Generation())
	d.metrics.WritesTotal.WithLabelValues(metric.StatusOK).Inc()
	d.metrics.BufferBytes.Set(float64(n))
	d.log.Debug("buffer replaced",
		"session_id", sess.ID, "bytes", n, "generation", d.buffer.Generation())
	return n, nil
}

// Control dispatches a device control command for the session.
func (d *DeviceService) Control(ctx context.Context, id string, code domain.CommandCode, arg []byte) error {
	if err := interrupted(ctx); err != nil {
		d.metrics.ControlsTotal.WithLabelValues(metric.StatusError).Inc()
		return err
	}
	sess, err := d.lookup(id)
	if err != nil {
		d.metrics.ControlsTotal.WithLabelValues(metric.StatusError).Inc()
		return err
	}
	if err := domain.ValidateCommand(code); err != nil {
		d.metrics.ControlsTotal.WithLabelValues(metric.StatusError).Inc()
		return err
	}

	switch code {
	case domain.CmdSetDelimiters:
		if err := sess.SetDelimiters(arg); err != nil {
			d.metrics.ControlsTotal.WithLabelValues(metric.StatusError).Inc()
			return err
		}
	default:
		d.metrics.ControlsTotal.WithLabelValues(metric.StatusError).Inc()
		return domain.ErrUnsupportedCommand.WithDetails("command " + code.String() + " is not implemented")
	}

	d.metrics.ControlsTotal.WithLabelValues(metric.StatusOK).Inc()
	d.log.Debug("control applied", "session_id", sess.ID, "command", code.String(), "delimiters", arg)
	return nil
}

// Release closes a session. Releasing an unknown or already-released
// handle reports ErrSessionNotFound.
func (d *DeviceService) Release(ctx context.Context, id string) error {
	if err := interrupted(ctx); err != nil {
		d.metrics.ReleasesTotal.WithLabelValues(metric.StatusError).Inc()
		return err
	}
	if err := d.validateID(id); err != nil {
		d.metrics.ReleasesTotal.WithLabelValues(metric.StatusError).Inc()
		return err
	}
	if err := d.store.Delete(normalizeID(id)); err != nil {
		d.metrics.ReleasesTotal.WithLabelValues(metric.StatusError).Inc()
		return err
	}

	d.metrics.ReleasesTotal.WithLabelValues(metric.StatusOK).Inc()
	d.metrics.SessionsActive.Set(float64(d.store.Count()))
	d.log.Debug("session released", "session_id", normalizeID(id))
	return nil
}

// lookup validates and resolves a session handle.
func (d *DeviceService) lookup(id string) (*domain.Session, error) {
	if err := d.validateID(id); err != nil {
		return nil, err
	}
	return d.store.Get(normalizeID(id))
}

func (d *DeviceService) validateID(id string) error {
	if id == "" {
		return domain.ErrMissingArgument.WithDetails("session handle is required")
	}
	if !domain.IsValidSessionID(id) {
		return domain.ErrInvalidArgument.WithDetails("malformed session handle")
	}
	return nil
}

func normalizeID(id string) string {
	return strings.ToLower(id)
}
