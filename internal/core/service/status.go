package service

import (
	"context"
	"sort"
	"time"

	"github.com/yndnr/scand-go/internal/core/domain"
)

// Status is the device-wide management view.
type Status struct {
	BufferBytes       int    `json:"buffer_bytes"`
	BufferGeneration  uint64 `json:"buffer_generation"`
	BufferFingerprint string `json:"buffer_fingerprint,omitempty"`
	MaxBufferBytes    int    `json:"max_buffer_bytes"`
	SessionsOpen      int    `json:"sessions_open"`
	MaxOpenSessions   int    `json:"max_open_sessions"`
	UptimeSeconds     int64  `json:"uptime_seconds"`
}

// SessionInfo is the per-session management view.
type SessionInfo struct {
	ID             string `json:"id"`
	CreatedAt      int64  `json:"created_at"`
	LastActive     int64  `json:"last_active"`
	Position       int    `json:"position"`
	Generation     uint64 `json:"generation"`
	DelimiterBytes int    `json:"delimiter_bytes"`
}

// Stat returns the device-wide status.
func (d *DeviceService) Stat(ctx context.Context) (Status, error) {
	if err := interrupted(ctx); err != nil {
		return Status{}, err
	}
	return Status{
		BufferBytes:       d.buffer.Len(),
		BufferGeneration:  d.buffer.Generation(),
		BufferFingerprint: d.buffer.Fingerprint(),
		MaxBufferBytes:    d.buffer.MaxBytes(),
		SessionsOpen:      d.store.Count(),
		MaxOpenSessions:   d.maxOpenSessions,
		UptimeSeconds:     int64(time.Since(d.startedAt).Seconds()),
	}, nil
}

// Sessions lists the open sessions sorted by handle.
func (d *DeviceService) Sessions(ctx context.Context) ([]SessionInfo, error) {
	if err := interrupted(ctx); err != nil {
		return nil, err
	}

	infos := make([]SessionInfo, 0, d.store.Count())
	d.store.Range(func(sess *domain.Session) bool {
		infos = append(infos, SessionInfo{
			ID:             sess.ID,
			CreatedAt:      sess.CreatedAt,
			LastActive:     sess.LastActiveTime().UnixMilli(),
			Position:       sess.Position(),
			Generation:     sess.Generation(),
			DelimiterBytes: sess.Delimiters().Len(),
		})
		return true
	})
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// ResetBuffer drops the shared buffer content, leaving it empty at a
// new generation. Called when an inbound payload faults at the
// transport boundary and by the management reset.
func (d *DeviceService) ResetBuffer(ctx context.Context) error {
	if err := interrupted(ctx); err != nil {
		return err
	}
	d.buffer.Clear()
	d.metrics.BufferBytes.Set(0)
	d.log.Info("buffer reset", "generation", d.buffer.Generation())
	return nil
}

// Reset drops every open session and the buffer content. Management
// use only.
func (d *DeviceService) Reset(ctx context.Context) error {
	if err := interrupted(ctx); err != nil {
		return err
	}
	released := d.store.Count()
	d.store.Clear()
	d.buffer.Clear()
	d.metrics.SessionsActive.Set(0)
	d.metrics.BufferBytes.Set(0)
	d.log.Info("device reset", "sessions_released", released)
	return nil
}
