package domain

import (
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// DefaultMaxBufferBytes bounds the shared buffer when no limit is
// configured (16 MiB).
const DefaultMaxBufferBytes = 16 << 20

// Buffer is the process-wide shared byte store. There is exactly one
// per device; every session holds a non-owning reference to it.
//
// Content is replaced wholesale on write and never mutated in place, so
// a snapshot taken under the read lock stays valid for the lifetime of
// the slice even after later replacements. The generation counter
// increments on every replacement and lets cursors detect that the
// content they were scanning is gone.
type Buffer struct {
	mu         sync.RWMutex
	content    []byte
	generation uint64
	maxBytes   int
}

// NewBuffer creates an empty Buffer bounded to maxBytes. A
// non-positive bound falls back to DefaultMaxBufferBytes.
func NewBuffer(maxBytes int) *Buffer {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBufferBytes
	}
	return &Buffer{maxBytes: maxBytes}
}

// Replace installs p as the new content, releasing the old storage to
// the collector. The previous content remains intact when p exceeds
// the buffer bound.
func (b *Buffer) Replace(p []byte) (int, error) {
	if len(p) > b.maxBytes {
		return 0, ErrBufferCapacity.WithDetails(
			fmt.Sprintf("payload of %d bytes exceeds bound of %d", len(p), b.maxBytes))
	}

	next := append([]byte(nil), p...)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = next
	b.generation++
	return len(p), nil
}

// Clear drops the content, leaving the buffer empty and consistent.
// Used at teardown and on a failed write, where the contract is an
// empty buffer rather than stale content.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = nil
	b.generation++
}

// Snapshot returns the current content and its generation. The slice
// must not be mutated by the caller; replacements allocate fresh
// storage, so concurrent readers always observe fully-old or fully-new
// content, never a torn state.
func (b *Buffer) Snapshot() ([]byte, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content, b.generation
}

// Len returns the current content length.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.content)
}

// Generation returns the current generation counter.
func (b *Buffer) Generation() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.generation
}

// MaxBytes returns the configured content bound.
func (b *Buffer) MaxBytes() int {
	return b.maxBytes
}

// Fingerprint returns a short blake2b digest of the content, for
// status output and debugging. Empty content yields an empty string.
func (b *Buffer) Fingerprint() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.content) == 0 {
		return ""
	}
	sum := blake2b.Sum256(b.content)
	return hex.EncodeToString(sum[:8])
}
