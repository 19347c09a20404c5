package domain

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/scand-go/pkg/scan"
)

// Session constraints.
const (
	// MaxDelimiterSetBytes bounds a session's delimiter set. The set is
	// dynamically sized up to this bound; rejecting longer sets is the
	// allocation-failure analogue for the control operation.
	MaxDelimiterSetBytes = 256

	// SessionIDPrefix is the prefix for session handles.
	SessionIDPrefix = "scfd-"
)

// Session is the per-open-handle state: a cursor into the shared
// buffer plus an owned delimiter set. Sessions are independent across
// concurrently open handles; mutation of one session's state is
// serialized by its own lock and never touches another session.
type Session struct {
	// ID is the unique handle for the session.
	// Format: scfd-{ulid_lowercase}, 31 characters total.
	ID string

	// CreatedAt is the session creation timestamp (Unix milliseconds).
	CreatedAt int64

	mu sync.Mutex

	// position is the offset of the next scan into the buffer content
	// observed at generation. It advances monotonically within one
	// generation and resets to 0 when the buffer is replaced.
	position   int
	generation uint64

	// delims is the session-owned delimiter set, replaced wholesale by
	// the set-delimiters control operation.
	delims *scan.Set

	// lastActive is the last operation timestamp (Unix milliseconds).
	lastActive int64
}

// NewSession creates a Session with a generated handle, the given
// delimiter set and a cursor bound to the given buffer generation.
func NewSession(delims *scan.Set, generation uint64) (*Session, error) {
	id, err := GenerateSessionID()
	if err != nil {
		return nil, err
	}
	if delims == nil {
		delims = scan.Default()
	}

	now := time.Now().UnixMilli()
	return &Session{
		ID:         id,
		CreatedAt:  now,
		generation: generation,
		delims:     delims,
		lastActive: now,
	}, nil
}

// GenerateSessionID generates a new session handle using ULID.
// Format: scfd-{ulid_lowercase}, 31 characters total.
func GenerateSessionID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", ErrInternal.WithCause(err)
	}
	return SessionIDPrefix + strings.ToLower(id.String()), nil
}

// NextToken scans the next token out of content at the session's
// cursor. content and generation must come from the same buffer
// snapshot. When the buffer was replaced since the session last
// scanned, the cursor first resets to the start of the new content.
//
// The returned token is cut to capacity, with truncated reporting the
// cut; the cursor still advances past the token's natural end, so the
// remainder is skipped rather than carried into the next call. With
// capacity 0 nothing is consumed.
func (s *Session) NextToken(content []byte, generation uint64, capacity int) (token []byte, n int, truncated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != generation {
		s.position = 0
		s.generation = generation
	}
	s.lastActive = time.Now().UnixMilli()

	if capacity <= 0 {
		return nil, 0, false
	}

	tok, n, newPos := scan.Next(content, s.position, s.delims, len(content))
	s.position = newPos
	if n > capacity {
		return tok[:capacity:capacity], capacity, true
	}
	return tok, n, false
}

// Rebind resets the cursor to the start of the given buffer
// generation. Called on the issuing session after its own write.
func (s *Session) Rebind(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = 0
	s.generation = generation
	s.lastActive = time.Now().UnixMilli()
}

// SetDelimiters replaces the session's delimiter set wholesale. The
// old set is discarded. Sets over MaxDelimiterSetBytes are rejected
// and the old set is retained.
func (s *Session) SetDelimiters(delims []byte) error {
	if len(delims) > MaxDelimiterSetBytes {
		return ErrDelimiterCapacity.WithDetails(
			fmt.Sprintf("set of %d bytes exceeds bound of %d", len(delims), MaxDelimiterSetBytes))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.delims = scan.NewSet(delims)
	s.lastActive = time.Now().UnixMilli()
	return nil
}

// Delimiters returns the session's current delimiter set.
func (s *Session) Delimiters() *scan.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delims
}

// Position returns the current cursor offset.
func (s *Session) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// Generation returns the buffer generation the cursor is bound to.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// LastActiveTime returns the last operation time.
func (s *Session) LastActiveTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.UnixMilli(s.lastActive)
}

// IsValidSessionID checks if a string is a valid session handle. It
// normalizes to lowercase before validation.
func IsValidSessionID(id string) bool {
	id = strings.ToLower(id)
	if !strings.HasPrefix(id, SessionIDPrefix) {
		return false
	}
	// scfd- (5) + ULID (26) = 31 characters
	if len(id) != 31 {
		return false
	}
	_, err := ulid.Parse(strings.ToUpper(id[len(SessionIDPrefix):]))
	return err == nil
}
