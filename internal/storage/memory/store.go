package memory

import (
	"github.com/yndnr/scand-go/internal/core/domain"
	"github.com/yndnr/scand-go/pkg/cmap"
)

// SessionStore holds open device sessions keyed by session ID.
type SessionStore struct {
	sessions *cmap.Map[*domain.Session]
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: cmap.New[*domain.Session](),
	}
}

// Create inserts a session. It fails with ErrSessionConflict if the ID
// is already present.
func (s *SessionStore) Create(sess *domain.Session) error {
	if !s.sessions.SetIfAbsent(sess.ID, sess) {
		return domain.ErrSessionConflict.WithDetails("id: " + sess.ID)
	}
	return nil
}

// Get looks up a session by ID.
func (s *SessionStore) Get(id string) (*domain.Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, domain.ErrSessionNotFound.WithDetails("id: " + id)
	}
	return sess, nil
}

// Delete removes a session by ID. A missing ID yields
// ErrSessionNotFound, so a double release is reported rather than
// silently absorbed.
func (s *SessionStore) Delete(id string) error {
	if !s.sessions.Delete(id) {
		return domain.ErrSessionNotFound.WithDetails("id: " + id)
	}
	return nil
}

// Count returns the number of open sessions.
func (s *SessionStore) Count() int {
	return s.sessions.Count()
}

// Range calls fn for each open session until fn returns false.
// The iteration order is unspecified.
func (s *SessionStore) Range(fn func(sess *domain.Session) bool) {
	s.sessions.Range(func(_ string, sess *domain.Session) bool {
		return fn(sess)
	})
}

// Clear removes every session. Used by the management reset command.
func (s *SessionStore) Clear() {
	s.sessions.Clear()
}
