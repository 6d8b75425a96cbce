package debate

import (
	"sync"
	"time"
)

// Entry is a store listing row, enough for the reaper to pick victims.
type Entry struct {
	DebateID   string
	LastActive time.Time
}

// Store is the registry of live sessions keyed by debate id. The store
// protects only its own map structure; serialization of operations on a
// single session is the session's own job. Implementations must be safe for
// concurrent use across different debate ids.
type Store interface {
	// Create inserts a new session, failing with ErrAlreadyActive if the
	// debate id is already present.
	Create(sess *Session) error

	// Get returns the live session, or ErrNotFound.
	Get(debateID string) (*Session, error)

	// Remove removes and returns the session, or ErrNotFound.
	Remove(debateID string) (*Session, error)

	// Snapshot returns a read-only copy of the session state, or ErrNotFound.
	Snapshot(debateID string) (*Snapshot, error)

	// List returns one entry per live session.
	List() []Entry

	// Len returns the number of live sessions.
	Len() int
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an in-process Store.
func NewMemoryStore() Store {
	return &memoryStore{
		sessions: make(map[string]*Session),
	}
}

func (s *memoryStore) Create(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.debateID]; exists {
		return ErrAlreadyActive
	}
	s.sessions[sess.debateID] = sess
	return nil
}

func (s *memoryStore) Get(debateID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[debateID]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *memoryStore) Remove(debateID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[debateID]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.sessions, debateID)
	return sess, nil
}

func (s *memoryStore) Snapshot(debateID string) (*Snapshot, error) {
	s.mu.RLock()
	sess, ok := s.sessions[debateID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return sess.Snapshot(), nil
}

func (s *memoryStore) List() []Entry {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	entries := make([]Entry, 0, len(sessions))
	for _, sess := range sessions {
		entries = append(entries, Entry{
			DebateID:   sess.DebateID(),
			LastActive: sess.LastActive(),
		})
	}
	return entries
}

func (s *memoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
