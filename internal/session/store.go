// Package session holds in-memory story sessions for the lifetime of the
// process. Each session has its own lock so turns on one story never wait on
// another.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a story id is unknown to the store.
var ErrNotFound = errors.New("story session not found")

// Session is the mutable state of one story.
type Session struct {
	ID        string
	Theme     string
	Turn      int
	History   *History
	Inventory []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Session) clone() Session {
	c := *s
	c.History = s.History.clone()
	c.Inventory = append([]string(nil), s.Inventory...)
	return c
}

type entry struct {
	mu      sync.Mutex
	session *Session
}

// Store maps story ids to sessions.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry

	newID func() string
	now   func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the uuid generator used for new sessions.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock replaces time.Now for session timestamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create inserts a new session for theme at turn 0 and returns a snapshot.
func (s *Store) Create(theme string) Session {
	now := s.now()
	sess := &Session{
		Theme:     theme,
		History:   NewHistory(HistoryWindow),
		Inventory: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A custom generator may repeat itself; ids must stay unique.
	for {
		sess.ID = s.newID()
		if _, taken := s.entries[sess.ID]; !taken {
			break
		}
	}
	s.entries[sess.ID] = &entry{session: sess}
	return sess.clone()
}

// Get returns a snapshot of the session. Mutating it does not affect the store.
func (s *Store) Get(id string) (Session, error) {
	e, ok := s.lookup(id)
	if !ok {
		return Session{}, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.clone(), nil
}

// Update runs fn with exclusive access to the session. Calls for the same id
// are serialized; calls for different ids run independently. If fn returns an
// error the session is left exactly as fn left it.
func (s *Store) Update(id string, fn func(*Session) error) error {
	e, ok := s.lookup(id)
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.session); err != nil {
		return err
	}
	e.session.UpdatedAt = s.now()
	return nil
}

// Discard removes a session. It is only used to drop a story whose opening
// turn failed, so no caller ever saw its id.
func (s *Store) Discard(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) lookup(id string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}
