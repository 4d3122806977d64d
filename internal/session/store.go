// Package session holds server-side login sessions keyed by an opaque cookie token.
package session

import (
	"sync"
	"time"

	"driver_dashboard/internal/model"

	"github.com/google/uuid"
)

// DefaultTTL is the lifetime of a session from issuance.
const DefaultTTL = 24 * time.Hour

// Session is one logged-in browser.
type Session struct {
	Token     string
	Identity  model.Identity
	ExpiresAt time.Time
}

// Store maps opaque tokens to identities.
type Store interface {
	Create(identity model.Identity) (Session, error)
	Get(token string) (*Session, bool)
	Delete(token string)
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore returns an in-process Store. Sessions do not survive a restart.
func NewMemoryStore(ttl time.Duration) Store {
	return newMemoryStore(ttl, time.Now)
}

func newMemoryStore(ttl time.Duration, now func() time.Time) *memoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      now,
	}
}

func (s *memoryStore) Create(identity model.Identity) (Session, error) {
	token, err := uuid.NewRandom()
	if err != nil {
		return Session{}, err
	}
	sess := Session{
		Token:     token.String(),
		Identity:  identity,
		ExpiresAt: s.now().Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	s.purgeExpiredLocked()
	return sess, nil
}

// Get returns the live session for token. Expired sessions are dropped.
func (s *memoryStore) Get(token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}

	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !s.now().Before(sess.ExpiresAt) {
		s.Delete(token)
		return nil, false
	}
	return &sess, true
}

func (s *memoryStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

func (s *memoryStore) purgeExpiredLocked() {
	now := s.now()
	for token, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}
