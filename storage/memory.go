package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/minus-twelve/relay/types"
)

// MemoryStore keeps sessions in a process-local map. With maxSessions > 0
// the session closest to expiry is evicted to make room for a new one.
type MemoryStore struct {
	sessions    map[string]*types.Session
	mutex       sync.RWMutex
	maxSessions int
}

func NewMemoryStore(maxSessions int) *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]*types.Session),
		maxSessions: maxSessions,
	}
}

func (s *MemoryStore) Create(_ context.Context, session *types.Session) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.sessions[session.ID()]; exists {
		return ErrExists
	}
	if err := s.makeRoom(); err != nil {
		return err
	}
	s.sessions[session.ID()] = session
	return nil
}

func (s *MemoryStore) Save(_ context.Context, session *types.Session) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.sessions[session.ID()]; !exists {
		return ErrNotFound
	}
	s.sessions[session.ID()] = session
	return nil
}

// makeRoom must be called with the write lock held.
func (s *MemoryStore) makeRoom() error {
	if s.maxSessions <= 0 || len(s.sessions) < s.maxSessions {
		return nil
	}
	victim := s.findSoonestExpiry()
	if victim == "" {
		return errors.New("max sessions limit reached")
	}
	delete(s.sessions, victim)
	return nil
}

func (s *MemoryStore) findSoonestExpiry() string {
	var victim string
	var soonest time.Time

	for id, sess := range s.sessions {
		exp := sess.ExpiresAt()
		if victim == "" || exp.Before(soonest) {
			victim = id
			soonest = exp
		}
	}
	return victim
}

func (s *MemoryStore) Get(_ context.Context, id string) (*types.Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	session, exists := s.sessions[id]
	if !exists {
		return nil, ErrNotFound
	}
	return session, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) Cleanup(_ context.Context, now time.Time) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.sessions), nil
}
