package types

import (
	"encoding/json"
	"sync"
	"time"
)

// Session is server-side state tied to a client by an opaque id carried in
// a cookie. All accessors are safe for concurrent use.
type Session struct {
	mu        sync.RWMutex
	id        string
	data      map[string]interface{}
	createdAt time.Time
	expiresAt time.Time
	destroyed bool
}

// Cookie describes the session cookie the caller must attach to the
// outgoing response.
type Cookie struct {
	Name      string
	Value     string
	ExpiresAt time.Time
}

func NewSession(id string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		id:        id,
		data:      make(map[string]interface{}),
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Expired reports whether the session is past its expiry at now. A destroyed
// session is always expired.
func (s *Session) Expired(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destroyed || now.After(s.expiresAt)
}

func (s *Session) Destroyed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destroyed
}

// Refresh moves the expiry to now+window. Destroyed sessions stay destroyed
// and Refresh reports false for them.
func (s *Session) Refresh(now time.Time, window time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return false
	}
	s.expiresAt = now.Add(window)
	return true
}

// Destroy clears the data and forces the expiry into the past.
func (s *Session) Destroy(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]interface{})
	s.destroyed = true
	if !s.expiresAt.Before(now) {
		s.expiresAt = now.Add(-time.Second)
	}
}

func (s *Session) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// GetString returns "" if the key is missing or not a string.
func (s *Session) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// Set is ignored on a destroyed session.
func (s *Session) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.data[key] = value
}

func (s *Session) Exists(key string) bool {
	_, ok := s.Get(key)
	return ok
}

func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Data returns a shallow copy of the session's values.
func (s *Session) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]interface{}, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *Session) Cookie(name string) Cookie {
	return Cookie{
		Name:      name,
		Value:     s.id,
		ExpiresAt: s.ExpiresAt(),
	}
}

type sessionRecord struct {
	ID        string                 `json:"id"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt time.Time              `json:"created_at"`
	ExpiresAt time.Time              `json:"expires_at"`
	Destroyed bool                   `json:"destroyed,omitempty"`
}

func (s *Session) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(sessionRecord{
		ID:        s.id,
		Data:      s.data,
		CreatedAt: s.createdAt,
		ExpiresAt: s.expiresAt,
		Destroyed: s.destroyed,
	})
}

func (s *Session) UnmarshalJSON(b []byte) error {
	var rec sessionRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	if rec.Data == nil {
		rec.Data = make(map[string]interface{})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = rec.ID
	s.data = rec.Data
	s.createdAt = rec.CreatedAt
	s.expiresAt = rec.ExpiresAt
	s.destroyed = rec.Destroyed
	return nil
}
