// Package memory is an in-process session.Store used by tests and local runs
// without Redis.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/session"
	apperrors "github.com/Rohit-bisht-rise/shopmanagement/pkg/errors"
)

type entry struct {
	data    session.Data
	expires time.Time
}

// Store implements session.Store with a mutex-guarded map.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (s *Store) Get(_ context.Context, id string) (*session.Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || !s.now().Before(e.expires) {
		delete(s.entries, id)
		return nil, apperrors.NotFound("session", id)
	}
	data := e.data
	data.Flashes = append([]session.Flash(nil), e.data.Flashes...)
	return &data, nil
}

func (s *Store) Save(_ context.Context, id string, data *session.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *data
	copied.Flashes = append([]session.Flash(nil), data.Flashes...)
	s.entries[id] = entry{data: copied, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Len reports how many sessions are stored, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
