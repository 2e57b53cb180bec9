package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu     sync.RWMutex
	keys   map[string]struct{}
	events []Event
}

// NewMemoryStore constructs an in-memory store for tests and local runs.
func NewMemoryStore() Store {
	return &memoryStore{keys: make(map[string]struct{})}
}

func (s *memoryStore) Save(_ context.Context, e Event) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := e.Key()
	if _, seen := s.keys[key]; seen {
		return false, nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now().UTC()
	}
	s.keys[key] = struct{}{}
	s.events = append(s.events, e)
	return true, nil
}

func (s *memoryStore) Recent(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]Event, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}
