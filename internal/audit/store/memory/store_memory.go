package memory

import (
	"context"
	"sync"

	"confpaper/internal/audit"
	id "confpaper/pkg/domain"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.PaperID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.PaperID][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.PaperID] = append(s.events[event.PaperID], event)
	return nil
}

func (s *InMemoryStore) ListByPaper(_ context.Context, paperID id.PaperID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[paperID]...), nil
}
