// Package store persists paper aggregates in memory, PostgreSQL or SQLite.
package store

import (
	"context"
	"fmt"
	"sync"

	"confpaper/internal/paper/models"
	id "confpaper/pkg/domain"
	"confpaper/pkg/platform/sentinel"
)

// InMemory keeps papers in a map. Papers are deep-copied on the way in and
// out so callers never alias stored state.
type InMemory struct {
	mu     sync.RWMutex
	papers map[id.PaperID]*models.Paper
}

func NewInMemory() *InMemory {
	return &InMemory{papers: make(map[id.PaperID]*models.Paper)}
}

func (s *InMemory) Create(_ context.Context, paper *models.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.papers[paper.ID]; exists {
		return fmt.Errorf("paper %s: %w", paper.ID, sentinel.ErrConflict)
	}
	s.papers[paper.ID] = paper.Clone()
	return nil
}

func (s *InMemory) Save(_ context.Context, paper *models.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.papers[paper.ID]; !exists {
		return fmt.Errorf("paper %s: %w", paper.ID, sentinel.ErrNotFound)
	}
	s.papers[paper.ID] = paper.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, paperID id.PaperID) (*models.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paper, ok := s.papers[paperID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return paper.Clone(), nil
}

func (s *InMemory) ListBySubmitter(_ context.Context, userID id.UserID, status *models.Status) ([]*models.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Paper
	for _, p := range s.papers {
		if p.SubmitterID == userID && matchesStatus(p, status) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (s *InMemory) ListAll(_ context.Context, status *models.Status) ([]*models.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Paper, 0, len(s.papers))
	for _, p := range s.papers {
		if matchesStatus(p, status) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

// ReferencedPaths returns every storage path a paper file record points at.
// The orphan sweeper uses it to decide which stored files are still live.
func (s *InMemory) ReferencedPaths(_ context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make(map[string]struct{})
	for _, p := range s.papers {
		for _, f := range p.Files {
			paths[f.StoragePath] = struct{}{}
		}
	}
	return paths, nil
}

func matchesStatus(p *models.Paper, status *models.Status) bool {
	return status == nil || p.Status == *status
}
