// Package store persists review assignments, reviews and templates.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"confpaper/internal/review/models"
	id "confpaper/pkg/domain"
	"confpaper/pkg/platform/sentinel"
)

// InMemory keeps review records in maps guarded by one lock.
type InMemory struct {
	mu          sync.RWMutex
	templates   map[id.TemplateID]models.Template
	assignments map[id.AssignmentID]models.Assignment
	reviews     map[id.AssignmentID]models.Review
}

func NewInMemory() *InMemory {
	return &InMemory{
		templates:   make(map[id.TemplateID]models.Template),
		assignments: make(map[id.AssignmentID]models.Assignment),
		reviews:     make(map[id.AssignmentID]models.Review),
	}
}

func (s *InMemory) CreateTemplate(_ context.Context, t *models.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.templates[t.ID]; exists {
		return fmt.Errorf("template %s: %w", t.ID, sentinel.ErrConflict)
	}
	for _, existing := range s.templates {
		if existing.Name == t.Name && existing.Version == t.Version {
			return fmt.Errorf("template %s v%d: %w", t.Name, t.Version, sentinel.ErrConflict)
		}
	}
	s.templates[t.ID] = cloneTemplate(*t)
	return nil
}

func (s *InMemory) FindTemplate(_ context.Context, templateID id.TemplateID) (*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[templateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := cloneTemplate(t)
	return &out, nil
}

func (s *InMemory) ListActiveTemplates(_ context.Context) ([]*models.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Template
	for _, t := range s.templates {
		if t.IsActive {
			c := cloneTemplate(t)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Version > out[j].Version
	})
	return out, nil
}

func (s *InMemory) CreateAssignment(_ context.Context, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.assignments[a.ID]; exists {
		return fmt.Errorf("assignment %s: %w", a.ID, sentinel.ErrConflict)
	}
	for _, existing := range s.assignments {
		if existing.PaperID == a.PaperID && existing.ReviewerID == a.ReviewerID {
			return fmt.Errorf("reviewer %s on paper %s: %w", a.ReviewerID, a.PaperID, sentinel.ErrConflict)
		}
	}
	s.assignments[a.ID] = *a
	return nil
}

func (s *InMemory) FindAssignment(_ context.Context, assignmentID id.AssignmentID) (*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[assignmentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &a, nil
}

func (s *InMemory) ListAssignments(_ context.Context, paperID id.PaperID) ([]*models.AssignmentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.AssignmentView
	for _, a := range s.assignments {
		if a.PaperID != paperID {
			continue
		}
		view := &models.AssignmentView{Assignment: a}
		if r, ok := s.reviews[a.ID]; ok {
			rc := cloneReview(r)
			view.Review = &rc
		}
		out = append(out, view)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AssignedAt.Before(out[j].AssignedAt)
	})
	return out, nil
}

// CreateReview stores r. An assignment holds at most one review.
func (s *InMemory) CreateReview(_ context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[r.AssignmentID]; !ok {
		return fmt.Errorf("assignment %s: %w", r.AssignmentID, sentinel.ErrNotFound)
	}
	if _, exists := s.reviews[r.AssignmentID]; exists {
		return fmt.Errorf("review for assignment %s: %w", r.AssignmentID, sentinel.ErrConflict)
	}
	s.reviews[r.AssignmentID] = cloneReview(*r)
	return nil
}

func cloneTemplate(t models.Template) models.Template {
	t.Schema = append(json.RawMessage(nil), t.Schema...)
	return t
}

func cloneReview(r models.Review) models.Review {
	r.Content = append(json.RawMessage(nil), r.Content...)
	return r
}
