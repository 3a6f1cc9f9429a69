// Package subject stores identity records keyed by subject ID.
package subject

import (
	"context"
	"sync"

	"attestry/internal/registry/models"
	id "attestry/pkg/domain"
	"attestry/pkg/platform/sentinel"
)

// InMemory keeps subject records in process. Insertion order is preserved so
// List enumerates subjects in registration order deterministically.
type InMemory struct {
	mu    sync.RWMutex
	byID  map[id.SubjectID]*models.Subject
	order []id.SubjectID
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[id.SubjectID]*models.Subject)}
}

// Create stores a new subject. Fails with sentinel.ErrAlreadyUsed when the
// subject ID is already registered.
func (s *InMemory) Create(_ context.Context, subject *models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[subject.ID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	copied := *subject
	s.byID[subject.ID] = &copied
	s.order = append(s.order, subject.ID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, subjectID id.SubjectID) (*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subject, ok := s.byID[subjectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *subject
	return &copied, nil
}

// Execute runs an atomic validate-then-mutate on one subject record. A
// validation error leaves the record untouched.
func (s *InMemory) Execute(_ context.Context, subjectID id.SubjectID, validate func(*models.Subject) error, mutate func(*models.Subject)) (*models.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subject, ok := s.byID[subjectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(subject); err != nil {
		return nil, err
	}
	mutate(subject)
	copied := *subject
	return &copied, nil
}

// List returns all subjects in registration order.
func (s *InMemory) List(_ context.Context) ([]*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Subject, 0, len(s.order))
	for _, key := range s.order {
		copied := *s.byID[key]
		out = append(out, &copied)
	}
	return out, nil
}
