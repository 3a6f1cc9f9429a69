// Package attestation keeps the per-subject append-only log of attesting
// agencies. The log performs no de-duplication itself; callers pre-check
// with Has before appending.
package attestation

import (
	"context"
	"sync"

	id "attestry/pkg/domain"
)

// InMemory keeps the ledger in process. Append order per subject is the
// attestation order and is what ListBySubject returns.
type InMemory struct {
	mu        sync.RWMutex
	bySubject map[id.SubjectID][]id.AgencyID
	members   map[id.SubjectID]map[id.AgencyID]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{
		bySubject: make(map[id.SubjectID][]id.AgencyID),
		members:   make(map[id.SubjectID]map[id.AgencyID]struct{}),
	}
}

// Has reports whether the agency already appears in the subject's log.
// An unknown subject has an empty log.
func (s *InMemory) Has(_ context.Context, subjectID id.SubjectID, agency id.AgencyID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[subjectID][agency]
	return ok, nil
}

// Append adds the agency to the subject's log.
func (s *InMemory) Append(_ context.Context, subjectID id.SubjectID, agency id.AgencyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySubject[subjectID] = append(s.bySubject[subjectID], agency)
	set, ok := s.members[subjectID]
	if !ok {
		set = make(map[id.AgencyID]struct{})
		s.members[subjectID] = set
	}
	set[agency] = struct{}{}
	return nil
}

// ListBySubject returns the subject's attestors in attestation order.
func (s *InMemory) ListBySubject(_ context.Context, subjectID id.SubjectID) ([]id.AgencyID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]id.AgencyID{}, s.bySubject[subjectID]...), nil
}
