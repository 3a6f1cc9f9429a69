// Package agency stores enrolled agency records keyed by address.
package agency

import (
	"context"
	"sync"

	"attestry/internal/registry/models"
	id "attestry/pkg/domain"
	"attestry/pkg/platform/sentinel"
)

// InMemory keeps agency records in process. Insertion order is preserved so
// List enumerates agencies in enrollment order deterministically.
type InMemory struct {
	mu       sync.RWMutex
	byAddr   map[id.AgencyID]*models.Agency
	byRegnum map[id.RegistrationNumber]id.AgencyID
	order    []id.AgencyID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byAddr:   make(map[id.AgencyID]*models.Agency),
		byRegnum: make(map[id.RegistrationNumber]id.AgencyID),
	}
}

// Create stores a new agency. Fails with sentinel.ErrAlreadyUsed when the
// address is already enrolled, and with sentinel.ErrInvalidState when the
// registration number is already held by another agency.
func (s *InMemory) Create(_ context.Context, agency *models.Agency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byAddr[agency.Address]; ok {
		return sentinel.ErrAlreadyUsed
	}
	if _, ok := s.byRegnum[agency.RegistrationNumber]; ok {
		return sentinel.ErrInvalidState
	}
	copied := *agency
	s.byAddr[agency.Address] = &copied
	s.byRegnum[agency.RegistrationNumber] = agency.Address
	s.order = append(s.order, agency.Address)
	return nil
}

func (s *InMemory) FindByAddress(_ context.Context, address id.AgencyID) (*models.Agency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agency, ok := s.byAddr[address]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *agency
	return &copied, nil
}

// Execute runs an atomic validate-then-mutate on one agency record. The lock
// is held across both callbacks so a passing validation cannot be invalidated
// before the mutation lands. A validation error leaves the record untouched.
func (s *InMemory) Execute(_ context.Context, address id.AgencyID, validate func(*models.Agency) error, mutate func(*models.Agency)) (*models.Agency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agency, ok := s.byAddr[address]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(agency); err != nil {
		return nil, err
	}
	mutate(agency)
	copied := *agency
	return &copied, nil
}

// List returns all agencies in enrollment order.
func (s *InMemory) List(_ context.Context) ([]*models.Agency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Agency, 0, len(s.order))
	for _, addr := range s.order {
		copied := *s.byAddr[addr]
		out = append(out, &copied)
	}
	return out, nil
}
