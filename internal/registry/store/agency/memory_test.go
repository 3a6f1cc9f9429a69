package agency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"attestry/internal/registry/models"
	id "attestry/pkg/domain"
	"attestry/pkg/platform/sentinel"
)

type AgencyStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestAgencyStoreSuite(t *testing.T) {
	suite.Run(t, new(AgencyStoreSuite))
}

func (s *AgencyStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *AgencyStoreSuite) newAgency(addr id.AgencyID, regnum id.RegistrationNumber) *models.Agency {
	agency, err := models.NewAgency(addr, regnum, "Test Agency", time.Now())
	s.Require().NoError(err)
	return agency
}

func (s *AgencyStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds agency by address", func() {
		agency := s.newAgency("agency-a", 42)
		s.Require().NoError(s.store.Create(s.ctx, agency))

		found, err := s.store.FindByAddress(s.ctx, "agency-a")
		s.Require().NoError(err)
		s.Equal(agency.RegistrationNumber, found.RegistrationNumber)
	})

	s.Run("returns ErrNotFound for unknown address", func() {
		_, err := s.store.FindByAddress(s.ctx, "agency-x")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *AgencyStoreSuite) TestUniqueness() {
	s.Run("rejects duplicate address", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newAgency("agency-a", 1)))
		err := s.store.Create(s.ctx, s.newAgency("agency-a", 2))
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("rejects duplicate registration number", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newAgency("agency-b", 7)))
		err := s.store.Create(s.ctx, s.newAgency("agency-c", 7))
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})
}

func (s *AgencyStoreSuite) TestExecute() {
	s.Require().NoError(s.store.Create(s.ctx, s.newAgency("agency-a", 1)))

	s.Run("mutates under a passing validation", func() {
		updated, err := s.store.Execute(s.ctx, "agency-a",
			func(a *models.Agency) error { return a.CanRevoke() },
			func(a *models.Agency) { a.ApplyRevoke(time.Now()) },
		)
		s.Require().NoError(err)
		s.Equal(models.AgencyStatusBanned, updated.Status)

		stored, err := s.store.FindByAddress(s.ctx, "agency-a")
		s.Require().NoError(err)
		s.Equal(models.AgencyStatusBanned, stored.Status)
	})

	s.Run("failing validation leaves the record untouched", func() {
		_, err := s.store.Execute(s.ctx, "agency-a",
			func(a *models.Agency) error { return a.CanRevoke() },
			func(a *models.Agency) { a.ApplyRevoke(time.Now()) },
		)
		s.Require().ErrorIs(err, models.ErrAlreadyBanned)
	})

	s.Run("unknown address is ErrNotFound", func() {
		_, err := s.store.Execute(s.ctx, "agency-x",
			func(*models.Agency) error { return nil },
			func(*models.Agency) {},
		)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *AgencyStoreSuite) TestListPreservesEnrollmentOrder() {
	s.Require().NoError(s.store.Create(s.ctx, s.newAgency("agency-c", 3)))
	s.Require().NoError(s.store.Create(s.ctx, s.newAgency("agency-a", 1)))
	s.Require().NoError(s.store.Create(s.ctx, s.newAgency("agency-b", 2)))

	agencies, err := s.store.List(s.ctx)
	s.Require().NoError(err)

	addrs := make([]id.AgencyID, 0, len(agencies))
	for _, a := range agencies {
		addrs = append(addrs, a.Address)
	}
	s.Equal([]id.AgencyID{"agency-c", "agency-a", "agency-b"}, addrs)
}

func (s *AgencyStoreSuite) TestReturnsCopies() {
	s.Require().NoError(s.store.Create(s.ctx, s.newAgency("agency-a", 1)))

	found, err := s.store.FindByAddress(s.ctx, "agency-a")
	s.Require().NoError(err)
	found.Name = "mutated"

	again, err := s.store.FindByAddress(s.ctx, "agency-a")
	s.Require().NoError(err)
	s.Equal("Test Agency", again.Name)
}
