//go:build integration

package subject

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"attestry/internal/registry/models"
	id "attestry/pkg/domain"
	"attestry/pkg/platform/sentinel"
	"attestry/pkg/testutil/containers"
)

type SubjectPostgresSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
}

func TestSubjectPostgresSuite(t *testing.T) {
	suite.Run(t, new(SubjectPostgresSuite))
}

func (s *SubjectPostgresSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
	s.Require().NoError(s.store.EnsureSchema(s.ctx))
}

func (s *SubjectPostgresSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "subjects"))
}

func (s *SubjectPostgresSuite) newSubject(subjectID id.SubjectID) *models.Subject {
	subject, err := models.NewSubject(&models.RegisterSubjectRequest{
		SubjectID:   subjectID,
		ProfileData: []byte("profile"),
		Name:        "Jordan Doe",
		Gender:      "female",
		DateOfBirth: "1985-06-15",
	}, time.Now())
	s.Require().NoError(err)
	return subject
}

func (s *SubjectPostgresSuite) TestCreateAndFind() {
	subject := s.newSubject("S-1")
	s.Require().NoError(s.store.Create(s.ctx, subject))

	found, err := s.store.FindByID(s.ctx, "S-1")
	s.Require().NoError(err)
	s.Equal(subject.ProfileHash, found.ProfileHash)
	s.Equal(models.InitialVerificationScore, found.VerificationScore)
	s.Equal(models.SubjectStatusPermitted, found.Status)

	_, err = s.store.FindByID(s.ctx, "S-x")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *SubjectPostgresSuite) TestDuplicateID() {
	s.Require().NoError(s.store.Create(s.ctx, s.newSubject("S-1")))
	err := s.store.Create(s.ctx, s.newSubject("S-1"))
	s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *SubjectPostgresSuite) TestExecuteScoreAndBan() {
	s.Require().NoError(s.store.Create(s.ctx, s.newSubject("S-1")))

	now := time.Now()
	updated, err := s.store.Execute(s.ctx, "S-1",
		func(sub *models.Subject) error { return sub.CanBan() },
		func(sub *models.Subject) {
			if collapsed := sub.ApplyAttestation(false, now); collapsed {
				sub.ApplyBan(now)
			}
		},
	)
	s.Require().NoError(err)
	s.Equal(0, updated.VerificationScore)
	s.Equal(models.SubjectStatusBanned, updated.Status)

	stored, err := s.store.FindByID(s.ctx, "S-1")
	s.Require().NoError(err)
	s.Equal(0, stored.VerificationScore)
	s.Equal(models.SubjectStatusBanned, stored.Status)
}

func (s *SubjectPostgresSuite) TestExecuteRollsBackOnValidationFailure() {
	s.Require().NoError(s.store.Create(s.ctx, s.newSubject("S-1")))

	_, err := s.store.Execute(s.ctx, "S-1",
		func(*models.Subject) error { return models.ErrSubjectBanned },
		func(sub *models.Subject) { sub.VerificationScore = 99 },
	)
	s.Require().ErrorIs(err, models.ErrSubjectBanned)

	stored, err := s.store.FindByID(s.ctx, "S-1")
	s.Require().NoError(err)
	s.Equal(models.InitialVerificationScore, stored.VerificationScore)
}

func (s *SubjectPostgresSuite) TestListPreservesRegistrationOrder() {
	s.Require().NoError(s.store.Create(s.ctx, s.newSubject("S-3")))
	s.Require().NoError(s.store.Create(s.ctx, s.newSubject("S-1")))
	s.Require().NoError(s.store.Create(s.ctx, s.newSubject("S-2")))

	subjects, err := s.store.List(s.ctx)
	s.Require().NoError(err)

	keys := make([]id.SubjectID, 0, len(subjects))
	for _, sub := range subjects {
		keys = append(keys, sub.ID)
	}
	s.Equal([]id.SubjectID{"S-3", "S-1", "S-2"}, keys)
}
