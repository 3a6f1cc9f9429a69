package service

import (
	"context"
	"errors"
	"time"

	"attestry/internal/audit"
	"attestry/internal/registry/models"
	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
	"attestry/pkg/platform/sentinel"
	"attestry/pkg/requestcontext"
)

// RegisterSubject creates a subject identity record. Permitted agencies only.
// The record starts with verification score 1, vouched by the registering
// agency.
func (s *Service) RegisterSubject(ctx context.Context, req *models.RegisterSubjectRequest) (*models.Subject, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	caller, err := s.requirePermittedAgency(ctx)
	if err != nil {
		return nil, err
	}

	subject, err := models.NewSubject(req, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.subjects.Create(ctx, subject); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, models.ErrAlreadyRegistered
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register subject")
	}

	s.emit(ctx, audit.Event{
		Action:    audit.ActionSubjectRegistered,
		Caller:    caller,
		AgencyID:  caller,
		SubjectID: subject.ID,
	})
	if s.metrics != nil {
		s.metrics.SubjectsRegistered.Inc()
		s.metrics.ObserveRegister(start)
	}
	return subject, nil
}

// Attest casts the calling agency's judgment on a subject. Permitted agencies
// only, at most once per subject per agency. A positive attestation raises
// the verification score by one; a negative one lowers it by one, and a score
// of exactly zero bans the subject permanently. The caller is appended to the
// subject's attestor log after scoring, whatever the branch.
func (s *Service) Attest(ctx context.Context, subjectID id.SubjectID, valid bool) (*models.Subject, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	caller, err := s.requirePermittedAgency(ctx)
	if err != nil {
		return nil, err
	}

	attested, err := s.ledger.Has(ctx, subjectID, caller)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check attestation log")
	}
	if attested {
		return nil, models.ErrDuplicateAttestation
	}

	now := requestcontext.Now(ctx)
	banned := false
	subject, err := s.subjects.Execute(ctx, subjectID,
		func(sub *models.Subject) error {
			// No unban path exists, so a banned subject's record is frozen.
			if sub.IsBanned() {
				return models.ErrSubjectBanned
			}
			return nil
		},
		func(sub *models.Subject) {
			if collapsed := sub.ApplyAttestation(valid, now); collapsed {
				sub.ApplyBan(now)
				banned = true
			}
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "subject not found")
		}
		return nil, err
	}

	if err := s.ledger.Append(ctx, subjectID, caller); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record attestation")
	}

	action := audit.ActionAttestationNegative
	if valid {
		action = audit.ActionAttestationPositive
	}
	s.emit(ctx, audit.Event{Action: action, Caller: caller, AgencyID: caller, SubjectID: subjectID})
	if banned {
		s.emit(ctx, audit.Event{Action: audit.ActionSubjectBanned, Caller: caller, SubjectID: subjectID})
	}

	if s.metrics != nil {
		s.metrics.IncrementAttestation(valid)
		if banned {
			s.metrics.SubjectsBanned.Inc()
		}
		s.metrics.ObserveAttest(start)
	}
	return subject, nil
}

// GetSubject returns a subject record by ID.
func (s *Service) GetSubject(ctx context.Context, subjectID id.SubjectID) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "subject not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subject")
	}
	return subject, nil
}

// GetAttestors returns the agencies that attested a subject, in attestation
// order. An unknown subject yields a not-found error rather than an empty
// list, so callers can tell "never registered" from "no attestations yet".
func (s *Service) GetAttestors(ctx context.Context, subjectID id.SubjectID) ([]id.AgencyID, error) {
	if _, err := s.GetSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	attestors, err := s.ledger.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list attestors")
	}
	return attestors, nil
}

// ListSubjects returns all subjects in registration order.
func (s *Service) ListSubjects(ctx context.Context) ([]*models.Subject, error) {
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list subjects")
	}
	return subjects, nil
}
