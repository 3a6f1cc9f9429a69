// Package service implements the attestation registry state machine: agency
// enrollment and permission, subject registration, attestation scoring and
// the automatic ban transition.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"attestry/internal/audit"
	registrymetrics "attestry/internal/registry/metrics"
	"attestry/internal/registry/models"
	"attestry/internal/registry/regnum"
	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
	"attestry/pkg/platform/sentinel"
	"attestry/pkg/requestcontext"
)

type AgencyStore interface {
	Create(ctx context.Context, agency *models.Agency) error
	FindByAddress(ctx context.Context, address id.AgencyID) (*models.Agency, error)
	Execute(ctx context.Context, address id.AgencyID, validate func(*models.Agency) error, mutate func(*models.Agency)) (*models.Agency, error)
	List(ctx context.Context) ([]*models.Agency, error)
}

type SubjectStore interface {
	Create(ctx context.Context, subject *models.Subject) error
	FindByID(ctx context.Context, subjectID id.SubjectID) (*models.Subject, error)
	Execute(ctx context.Context, subjectID id.SubjectID, validate func(*models.Subject) error, mutate func(*models.Subject)) (*models.Subject, error)
	List(ctx context.Context) ([]*models.Subject, error)
}

// AttestationStore is the per-subject append-only attestor log. Has is the
// duplicate pre-check; Append performs no de-duplication.
type AttestationStore interface {
	Has(ctx context.Context, subjectID id.SubjectID, agency id.AgencyID) (bool, error)
	Append(ctx context.Context, subjectID id.SubjectID, agency id.AgencyID) error
	ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]id.AgencyID, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates the registry. A single mutex serializes every mutating
// operation, and each operation orders all validations before its first
// mutation, so a failed call observably changes nothing.
type Service struct {
	mu sync.Mutex

	authority id.AgencyID
	agencies  AgencyStore
	subjects  SubjectStore
	ledger    AttestationStore
	regnums   *regnum.Generator

	logger    *slog.Logger
	publisher AuditPublisher
	metrics   *registrymetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(m *registrymetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithGenerator(g *regnum.Generator) Option {
	return func(s *Service) { s.regnums = g }
}

// New constructs the service and self-enrolls the authority with the reserved
// sentinel registration number. Re-running against a durable store that
// already holds the authority record is a no-op.
func New(authority id.AgencyID, authorityName string, agencies AgencyStore, subjects SubjectStore, ledger AttestationStore, opts ...Option) (*Service, error) {
	s := &Service{
		authority: authority,
		agencies:  agencies,
		subjects:  subjects,
		ledger:    ledger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.regnums == nil {
		s.regnums = regnum.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	record, err := models.NewAgency(authority, id.AuthoritySentinel, authorityName, requestcontext.Now(context.Background()))
	if err != nil {
		return nil, err
	}
	if err := s.agencies.Create(context.Background(), record); err != nil && !errors.Is(err, sentinel.ErrAlreadyUsed) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to bootstrap authority")
	}
	return s, nil
}

// requireAuthority admits only the authority identity fixed at construction.
func (s *Service) requireAuthority(ctx context.Context) (id.AgencyID, error) {
	caller := requestcontext.Caller(ctx)
	if caller != s.authority {
		return "", models.ErrNotOwner
	}
	return caller, nil
}

// requirePermittedAgency admits only currently-permitted agencies. Unknown
// callers have no record and are rejected the same way: default-deny.
func (s *Service) requirePermittedAgency(ctx context.Context) (id.AgencyID, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return "", models.ErrNotPermittedAgency
	}
	agency, err := s.agencies.FindByAddress(ctx, caller)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", models.ErrNotPermittedAgency
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load caller agency")
	}
	if !agency.IsPermitted() {
		return "", models.ErrNotPermittedAgency
	}
	return caller, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	event.RequestID = requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, string(event.Action),
		"log_type", "audit",
		"caller", string(event.Caller),
		"agency_id", string(event.AgencyID),
		"subject_id", string(event.SubjectID),
		"detail", event.Detail,
		"request_id", event.RequestID,
	)
	if s.publisher != nil {
		_ = s.publisher.Emit(ctx, event)
	}
}
