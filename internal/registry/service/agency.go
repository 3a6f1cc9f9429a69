package service

import (
	"context"
	"errors"

	"attestry/internal/audit"
	"attestry/internal/registry/models"
	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
	"attestry/pkg/platform/sentinel"
	"attestry/pkg/requestcontext"
)

// EnrollAgency registers a new verifying agency. Authority only. The new
// agency is permitted immediately and receives a freshly minted registration
// number.
func (s *Service) EnrollAgency(ctx context.Context, address id.AgencyID, name string) (*models.Agency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	caller, err := s.requireAuthority(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.agencies.FindByAddress(ctx, address); err == nil {
		return nil, models.ErrAlreadyEnrolled
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check enrollment")
	}

	number := s.regnums.Next(address)
	// The generator is structurally unable to mint the sentinel; keep the
	// check anyway so a swapped-in generator cannot impersonate the authority.
	if number == id.AuthoritySentinel {
		return nil, models.ErrInvalidRegistration
	}

	agency, err := models.NewAgency(address, number, name, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.agencies.Create(ctx, agency); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return nil, models.ErrAlreadyEnrolled
		case errors.Is(err, sentinel.ErrInvalidState):
			// Registration number collision: not retried. The caller can
			// resubmit.
			return nil, models.ErrInvalidRegistration
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to enroll agency")
		}
	}

	s.emit(ctx, audit.Event{
		Action:             audit.ActionAgencyEnrolled,
		Caller:             caller,
		AgencyID:           address,
		RegistrationNumber: number,
		Detail:             agency.Name,
	})
	if s.metrics != nil {
		s.metrics.AgenciesEnrolled.Inc()
	}
	return agency, nil
}

// PermitAgency transitions an agency to permitted status. Authority only.
func (s *Service) PermitAgency(ctx context.Context, address id.AgencyID) (*models.Agency, error) {
	return s.changePermission(ctx, address, models.AgencyStatusPermitted)
}

// RevokeAgency transitions an agency to banned status. Authority only. A
// revoked agency keeps its registration number but fails the permitted-agency
// guard on every mutating operation until re-permitted.
func (s *Service) RevokeAgency(ctx context.Context, address id.AgencyID) (*models.Agency, error) {
	return s.changePermission(ctx, address, models.AgencyStatusBanned)
}

func (s *Service) changePermission(ctx context.Context, address id.AgencyID, target models.AgencyStatus) (*models.Agency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	caller, err := s.requireAuthority(ctx)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	agency, err := s.agencies.Execute(ctx, address,
		func(a *models.Agency) error {
			if target == models.AgencyStatusPermitted {
				return a.CanPermit()
			}
			return a.CanRevoke()
		},
		func(a *models.Agency) {
			if target == models.AgencyStatusPermitted {
				a.ApplyPermit(now)
			} else {
				a.ApplyRevoke(now)
			}
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "agency not found")
		}
		return nil, err
	}

	s.emit(ctx, audit.Event{
		Action:   audit.ActionAgencyPermissionChanged,
		Caller:   caller,
		AgencyID: address,
		Detail:   string(agency.Status),
	})
	return agency, nil
}

// Authority returns the authority's address and its self-enrolled record.
func (s *Service) Authority(ctx context.Context) (id.AgencyID, *models.Agency, error) {
	agency, err := s.GetAgency(ctx, s.authority)
	if err != nil {
		return "", nil, err
	}
	return s.authority, agency, nil
}

// GetAgency returns an agency record by address.
func (s *Service) GetAgency(ctx context.Context, address id.AgencyID) (*models.Agency, error) {
	agency, err := s.agencies.FindByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "agency not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load agency")
	}
	return agency, nil
}

// ListAgencies returns all agencies in enrollment order.
func (s *Service) ListAgencies(ctx context.Context) ([]*models.Agency, error) {
	agencies, err := s.agencies.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list agencies")
	}
	return agencies, nil
}
