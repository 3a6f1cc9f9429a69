package models

import (
	"strings"
	"time"

	id "attestry/pkg/domain"
)

// AgencyStatus is the permission state of a verifying agency.
type AgencyStatus string

const (
	AgencyStatusBanned    AgencyStatus = "banned"
	AgencyStatusPermitted AgencyStatus = "permitted"
)

// CanTransitionTo reports whether the status may change to target. The agency
// state machine is banned <-> permitted; a transition to the current state is
// rejected so double-permits and double-revokes surface as conflicts.
func (s AgencyStatus) CanTransitionTo(target AgencyStatus) bool {
	switch target {
	case AgencyStatusBanned, AgencyStatusPermitted:
		return s != target
	default:
		return false
	}
}

// Agency is the aggregate for a verifying party enrolled by the authority.
//
// Invariants:
//   - Address is non-empty and immutable
//   - RegistrationNumber is in [1, AuthoritySentinel], immutable once assigned;
//     only the authority itself carries the sentinel value
//   - Name is non-empty and at most 128 characters
//   - Status is either banned or permitted
type Agency struct {
	Address            id.AgencyID           `json:"address"`
	RegistrationNumber id.RegistrationNumber `json:"registration_number"`
	Name               string                `json:"name"`
	Status             AgencyStatus          `json:"status"`
	EnrolledAt         time.Time             `json:"enrolled_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

func (a *Agency) IsPermitted() bool {
	return a.Status == AgencyStatusPermitted
}

// CanPermit checks the transition to permitted status.
func (a *Agency) CanPermit() error {
	if !a.Status.CanTransitionTo(AgencyStatusPermitted) {
		return ErrAlreadyPermitted
	}
	return nil
}

// ApplyPermit transitions the agency to permitted status. Call CanPermit
// first to validate the transition.
func (a *Agency) ApplyPermit(now time.Time) {
	a.Status = AgencyStatusPermitted
	a.UpdatedAt = now
}

// CanRevoke checks the transition to banned status.
func (a *Agency) CanRevoke() error {
	if !a.Status.CanTransitionTo(AgencyStatusBanned) {
		return ErrAlreadyBanned
	}
	return nil
}

// ApplyRevoke transitions the agency to banned status. Call CanRevoke first
// to validate the transition.
func (a *Agency) ApplyRevoke(now time.Time) {
	a.Status = AgencyStatusBanned
	a.UpdatedAt = now
}

// NewAgency constructs a permitted agency. Enrollment grants permission
// immediately; revocation is a separate authority operation.
func NewAgency(address id.AgencyID, regnum id.RegistrationNumber, name string, now time.Time) (*Agency, error) {
	name = strings.TrimSpace(name)
	if address.IsZero() {
		return nil, ErrInvalidAddress
	}
	if name == "" || len(name) > 128 {
		return nil, ErrInvalidAgencyName
	}
	if regnum == 0 || regnum > id.AuthoritySentinel {
		return nil, ErrInvalidRegistration
	}
	return &Agency{
		Address:            address,
		RegistrationNumber: regnum,
		Name:               name,
		Status:             AgencyStatusPermitted,
		EnrolledAt:         now,
		UpdatedAt:          now,
	}, nil
}
