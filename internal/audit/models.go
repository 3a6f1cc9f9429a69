package audit

import (
	"time"

	id "attestry/pkg/domain"
)

// Action names the registry notifications. These are the observable side
// effects of every successful mutation; delivery beyond in-process emission
// is best effort.
type Action string

const (
	ActionAgencyEnrolled          Action = "agency.enrolled"
	ActionAgencyPermissionChanged Action = "agency.permission_changed"
	ActionSubjectRegistered       Action = "subject.registered"
	ActionAttestationPositive     Action = "attestation.positive"
	ActionAttestationNegative     Action = "attestation.negative"
	ActionSubjectBanned           Action = "subject.banned"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp          time.Time             `json:"timestamp"`
	Action             Action                `json:"action"`
	Caller             id.AgencyID           `json:"caller,omitempty"`
	AgencyID           id.AgencyID           `json:"agency_id,omitempty"`
	SubjectID          id.SubjectID          `json:"subject_id,omitempty"`
	RegistrationNumber id.RegistrationNumber `json:"registration_number,omitempty"`
	Detail             string                `json:"detail,omitempty"`
	RequestID          string                `json:"request_id,omitempty"`
}
