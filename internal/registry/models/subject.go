package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	id "attestry/pkg/domain"
)

// Gender is the declared gender on a subject identity record.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender normalizes a free-form gender value into the enum.
func ParseGender(value string) (Gender, error) {
	switch Gender(strings.ToLower(strings.TrimSpace(value))) {
	case GenderMale:
		return GenderMale, nil
	case GenderFemale:
		return GenderFemale, nil
	case GenderOther:
		return GenderOther, nil
	default:
		return "", ErrInvalidGender
	}
}

// SubjectStatus is the trust state of a subject record.
type SubjectStatus string

const (
	SubjectStatusPermitted SubjectStatus = "permitted"
	SubjectStatusBanned    SubjectStatus = "banned"
)

// ProfileHash is the SHA-256 digest of a subject's profile image data.
type ProfileHash [sha256.Size]byte

func (h ProfileHash) String() string { return hex.EncodeToString(h[:]) }

// HashProfile digests raw profile data into a ProfileHash.
func HashProfile(data []byte) ProfileHash {
	return sha256.Sum256(data)
}

// InitialVerificationScore is granted by the registering agency's implicit
// first vouch.
const InitialVerificationScore = 1

// Subject is the aggregate for an identity record under attestation.
//
// Invariants:
//   - ID is non-empty and immutable; exactly one record exists per ID
//   - ProfileHash is the digest of non-empty profile data
//   - VerificationScore starts at 1 and moves by exactly 1 per attestation
//   - Status transitions permitted -> banned only, triggered by the score
//     reaching exactly 0; there is no way back, a banned ID is retired
type Subject struct {
	ID                id.SubjectID  `json:"id"`
	ProfileHash       ProfileHash   `json:"profile_hash"`
	Name              string        `json:"name"`
	Gender            Gender        `json:"gender"`
	DateOfBirth       string        `json:"date_of_birth"`
	VerificationScore int           `json:"verification_score"`
	Status            SubjectStatus `json:"status"`
	RegisteredAt      time.Time     `json:"registered_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

func (s *Subject) IsBanned() bool {
	return s.Status == SubjectStatusBanned
}

// ApplyAttestation moves the verification score by one in the given
// direction and reports whether the score collapsed to zero, which is the
// sole trigger for the ban transition.
func (s *Subject) ApplyAttestation(valid bool, now time.Time) (collapsed bool) {
	if valid {
		s.VerificationScore++
	} else {
		s.VerificationScore--
	}
	s.UpdatedAt = now
	return s.VerificationScore == 0
}

// CanBan checks the transition to banned status.
func (s *Subject) CanBan() error {
	if s.Status == SubjectStatusBanned {
		return ErrAlreadyBanned
	}
	return nil
}

// ApplyBan transitions the subject to banned status. The assignment here is
// load-bearing: the ban must be visible on the stored record, not just
// implied by the zero score.
func (s *Subject) ApplyBan(now time.Time) {
	s.Status = SubjectStatusBanned
	s.UpdatedAt = now
}

// NewSubject constructs a subject record from validated registration input.
func NewSubject(req *RegisterSubjectRequest, now time.Time) (*Subject, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	gender, err := ParseGender(req.Gender)
	if err != nil {
		return nil, err
	}
	return &Subject{
		ID:                req.SubjectID,
		ProfileHash:       HashProfile(req.ProfileData),
		Name:              req.Name,
		Gender:            gender,
		DateOfBirth:       req.DateOfBirth,
		VerificationScore: InitialVerificationScore,
		Status:            SubjectStatusPermitted,
		RegisteredAt:      now,
		UpdatedAt:         now,
	}, nil
}
