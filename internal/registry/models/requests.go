package models

import (
	"strings"

	id "attestry/pkg/domain"
)

// RegisterSubjectRequest carries the input of a subject registration.
// ProfileData is the raw profile image; only its digest is retained.
type RegisterSubjectRequest struct {
	SubjectID   id.SubjectID
	ProfileData []byte
	Name        string
	Gender      string
	DateOfBirth string
}

// Normalize trims free-form fields in place.
func (r *RegisterSubjectRequest) Normalize() {
	r.SubjectID = id.SubjectID(strings.TrimSpace(string(r.SubjectID)))
	r.Name = strings.TrimSpace(r.Name)
	r.Gender = strings.TrimSpace(r.Gender)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
}

// Validate checks field presence and bounds. A record without profile content
// is meaningless, so empty profile data is rejected up front.
func (r *RegisterSubjectRequest) Validate() error {
	if r.SubjectID.IsZero() {
		return ErrInvalidSubjectID
	}
	if len(r.ProfileData) == 0 {
		return ErrEmptyProfileData
	}
	if r.Name == "" || len(r.Name) > 128 {
		return ErrInvalidSubjectName
	}
	if r.DateOfBirth == "" {
		return ErrInvalidDateOfBirth
	}
	return nil
}
