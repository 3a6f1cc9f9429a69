package models

import (
	dErrors "attestry/pkg/domain-errors"
)

// Named failures of the registry. Every precondition failure is detected
// before any mutation and surfaced as one of these, so callers can
// distinguish kinds with errors.Is or by code.
var (
	// Authorization failures.
	ErrNotOwner           = dErrors.New(dErrors.CodeForbidden, "caller is not the authority")
	ErrNotPermittedAgency = dErrors.New(dErrors.CodeForbidden, "caller is not a permitted agency")

	// Conflicts with existing state.
	ErrAlreadyEnrolled      = dErrors.New(dErrors.CodeConflict, "agency already enrolled")
	ErrAlreadyPermitted     = dErrors.New(dErrors.CodeConflict, "agency already permitted")
	ErrAlreadyBanned        = dErrors.New(dErrors.CodeConflict, "already banned")
	ErrAlreadyRegistered    = dErrors.New(dErrors.CodeConflict, "subject already registered")
	ErrDuplicateAttestation = dErrors.New(dErrors.CodeConflict, "agency already attested this subject")
	// ErrSubjectBanned rejects attestations on a banned subject. There is no
	// unban path, so letting the score drift below zero serves nothing.
	ErrSubjectBanned = dErrors.New(dErrors.CodeConflict, "subject is banned")

	// Validation failures.
	ErrInvalidRegistration = dErrors.New(dErrors.CodeValidation, "generated registration number is reserved")
	ErrInvalidAddress      = dErrors.New(dErrors.CodeInvariantViolation, "agency address cannot be empty")
	ErrInvalidAgencyName   = dErrors.New(dErrors.CodeInvariantViolation, "agency name must be 1-128 characters")
	ErrInvalidSubjectID    = dErrors.New(dErrors.CodeValidation, "subject id cannot be empty")
	ErrEmptyProfileData    = dErrors.New(dErrors.CodeValidation, "profile data cannot be empty")
	ErrInvalidSubjectName  = dErrors.New(dErrors.CodeValidation, "subject name must be 1-128 characters")
	ErrInvalidDateOfBirth  = dErrors.New(dErrors.CodeValidation, "date of birth cannot be empty")
	ErrInvalidGender       = dErrors.New(dErrors.CodeValidation, "gender must be male, female or other")
)
