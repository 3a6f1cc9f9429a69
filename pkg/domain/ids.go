// Package domain defines the identifier types shared across the registry.
//
// Identifiers are modeled as opaque typed strings so services and stores
// cannot accidentally swap an agency address for a subject key. Their format
// is controlled by the callers: agency addresses come from the authentication
// layer (JWT "sub"), subject IDs are national-ID style keys supplied by the
// enrolling agency.
package domain

// AgencyID is the authenticated caller address of an agency (or the
// authority). It is assigned by the identity provider, never minted here.
type AgencyID string

// SubjectID is the key of a subject identity record, e.g. a national ID
// number. Exactly one subject record may exist per SubjectID.
type SubjectID string

// RegistrationNumber is the unique number minted for an agency at enrollment.
// It is immutable once assigned and always in [1, AuthoritySentinel].
type RegistrationNumber uint64

// AuthoritySentinel is the reserved registration number of the authority
// itself. The generator never mints it for a regular agency.
const AuthoritySentinel RegistrationNumber = 1<<63 - 1

func (a AgencyID) String() string  { return string(a) }
func (s SubjectID) String() string { return string(s) }

// IsZero reports whether the ID is unset.
func (a AgencyID) IsZero() bool  { return a == "" }
func (s SubjectID) IsZero() bool { return s == "" }
