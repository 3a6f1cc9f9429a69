package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() *RegisterSubjectRequest {
	return &RegisterSubjectRequest{
		SubjectID:   "S-1",
		ProfileData: []byte("profile-bytes"),
		Name:        "Jordan Doe",
		Gender:      "female",
		DateOfBirth: "1985-06-15",
	}
}

func TestNewSubject(t *testing.T) {
	now := time.Now()

	t.Run("constructs a permitted subject with score 1", func(t *testing.T) {
		subject, err := NewSubject(validRegistration(), now)
		require.NoError(t, err)
		assert.Equal(t, InitialVerificationScore, subject.VerificationScore)
		assert.Equal(t, SubjectStatusPermitted, subject.Status)
		assert.Equal(t, HashProfile([]byte("profile-bytes")), subject.ProfileHash)
		assert.Equal(t, GenderFemale, subject.Gender)
	})

	t.Run("normalizes whitespace and gender case", func(t *testing.T) {
		req := validRegistration()
		req.Name = "  Jordan Doe  "
		req.Gender = " Female "
		subject, err := NewSubject(req, now)
		require.NoError(t, err)
		assert.Equal(t, "Jordan Doe", subject.Name)
		assert.Equal(t, GenderFemale, subject.Gender)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		cases := []struct {
			name    string
			mutate  func(*RegisterSubjectRequest)
			wantErr error
		}{
			{"empty subject id", func(r *RegisterSubjectRequest) { r.SubjectID = "  " }, ErrInvalidSubjectID},
			{"empty profile data", func(r *RegisterSubjectRequest) { r.ProfileData = nil }, ErrEmptyProfileData},
			{"empty name", func(r *RegisterSubjectRequest) { r.Name = "" }, ErrInvalidSubjectName},
			{"oversized name", func(r *RegisterSubjectRequest) { r.Name = strings.Repeat("x", 129) }, ErrInvalidSubjectName},
			{"empty date of birth", func(r *RegisterSubjectRequest) { r.DateOfBirth = " " }, ErrInvalidDateOfBirth},
			{"unknown gender", func(r *RegisterSubjectRequest) { r.Gender = "unknown" }, ErrInvalidGender},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				req := validRegistration()
				tc.mutate(req)
				_, err := NewSubject(req, now)
				require.ErrorIs(t, err, tc.wantErr)
			})
		}
	})
}

func TestParseGender(t *testing.T) {
	for raw, want := range map[string]Gender{
		"male":    GenderMale,
		"FEMALE":  GenderFemale,
		" Other ": GenderOther,
	} {
		got, err := ParseGender(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseGender("n/a")
	require.ErrorIs(t, err, ErrInvalidGender)
}

func TestApplyAttestation(t *testing.T) {
	now := time.Now()
	subject, err := NewSubject(validRegistration(), now)
	require.NoError(t, err)

	assert.False(t, subject.ApplyAttestation(true, now))
	assert.Equal(t, 2, subject.VerificationScore)

	assert.False(t, subject.ApplyAttestation(false, now))
	assert.Equal(t, 1, subject.VerificationScore)

	// Reaching exactly zero is the ban trigger.
	assert.True(t, subject.ApplyAttestation(false, now))
	assert.Equal(t, 0, subject.VerificationScore)
}

func TestBanTransition(t *testing.T) {
	now := time.Now()
	subject, err := NewSubject(validRegistration(), now)
	require.NoError(t, err)

	require.NoError(t, subject.CanBan())
	subject.ApplyBan(now)
	assert.Equal(t, SubjectStatusBanned, subject.Status)
	assert.True(t, subject.IsBanned())

	require.ErrorIs(t, subject.CanBan(), ErrAlreadyBanned)
}

func TestProfileHashString(t *testing.T) {
	hash := HashProfile([]byte("profile-bytes"))
	assert.Len(t, hash.String(), 64)
	assert.Equal(t, HashProfile([]byte("profile-bytes")), hash)
	assert.NotEqual(t, HashProfile([]byte("other")), hash)
}
