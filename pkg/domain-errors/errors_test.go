package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamedErrorsMatchUnderErrorsIs(t *testing.T) {
	sentinel := New(CodeConflict, "already enrolled")

	assert.True(t, errors.Is(New(CodeConflict, "already enrolled"), sentinel))
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", sentinel), sentinel))
	assert.False(t, errors.Is(New(CodeConflict, "something else"), sentinel))
	assert.False(t, errors.Is(New(CodeNotFound, "already enrolled"), sentinel))
}

func TestHasCodeWalksTheChain(t *testing.T) {
	cause := New(CodeNotFound, "agency missing")
	wrapped := Wrap(cause, CodeInternal, "failed to load agency")

	assert.True(t, HasCode(wrapped, CodeInternal))
	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(wrapped, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeOf(New(CodeValidation, "bad input")))
	assert.Equal(t, CodeInternal, CodeOf(Wrap(New(CodeNotFound, "x"), CodeInternal, "y")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "store unavailable")

	assert.Contains(t, err.Error(), "store unavailable")
	assert.Contains(t, err.Error(), "connection refused")
	require.ErrorIs(t, err, cause)
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:         http.StatusBadRequest,
		CodeInvariantViolation: http.StatusBadRequest,
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeForbidden:          http.StatusForbidden,
		CodeNotFound:           http.StatusNotFound,
		CodeConflict:           http.StatusConflict,
		CodeInternal:           http.StatusInternalServerError,
		Code("unknown"):        http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
