package attestation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "attestry/pkg/domain"
)

func TestHasOnEmptyLog(t *testing.T) {
	store := NewInMemory()
	ok, err := store.Has(context.Background(), "S-1", "agency-a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAppendAndHas(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	require.NoError(t, store.Append(ctx, "S-1", "agency-a"))

	ok, err := store.Has(ctx, "S-1", "agency-a")
	require.NoError(t, err)
	assert.True(t, ok)

	// Other subjects and agencies are unaffected.
	ok, err = store.Has(ctx, "S-2", "agency-a")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = store.Has(ctx, "S-1", "agency-b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListPreservesAttestationOrder(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	require.NoError(t, store.Append(ctx, "S-1", "agency-c"))
	require.NoError(t, store.Append(ctx, "S-1", "agency-a"))
	require.NoError(t, store.Append(ctx, "S-1", "agency-b"))

	attestors, err := store.ListBySubject(ctx, "S-1")
	require.NoError(t, err)
	assert.Equal(t, []id.AgencyID{"agency-c", "agency-a", "agency-b"}, attestors)
}

func TestListUnknownSubjectIsEmpty(t *testing.T) {
	store := NewInMemory()
	attestors, err := store.ListBySubject(context.Background(), "S-x")
	require.NoError(t, err)
	assert.Empty(t, attestors)
}
