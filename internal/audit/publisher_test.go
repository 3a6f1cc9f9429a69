package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingSink struct {
	mu      sync.Mutex
	events  []Event
	release chan struct{}
}

func newBlockingSink() *blockingSink {
	return &blockingSink{release: make(chan struct{})}
}

func (s *blockingSink) Append(_ context.Context, event Event) error {
	<-s.release
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *blockingSink) list() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event{}, s.events...)
}

func TestSyncEmitAppendsImmediately(t *testing.T) {
	store := NewInMemoryStore()
	publisher := NewPublisher(store)
	defer publisher.Close()

	err := publisher.Emit(context.Background(), Event{
		Action:    ActionSubjectRegistered,
		Caller:    "agency-a",
		SubjectID: "S-1",
	})
	require.NoError(t, err)

	events, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ActionSubjectRegistered, events[0].Action)
	assert.False(t, events[0].Timestamp.IsZero(), "emit should stamp missing timestamps")
}

func TestEmitKeepsExplicitTimestamp(t *testing.T) {
	store := NewInMemoryStore()
	publisher := NewPublisher(store)
	defer publisher.Close()

	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, publisher.Emit(context.Background(), Event{
		Action:    ActionSubjectBanned,
		SubjectID: "S-1",
		Timestamp: stamp,
	}))

	events, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, stamp, events[0].Timestamp)
}

func TestAsyncCloseDrainsBuffer(t *testing.T) {
	store := NewInMemoryStore()
	publisher := NewPublisher(store, WithAsyncBuffer(16))

	for i := 0; i < 5; i++ {
		require.NoError(t, publisher.Emit(context.Background(), Event{
			Action:    ActionAttestationPositive,
			SubjectID: "S-1",
		}))
	}
	publisher.Close()

	events, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

func TestAsyncFullBufferDropsInsteadOfBlocking(t *testing.T) {
	sink := newBlockingSink()
	publisher := NewPublisher(sink, WithAsyncBuffer(1))

	done := make(chan struct{})
	go func() {
		defer close(done)
		// The first event occupies the worker, the second fills the buffer,
		// everything after that must be dropped without stalling.
		for i := 0; i < 10; i++ {
			_ = publisher.Emit(context.Background(), Event{Action: ActionAttestationNegative})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("emit blocked on a full buffer")
	}

	close(sink.release)
	publisher.Close()
	assert.LessOrEqual(t, len(sink.list()), 3)
}

func TestCloseIsIdempotent(t *testing.T) {
	publisher := NewPublisher(NewInMemoryStore(), WithAsyncBuffer(4))
	publisher.Close()
	publisher.Close()
}

func TestListBySubject(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Append(ctx, Event{Action: ActionSubjectRegistered, SubjectID: "S-1"}))
	require.NoError(t, store.Append(ctx, Event{Action: ActionSubjectRegistered, SubjectID: "S-2"}))
	require.NoError(t, store.Append(ctx, Event{Action: ActionAttestationPositive, SubjectID: "S-1"}))

	events, err := store.ListBySubject(ctx, "S-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ActionSubjectRegistered, events[0].Action)
	assert.Equal(t, ActionAttestationPositive, events[1].Action)
}
