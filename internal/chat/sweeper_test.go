package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendazap/agendazap/pkg/logging"
)

func TestSweeperExpiresIdleSessionsOnce(t *testing.T) {
	store := NewMemoryStore()
	sender := &recorderMessenger{}
	sweeper := NewSweeper(store, sender, nil, logging.New("error"))

	base := time.Date(2025, 12, 18, 8, 0, 0, 0, time.UTC)
	sweeper.now = func() time.Time { return base }

	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, "user-1", &SideSession{LastContactAt: base.Add(-SessionIdleAfter - time.Minute)}))
	require.NoError(t, store.SaveSession(ctx, "user-2", &SideSession{LastContactAt: base}))

	sweeper.Sweep(ctx)

	sent := sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "user-1", sent[0].to)
	assert.Equal(t, msgSideIdle, sent[0].text)

	// The expired session is gone: sweeping again sends nothing.
	sweeper.Sweep(ctx)
	assert.Len(t, sender.messages(), 1)
}

func TestSweeperExpiresIdleStatesSilently(t *testing.T) {
	store := NewMemoryStore()
	sender := &recorderMessenger{}
	sweeper := NewSweeper(store, sender, nil, logging.New("error"))

	base := time.Date(2025, 12, 18, 8, 0, 0, 0, time.UTC)
	sweeper.now = func() time.Time { return base }

	ctx := context.Background()
	require.NoError(t, store.SaveState(ctx, "user-1", &State{Step: StepAwaitDate, LastContactAt: base.Add(-StateIdleAfter - time.Minute)}))

	sweeper.Sweep(ctx)

	st, err := store.State(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, st)
	assert.Empty(t, sender.messages(), "state expiry never messages the requester")
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	store := NewMemoryStore()
	sweeper := NewSweeper(store, &recorderMessenger{}, nil, logging.New("error"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
}
