package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreStateRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	st, err := store.State(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, st)

	require.NoError(t, store.SaveState(ctx, "user-1", &State{Step: StepAwaitDate, Date: "2025-12-25"}))

	st, err = store.State(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, StepAwaitDate, st.Step)
	assert.Equal(t, "2025-12-25", st.Date)

	// The returned state is a copy; mutating it does not leak back.
	st.Step = StepAwaitName
	again, err := store.State(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, StepAwaitDate, again.Step)

	require.NoError(t, store.ClearState(ctx, "user-1"))
	st, err = store.State(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestMemoryStoreRecentBookingMarker(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 12, 18, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ok, err := store.ConsumeRecentBooking(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.MarkRecentBooking(ctx, "user-1"))

	now = now.Add(30 * time.Second)
	ok, err = store.ConsumeRecentBooking(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Consumed: a second read finds nothing.
	ok, err = store.ConsumeRecentBooking(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreRecentBookingMarkerExpires(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 12, 18, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.MarkRecentBooking(ctx, "user-1"))

	now = now.Add(RecentBookingTTL + time.Second)
	ok, err := store.ConsumeRecentBooking(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 12, 18, 8, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveState(ctx, "stale", &State{Step: StepAwaitDate, LastContactAt: base.Add(-StateIdleAfter - time.Minute)}))
	require.NoError(t, store.SaveState(ctx, "fresh", &State{Step: StepAwaitDate, LastContactAt: base}))
	require.NoError(t, store.SaveSession(ctx, "idle", &SideSession{LastContactAt: base.Add(-SessionIdleAfter - time.Minute)}))
	require.NoError(t, store.SaveSession(ctx, "active", &SideSession{LastContactAt: base}))

	expired, err := store.ExpireStates(ctx, base.Add(-StateIdleAfter))
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	st, err := store.State(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, st)

	ids, err := store.ExpireSessions(ctx, base.Add(-SessionIdleAfter))
	require.NoError(t, err)
	assert.Equal(t, []string{"idle"}, ids)

	sess, err := store.Session(ctx, "active")
	require.NoError(t, err)
	assert.NotNil(t, sess)
}
