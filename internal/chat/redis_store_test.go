package chat

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, nil), mr
}

func TestRedisStoreStateRoundTrip(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	st, err := store.State(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, st)

	saved := &State{Step: StepAwaitTime, Date: "2025-12-25", LastContactAt: time.Now().UTC()}
	require.NoError(t, store.SaveState(ctx, "user-1", saved))

	st, err = store.State(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, StepAwaitTime, st.Step)
	assert.Equal(t, "2025-12-25", st.Date)

	// Saves carry the idle TTL so the server expires abandoned states.
	ttl := mr.TTL(stateKeyPrefix + "user-1")
	assert.Equal(t, StateIdleAfter, ttl)

	require.NoError(t, store.ClearState(ctx, "user-1"))
	st, err = store.State(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestRedisStoreStateExpiresByTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveState(ctx, "user-1", &State{Step: StepAwaitDate}))
	mr.FastForward(StateIdleAfter + time.Second)

	st, err := store.State(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestRedisStoreRecentBookingMarker(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	ok, err := store.ConsumeRecentBooking(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.MarkRecentBooking(ctx, "user-1"))

	ok, err = store.ConsumeRecentBooking(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.ConsumeRecentBooking(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.MarkRecentBooking(ctx, "user-1"))
	mr.FastForward(RecentBookingTTL + time.Second)

	ok, err = store.ConsumeRecentBooking(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStoreSessionSweep(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()
	base := time.Date(2025, 12, 18, 8, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveSession(ctx, "idle", &SideSession{LastContactAt: base.Add(-SessionIdleAfter - time.Minute)}))
	require.NoError(t, store.SaveSession(ctx, "active", &SideSession{LastContactAt: base}))

	ids, err := store.ExpireSessions(ctx, base.Add(-SessionIdleAfter))
	require.NoError(t, err)
	assert.Equal(t, []string{"idle"}, ids)

	sess, err := store.Session(ctx, "idle")
	require.NoError(t, err)
	assert.Nil(t, sess)

	sess, err = store.Session(ctx, "active")
	require.NoError(t, err)
	assert.NotNil(t, sess)

	// Nothing left to expire: a second sweep returns nothing.
	ids, err = store.ExpireSessions(ctx, base.Add(-SessionIdleAfter))
	require.NoError(t, err)
	assert.Empty(t, ids)
}
