package redisstore

import (
	"context"
	"testing"
	"time"

	"kisan-advisory-be/pkg/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestSessionRepository_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestClient(t)
	repo := NewSessionRepository(rdb)

	s := store.NewSession("whatsapp:+911234567890", time.Now())
	s.State = store.StateCollectingQueries
	s.LockedCrop = "Guava"
	s.District = "Jaipur"
	s.Version = 4
	s.CollectedQueries = append(s.CollectedQueries, store.QueryInput{Kind: store.InputText, Text: "पत्तों पर धब्बे"})
	require.NoError(t, repo.Put(ctx, s, 5*time.Minute))
	assert.Equal(t, 5*time.Minute, mr.TTL(sessionKey(s.UserID)))

	got, err := repo.Get(ctx, s.UserID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, store.StateCollectingQueries, got.State)
	assert.Equal(t, "Guava", got.LockedCrop)
	assert.Equal(t, int64(4), got.Version)
	assert.Equal(t, s.CollectedQueries, got.CollectedQueries)
	assert.True(t, s.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, repo.Delete(ctx, s.UserID))
	got, err = repo.Get(ctx, s.UserID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionRepository_InactiveSessionIsAbsent(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestClient(t)
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := start
	repo := NewSessionRepository(rdb)
	repo.now = func() time.Time { return clock }

	s := store.NewSession("u1", start)
	s.State = store.StateAwaitingCrop
	require.NoError(t, repo.Put(ctx, s, 5*time.Minute))

	clock = start.Add(4 * time.Minute)
	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)

	// the key is still in redis but the inactivity window has passed
	clock = start.Add(6 * time.Minute)
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	mr.FastForward(6 * time.Minute)
	assert.False(t, mr.Exists(sessionKey("u1")))
	clock = start
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionRepository_CorruptRecordIsAbsent(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestClient(t)
	repo := NewSessionRepository(rdb)

	require.NoError(t, mr.Set(sessionKey("u1"), "{not json"))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists(sessionKey("u1")))
}

func TestSessionRepository_StoreDown(t *testing.T) {
	mr, rdb := newTestClient(t)
	repo := NewSessionRepository(rdb)
	mr.Close()

	_, err := repo.Get(context.Background(), "u1")
	assert.Error(t, err)
}

func TestLocker_SerialisesHolders(t *testing.T) {
	ctx := context.Background()
	_, rdb := newTestClient(t)
	locker := NewLocker(rdb, time.Second)

	unlock, err := locker.Lock(ctx, "u1")
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 60*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(waitCtx, "u1")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// another user is not blocked
	unlockOther, err := locker.Lock(ctx, "u2")
	require.NoError(t, err)
	unlockOther()

	unlock()
	unlock, err = locker.Lock(ctx, "u1")
	require.NoError(t, err)
	unlock()
}

func TestLocker_ReleaseOnlyDropsOwnLease(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestClient(t)
	locker := NewLocker(rdb, time.Second)
	key := lockKeyPrefix + "u1"

	unlockFirst, err := locker.Lock(ctx, "u1")
	require.NoError(t, err)

	// the first holder's lease runs out and a second holder takes over
	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists(key))
	unlockSecond, err := locker.Lock(ctx, "u1")
	require.NoError(t, err)

	unlockFirst()
	assert.True(t, mr.Exists(key))

	unlockSecond()
	assert.False(t, mr.Exists(key))
}
