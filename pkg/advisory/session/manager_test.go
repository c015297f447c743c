package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"kisan-advisory-be/internal/pkg/logger"
	"kisan-advisory-be/internal/repository/memory"
	"kisan-advisory-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenRepo struct{}

func (brokenRepo) Get(context.Context, string) (*store.Session, error) {
	return nil, errors.New("connection refused")
}
func (brokenRepo) Put(context.Context, *store.Session, time.Duration) error {
	return errors.New("connection refused")
}
func (brokenRepo) Delete(context.Context, string) error { return errors.New("connection refused") }

func newTestManager(clock *time.Time) *Manager {
	repo := memory.NewSessionRepository().WithClock(func() time.Time { return *clock })
	m := NewManager(repo, NewKeyedLocker(), Options{TTL: 5 * time.Minute, ProcessingTTL: 15 * time.Minute}, logger.NewNopLogger())
	return m.WithClock(func() time.Time { return *clock })
}

func TestTransact_PersistsOnlyWhenChanged(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	m := newTestManager(&clock)

	_, err := m.Transact(ctx, "u1", func(s *store.Session) (bool, error) {
		s.State = store.StateAwaitingDistrict
		return false, nil
	})
	require.NoError(t, err)

	got, err := m.Transact(ctx, "u1", func(s *store.Session) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Equal(t, store.StateGreeting, got.State, "unchanged mutation must not be saved")

	_, err = m.Transact(ctx, "u1", func(s *store.Session) (bool, error) {
		s.State = store.StateAwaitingDistrict
		return true, nil
	})
	require.NoError(t, err)

	got, err = m.Transact(ctx, "u1", func(s *store.Session) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Equal(t, store.StateAwaitingDistrict, got.State)
}

func TestTransact_ExpiredSessionStartsFresh(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	m := newTestManager(&clock)

	_, err := m.Transact(ctx, "u1", func(s *store.Session) (bool, error) {
		s.State = store.StateCollectingQueries
		s.LockedCrop = "Wheat"
		return true, nil
	})
	require.NoError(t, err)

	clock = clock.Add(5*time.Minute + time.Second)

	got, err := m.Transact(ctx, "u1", func(s *store.Session) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Equal(t, store.StateGreeting, got.State)
	assert.Empty(t, got.LockedCrop)
}

func TestTransact_ProcessingUsesLongerWindow(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	m := newTestManager(&clock)

	_, err := m.Transact(ctx, "u1", func(s *store.Session) (bool, error) {
		s.State = store.StateProcessing
		return true, nil
	})
	require.NoError(t, err)

	clock = clock.Add(10 * time.Minute)
	got, err := m.Transact(ctx, "u1", func(s *store.Session) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Equal(t, store.StateProcessing, got.State)
}

func TestTransact_StoreUnavailableDegradesToGreeting(t *testing.T) {
	m := NewManager(brokenRepo{}, NewKeyedLocker(), Options{}, logger.NewNopLogger())

	got, err := m.Transact(context.Background(), "u1", func(s *store.Session) (bool, error) {
		assert.Equal(t, store.StateGreeting, s.State)
		s.State = store.StateAwaitingMenuChoice
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, store.StateAwaitingMenuChoice, got.State)
}

func TestTransact_SerialisesSameUser(t *testing.T) {
	ctx := context.Background()
	clock := time.Now()
	m := newTestManager(&clock)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Transact(ctx, "u1", func(s *store.Session) (bool, error) {
				s.Version++
				return true, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := m.Transact(ctx, "u1", func(s *store.Session) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.EqualValues(t, 50, got.Version)
}

func TestTransact_BusyWhenLockHeld(t *testing.T) {
	clock := time.Now()
	repo := memory.NewSessionRepository()
	locker := NewKeyedLocker()
	m := NewManager(repo, locker, Options{LockTimeout: 20 * time.Millisecond}, logger.NewNopLogger()).
		WithClock(func() time.Time { return clock })

	unlock, err := locker.Lock(context.Background(), "u1")
	require.NoError(t, err)
	defer unlock()

	_, err = m.Transact(context.Background(), "u1", func(s *store.Session) (bool, error) { return true, nil })
	assert.ErrorIs(t, err, ErrBusy)
}

func TestKeyedLocker_ReleasesIdleEntries(t *testing.T) {
	l := NewKeyedLocker()
	unlock, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 1, l.size())
	unlock()
	unlock()
	assert.Equal(t, 0, l.size())
}
