package session

import (
	"context"
	"sync"
)

// Locker serialises read-modify-write of one user's session.
// The returned function releases the lock.
type Locker interface {
	Lock(ctx context.Context, userID string) (func(), error)
}

// KeyedLocker is an in-process Locker with one semaphore per user.
// Entries are dropped once no goroutine holds or waits on them.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sem  chan struct{}
	refs int
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyedLock)}
}

func (k *KeyedLocker) Lock(ctx context.Context, userID string) (func(), error) {
	k.mu.Lock()
	l, ok := k.locks[userID]
	if !ok {
		l = &keyedLock{sem: make(chan struct{}, 1)}
		k.locks[userID] = l
	}
	l.refs++
	k.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-l.sem
				k.release(userID, l)
			})
		}, nil
	case <-ctx.Done():
		k.release(userID, l)
		return nil, ctx.Err()
	}
}

func (k *KeyedLocker) release(userID string, l *keyedLock) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, userID)
	}
}

// size is used by tests to check that idle entries are released.
func (k *KeyedLocker) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
