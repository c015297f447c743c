package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "kisan:lock:"

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0`)

// Locker serialises session read-modify-write across replicas with SET NX PX.
type Locker struct {
	rdb      *redis.Client
	lease    time.Duration
	interval time.Duration
}

func NewLocker(rdb *redis.Client, lease time.Duration) *Locker {
	if lease <= 0 {
		lease = 10 * time.Second
	}
	return &Locker{rdb: rdb, lease: lease, interval: 25 * time.Millisecond}
}

// Lock blocks until the user's lock is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, userID string) (func(), error) {
	key := lockKeyPrefix + userID
	token := uuid.NewString()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.lease).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("redis lock: %w", err)
		}
		if ok {
			return func() {
				// Release with a fresh context: the caller's may already be cancelled.
				rctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = releaseScript.Run(rctx, l.rdb, []string{key}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.interval):
		}
	}
}
