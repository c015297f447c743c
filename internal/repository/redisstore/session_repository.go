package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kisan-advisory-be/internal/repository/contract"
	"kisan-advisory-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "kisan:sess:"

// SessionRepository stores sessions as JSON strings with a Redis TTL so that
// several service replicas share the same conversation state.
type SessionRepository struct {
	rdb *redis.Client
	now func() time.Time
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{rdb: rdb, now: time.Now}
}

func sessionKey(userID string) string { return sessionKeyPrefix + userID }

type storedSession struct {
	Session    *store.Session `json:"session"`
	TTLSeconds int64          `json:"ttl_seconds"`
}

func (r *SessionRepository) Get(ctx context.Context, userID string) (*store.Session, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		// A corrupt record is treated like an absent one; the caller starts fresh.
		_ = r.rdb.Del(ctx, sessionKey(userID)).Err()
		return nil, nil
	}
	if stored.Session == nil {
		return nil, nil
	}
	if stored.Session.Expired(r.now(), time.Duration(stored.TTLSeconds)*time.Second) {
		return nil, nil
	}
	if stored.Session.CollectedQueries == nil {
		stored.Session.CollectedQueries = []store.QueryInput{}
	}
	return stored.Session, nil
}

func (r *SessionRepository) Put(ctx context.Context, session *store.Session, ttl time.Duration) error {
	payload, err := json.Marshal(storedSession{Session: session, TTLSeconds: int64(ttl / time.Second)})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.rdb.Set(ctx, sessionKey(session.UserID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, userID string) error {
	if err := r.rdb.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}
