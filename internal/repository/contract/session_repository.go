package contract

import (
	"context"
	"time"

	"kisan-advisory-be/pkg/store"
)

// SessionRepository persists conversation sessions keyed by the sender's channel address.
// Get returns (nil, nil) when the session is absent or has expired.
type SessionRepository interface {
	Get(ctx context.Context, userID string) (*store.Session, error)
	Put(ctx context.Context, session *store.Session, ttl time.Duration) error
	Delete(ctx context.Context, userID string) error
}
