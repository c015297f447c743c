package memory

import (
	"context"
	"time"

	"kisan-advisory-be/internal/repository/contract"
	"kisan-advisory-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
	now   func() time.Time
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository keeps sessions in process memory. Items carry their own TTL;
// expired entries are purged every minute.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		cache: cache.New(5*time.Minute, time.Minute),
		now:   time.Now,
	}
}

// WithClock overrides the clock used for the inactivity check.
func (r *SessionRepository) WithClock(now func() time.Time) *SessionRepository {
	r.now = now
	return r
}

func (r *SessionRepository) Put(_ context.Context, session *store.Session, ttl time.Duration) error {
	r.cache.Set(session.UserID, storedSession{session: session.Clone(), ttl: ttl}, ttl)
	return nil
}

func (r *SessionRepository) Get(_ context.Context, userID string) (*store.Session, error) {
	x, found := r.cache.Get(userID)
	if !found {
		return nil, nil
	}
	stored := x.(storedSession)
	if stored.session.Expired(r.now(), stored.ttl) {
		r.cache.Delete(userID)
		return nil, nil
	}
	return stored.session.Clone(), nil
}

func (r *SessionRepository) Delete(_ context.Context, userID string) error {
	r.cache.Delete(userID)
	return nil
}

type storedSession struct {
	session *store.Session
	ttl     time.Duration
}
