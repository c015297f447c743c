package session

import (
	"context"
	"errors"
	"time"

	"kisan-advisory-be/internal/pkg/logger"
	"kisan-advisory-be/internal/repository/contract"
	"kisan-advisory-be/pkg/errorsx"
	"kisan-advisory-be/pkg/store"
)

const logModule = "session"

// ErrBusy is returned when the user's session lock could not be taken in time.
var ErrBusy = errors.New("session busy")

// Mutation changes a loaded session. It returns true when the session moved
// (state transition or slot change) and must be persisted with a fresh TTL.
type Mutation func(s *store.Session) (bool, error)

type Options struct {
	TTL           time.Duration
	ProcessingTTL time.Duration
	LockTimeout   time.Duration
}

// Manager owns session persistence. Locking spans only load-mutate-save,
// never an outbound call.
type Manager struct {
	repo   contract.SessionRepository
	locker Locker
	opts   Options
	now    func() time.Time
	logger logger.ILogger
}

func NewManager(repo contract.SessionRepository, locker Locker, opts Options, log logger.ILogger) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.ProcessingTTL < opts.TTL {
		opts.ProcessingTTL = opts.TTL
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = 3 * time.Second
	}
	return &Manager{repo: repo, locker: locker, opts: opts, now: time.Now, logger: log}
}

// WithClock overrides the clock (tests).
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Now returns the manager's clock reading.
func (m *Manager) Now() time.Time { return m.now() }

// Transact loads the user's session under the user lock, applies fn and saves
// the result when fn reports a change. It returns a copy of the session after fn.
//
// Store failures never fail the request: an unreadable session becomes a fresh
// GREETING session and a failed save is only logged.
func (m *Manager) Transact(ctx context.Context, userID string, fn Mutation) (*store.Session, error) {
	lockCtx, cancel := context.WithTimeout(ctx, m.opts.LockTimeout)
	unlock, err := m.locker.Lock(lockCtx, userID)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrBusy
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		m.logger.Warn(logModule, "Session lock unavailable, continuing stateless", map[string]interface{}{
			"user_id": userID,
			"reason":  errorsx.ReasonStoreUnavailable,
			"error":   err.Error(),
		})
		s := store.NewSession(userID, m.now())
		if _, err := fn(s); err != nil {
			return nil, err
		}
		return s, nil
	}
	defer unlock()

	s := m.load(ctx, userID)

	changed, err := fn(s)
	if err != nil {
		return nil, err
	}
	if changed {
		s.LastActivityAt = m.now()
		if err := m.repo.Put(ctx, s, m.ttlFor(s)); err != nil {
			m.logger.Warn(logModule, "Failed to persist session", map[string]interface{}{
				"user_id": userID,
				"state":   s.State,
				"reason":  errorsx.ReasonStoreUnavailable,
				"error":   err.Error(),
			})
		}
	}
	return s.Clone(), nil
}

// Delete removes the user's session (explicit completion).
func (m *Manager) Delete(ctx context.Context, userID string) error {
	return m.repo.Delete(ctx, userID)
}

func (m *Manager) load(ctx context.Context, userID string) *store.Session {
	now := m.now()
	s, err := m.repo.Get(ctx, userID)
	if err != nil {
		m.logger.Warn(logModule, "Session store unavailable, starting fresh", map[string]interface{}{
			"user_id": userID,
			"reason":  errorsx.ReasonStoreUnavailable,
			"error":   err.Error(),
		})
		return store.NewSession(userID, now)
	}
	if s == nil || s.Expired(now, m.ttlFor(s)) {
		fresh := store.NewSession(userID, now)
		if s != nil {
			// Version keeps counting so an in-flight pipeline from the expired
			// session can never match the new one.
			fresh.Version = s.Version + 1
		}
		return fresh
	}
	return s
}

func (m *Manager) ttlFor(s *store.Session) time.Duration {
	if s.State == store.StateProcessing {
		return m.opts.ProcessingTTL
	}
	return m.opts.TTL
}
