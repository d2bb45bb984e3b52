package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 10 * time.Second

// ErrLockHeld is returned when another holder owns the lock.
var ErrLockHeld = errors.New("lock held by another owner")

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// Locker hands out SETNX-based locks keyed by arbitrary strings.
type Locker struct {
	store lockStore
	ttl   time.Duration
}

// NewLocker constructs a Locker. A non-positive ttl falls back to the default.
func NewLocker(store lockStore, ttl time.Duration) (*Locker, error) {
	if store == nil {
		return nil, errors.New("redis store required for locker")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Locker{store: store, ttl: ttl}, nil
}

// Acquire tries to own key. The returned release func only deletes the key if
// this caller still owns it. ErrLockHeld reports contention.
func (l *Locker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	owner := uuid.NewString()
	ok, err := l.store.SetNX(ctx, key, owner, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("setnx: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func(ctx context.Context) error {
		return l.release(ctx, key, owner)
	}, nil
}

func (l *Locker) release(ctx context.Context, key, owner string) error {
	value, err := l.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != owner {
		return nil
	}
	if err := l.store.Del(ctx, key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	return nil
}
