// Package lock keeps two runs for the same provider from overlapping.
package lock

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gosimple/slug"
	"github.com/redis/go-redis/v9"

	"github.com/wacksbywarby/wacks/internal/config"
)

// ErrLocked is returned when the lock is still held by another run after the timeout.
var ErrLocked = errors.New("lock held by another run")

const defaultPoll = 100 * time.Millisecond

// Locker is a cooperative, non-reentrant lock.
type Locker interface {
	// Lock blocks until the lock is held, the timeout passes (ErrLocked) or ctx is done.
	Lock(ctx context.Context) error
	// Unlock releases a held lock.
	Unlock(ctx context.Context) error
}

// Key returns the lock name for an instance and provider.
func Key(instance, provider string) string {
	return "wacks:lock:" + slug.Make(instance+" "+provider)
}

// New builds the Locker selected by cfg.Backend.
func New(cfg config.LockConfig, key string, logger *slog.Logger) (Locker, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case "", config.LockBackendFile:
		return NewFile(cfg.Path, cfg.Timeout, logger), nil
	case config.LockBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewRedis(client, key, cfg.TTL, cfg.Timeout, logger), nil
	default:
		return nil, errors.Newf("unknown lock backend %q", cfg.Backend)
	}
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
