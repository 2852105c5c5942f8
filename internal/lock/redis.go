package lock

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token, so an expired lock
// re-acquired by another run is left alone.
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// Redis is a lock shared by hosts through a Redis key with an expiry.
type Redis struct {
	client  redis.UniversalClient
	key     string
	token   string
	ttl     time.Duration
	timeout time.Duration
	poll    time.Duration
	logger  *slog.Logger
}

// NewRedis creates a Redis lock on key. ttl bounds how long a crashed run holds it.
func NewRedis(client redis.UniversalClient, key string, ttl, timeout time.Duration, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{
		client:  client,
		key:     key,
		token:   uuid.NewString(),
		ttl:     ttl,
		timeout: timeout,
		poll:    defaultPoll,
		logger:  logger,
	}
}

// Lock sets the key with SET NX PX, retrying until the timeout.
func (l *Redis) Lock(ctx context.Context) error {
	deadline := time.Now().Add(l.timeout)
	for {
		ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
		if err != nil {
			return errors.Wrap(err, "redis setnx")
		}
		if ok {
			l.logger.Debug("acquired redis lock", "key", l.key)
			return nil
		}
		if !time.Now().Before(deadline) {
			return errors.Wrapf(ErrLocked, "%s", l.key)
		}
		if err := wait(ctx, l.poll); err != nil {
			return err
		}
	}
}

// Unlock deletes the key if this Redis lock still owns it.
func (l *Redis) Unlock(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil {
		return errors.Wrap(err, "redis release")
	}
	if n == 0 {
		l.logger.Warn("redis lock expired before release", "key", l.key)
	}
	return nil
}
