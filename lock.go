package lotofacil

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Locker serializes generations of one session across processes.
// Acquire returns a release function that must be called once the session
// history has been updated.
type Locker interface {
	Acquire(ctx context.Context, sessionID string) (release func(context.Context) error, err error)
}

// releaseLockScript ensures only the lock owner can release the lock, so an
// expired holder never deletes a lock that another instance acquired since.
const releaseLockScript = `
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`

// RedisLocker implements Locker with Redis SET NX and a Lua release script
type RedisLocker struct {
	redisClient   *redis.Client
	timeout       time.Duration
	expiration    time.Duration
	retryInterval time.Duration
	valueFunc     func() string
}

// NewRedisLocker creates a session locker; zero durations use the defaults
func NewRedisLocker(redisClient *redis.Client, timeout, expiration time.Duration) *RedisLocker {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	if expiration <= 0 {
		expiration = DefaultLockExpiration
	}
	return &RedisLocker{
		redisClient:   redisClient,
		timeout:       timeout,
		expiration:    expiration,
		retryInterval: DefaultLockRetryInterval,
		valueFunc:     generateLockValue,
	}
}

// lockKey generates the Redis key for a session lock
func lockKey(sessionID string) string { return LockKeyPrefix + sessionID }

// Acquire polls SET NX until the lock is taken or the timeout elapses
func (l *RedisLocker) Acquire(ctx context.Context, sessionID string) (func(context.Context) error, error) {
	if sessionID == "" {
		return nil, ErrInvalidParameters.WithDetails("empty session id")
	}

	key := lockKey(sessionID)
	value := l.valueFunc()

	timeoutCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		acquired, err := l.redisClient.SetNX(timeoutCtx, key, value, l.expiration).Result()
		if err != nil && !IsRetryableError(err) {
			return nil, ErrLockAcquisitionFailed.WithSessionID(sessionID).WithCause(err)
		}
		if acquired {
			return func(releaseCtx context.Context) error {
				return l.release(releaseCtx, key, value)
			}, nil
		}

		select {
		case <-timeoutCtx.Done():
			return nil, ErrLockAcquisitionFailed.
				WithSessionID(sessionID).
				WithDetails("timed out waiting for session lock").
				WithCause(timeoutCtx.Err())
		case <-ticker.C:
		}
	}
}

// release deletes the lock only when it still holds value
func (l *RedisLocker) release(ctx context.Context, key, value string) error {
	result, err := l.redisClient.Eval(ctx, releaseLockScript, []string{key}, value).Int64()
	if err != nil {
		return ErrLockReleaseFailure.WithDetails(key).WithCause(err)
	}
	if result == 0 {
		return ErrLockReleaseFailure.WithDetails("lock expired or held by another owner: " + key)
	}
	return nil
}
