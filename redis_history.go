package lotofacil

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisHistory stores one session's history as a Redis list so that several
// instances serving the same session share it. The key expires after ttl of
// inactivity, which ends the session; nothing outlives it.
type RedisHistory struct {
	redisClient    *redis.Client
	key            string
	ttl            time.Duration
	logger         Logger
	retryAttempts  int
	retryBaseDelay time.Duration
}

// NewRedisHistory creates a history bound to sessionID
func NewRedisHistory(redisClient *redis.Client, sessionID string, ttl time.Duration, logger Logger) (*RedisHistory, error) {
	if redisClient == nil || sessionID == "" {
		return nil, ErrInvalidParameters.WithDetails("redis history requires a client and a session id")
	}
	if ttl <= 0 {
		ttl = DefaultHistoryTTL
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	return &RedisHistory{
		redisClient:    redisClient,
		key:            historyKey(sessionID),
		ttl:            ttl,
		logger:         logger,
		retryAttempts:  DefaultRedisMaxRetries,
		retryBaseDelay: 50 * time.Millisecond,
	}, nil
}

// historyKey generates the Redis key for a session history
func historyKey(sessionID string) string { return HistoryKeyPrefix + sessionID }

// Key returns the Redis key backing this history
func (h *RedisHistory) Key() string { return h.key }

// Record appends numbers to the session list and refreshes its TTL
func (h *RedisHistory) Record(ctx context.Context, numbers []int) error {
	data, err := json.Marshal(numbers)
	if err != nil {
		return ErrHistoryUnavailable.WithDetails("serialize combination").WithCause(err)
	}

	// RPUSH is not idempotent: once it succeeds only EXPIRE may be retried
	err = h.executeWithRetry(ctx, "record", func() error {
		return h.redisClient.RPush(ctx, h.key, string(data)).Err()
	})
	if err != nil {
		return ErrHistoryUnavailable.WithDetails(fmt.Sprintf("record to key=%s", h.key)).WithCause(err)
	}

	err = h.executeWithRetry(ctx, "expire", func() error {
		return h.redisClient.Expire(ctx, h.key, h.ttl).Err()
	})
	if err != nil {
		// the combination is stored; only its session expiry was not refreshed
		h.logger.Error("Failed to refresh Redis history TTL: key=%s, ttl=%v, error=%v", h.key, h.ttl, err)
	}

	h.logger.Debug("Recorded combination in Redis history: key=%s, numbers=%s", h.key, FormatNumbers(numbers))
	return nil
}

// Snapshot reads the whole session list in append order
func (h *RedisHistory) Snapshot(ctx context.Context) ([][]int, error) {
	var raw []string
	err := h.executeWithRetry(ctx, "snapshot", func() error {
		var err error
		raw, err = h.redisClient.LRange(ctx, h.key, 0, -1).Result()
		return err
	})
	if err != nil {
		return nil, ErrHistoryUnavailable.WithDetails(fmt.Sprintf("read key=%s", h.key)).WithCause(err)
	}

	if len(raw) == 0 {
		return nil, nil
	}

	entries := make([][]int, 0, len(raw))
	for i, item := range raw {
		var numbers []int
		if err := json.Unmarshal([]byte(item), &numbers); err != nil {
			return nil, ErrHistoryUnavailable.
				WithDetails(fmt.Sprintf("corrupted entry %d in key=%s", i, h.key)).
				WithCause(err)
		}
		entries = append(entries, numbers)
	}
	return entries, nil
}

// executeWithRetry executes a Redis operation with retry logic using exponential backoff
func (h *RedisHistory) executeWithRetry(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	startTime := time.Now()

	for attempt := 0; attempt <= h.retryAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<(attempt-1)) * h.retryBaseDelay
			h.logger.Debug("Retrying history %s (attempt %d/%d) after %v", operation, attempt, h.retryAttempts, delay)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during retry for %s after %v: %w", operation, time.Since(startTime), ctx.Err())
			case <-time.After(delay):
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryableError(err) {
			h.logger.Debug("Non-retriable error for history %s: %v", operation, err)
			break
		}
	}

	return fmt.Errorf("history %s failed after %v: %w", operation, time.Since(startTime), lastErr)
}
