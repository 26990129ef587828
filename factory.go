package lotofacil

import (
	"github.com/go-redis/redis/v8"
)

// NewGenerationClientFromConfig builds the production client: the Gemini
// backend behind a circuit breaker, with the local fallback behind both.
func NewGenerationClientFromConfig(config *Config, logger Logger) (*GenerationClient, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = &DefaultLogger{}
	}

	var backend GenerationBackend = NewGeminiBackend(config.Generator, logger)
	backend = NewCircuitBreakerBackend(backend, config.CircuitBreaker, logger)

	return NewGenerationClient(backend, logger), nil
}

// NewSessionFromConfig creates a session sharing client. With the redis history
// backend, redisClient must be non-nil; sessionID may be empty for a new session.
func NewSessionFromConfig(config *Config, client *GenerationClient, redisClient *redis.Client, sessionID string, logger Logger) (*Session, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.History.Validate(); err != nil {
		return nil, err
	}
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	switch config.History.Backend {
	case HistoryBackendRedis:
		if redisClient == nil {
			return nil, ErrConfigInvalid.WithDetails("redis history backend requires a redis client")
		}
		history, err := NewRedisHistory(redisClient, sessionID, config.History.TTL, logger)
		if err != nil {
			return nil, err
		}
		session := NewSessionWithID(sessionID, client, history, logger)
		expiration := DefaultLockExpiration
		if config.Generator != nil {
			expiration = config.Generator.LockExpiration()
		}
		session.SetLocker(NewRedisLocker(redisClient, config.History.LockTimeout, expiration))
		return session, nil
	default:
		return NewSessionWithID(sessionID, client, NewMemoryHistory(), logger), nil
	}
}
