package lotofacil

import "time"

const (
	// NumberMin is the lowest number on a Lotofácil ticket
	NumberMin = 1

	// NumberMax is the highest number on a Lotofácil ticket
	NumberMax = 25

	// GameSize is the amount of distinct numbers in one game
	GameSize = 15

	// MaxGamesPerRequest caps count on the HTTP surface; the library itself
	// accepts any positive count
	MaxGamesPerRequest = 10

	// MaxAnalysisLength is the analysis length requested from the backend (not enforced)
	MaxAnalysisLength = 300

	// BaseProbability is the odds of an unconstrained 15-of-25 game, C(25,15) = 3,268,760
	BaseProbability = "1 em 3.268.760"

	// FallbackMethodology marks games produced locally instead of by the backend
	FallbackMethodology = "Random Fallback"

	// FallbackAnalysis is attached to every locally generated game
	FallbackAnalysis = "Gerado localmente devido a erro de conexão."
)

const (
	DefaultGeneratorEndpoint      = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeneratorModel         = "gemini-2.5-flash"
	DefaultGeneratorTimeout       = 60 * time.Second
	DefaultGeneratorRetryAttempts = 1
	DefaultGeneratorRetryInterval = 500 * time.Millisecond
	DefaultGeneratorRateLimit     = 2.0
	DefaultGeneratorRateBurst     = 4

	// MaxGeneratorRetryAttempts bounds the retries of a single backend call
	MaxGeneratorRetryAttempts = 5

	// MaxRetryDelay caps a single backoff delay between backend retries
	MaxRetryDelay = 10 * time.Second

	// MaxResponseSize caps the backend response body read into memory (4MB)
	MaxResponseSize = 4 * 1024 * 1024
)

const (
	HistoryBackendMemory = "memory"
	HistoryBackendRedis  = "redis"

	// HistoryKeyPrefix is the prefix for Redis session history keys
	HistoryKeyPrefix = "lotofacil:history:"

	// LockKeyPrefix is the prefix for Redis session lock keys
	LockKeyPrefix = "lotofacil:lock:"

	// DefaultHistoryTTL is how long an idle session keeps its history in Redis
	DefaultHistoryTTL = 12 * time.Hour

	// DefaultLockTimeout is how long a generation waits for the session lock
	DefaultLockTimeout = 90 * time.Second

	// DefaultLockExpiration is the expiration of a held session lock
	DefaultLockExpiration = 2 * time.Minute

	// LockExpirationMargin is added to the worst-case backend call when
	// sizing the session lock expiration
	LockExpirationMargin = 30 * time.Second

	// DefaultLockRetryInterval is the polling interval while waiting for a lock
	DefaultLockRetryInterval = 100 * time.Millisecond

	MinHistoryTTL = 1 * time.Minute
	MaxHistoryTTL = 7 * 24 * time.Hour
)

const (
	// DefaultCircuitBreakerName is the default name for Circuit Breaker
	DefaultCircuitBreakerName = "lotofacil-generator"

	// DefaultCircuitBreakerMaxRequests is the default max requests
	DefaultCircuitBreakerMaxRequests = 1

	// DefaultCircuitBreakerInterval is the default interval
	DefaultCircuitBreakerInterval = 60 * time.Second

	// DefaultCircuitBreakerTimeout is the default timeout
	DefaultCircuitBreakerTimeout = 30 * time.Second

	// DefaultCircuitBreakerFailureRatio is the default failure ratio
	DefaultCircuitBreakerFailureRatio = 0.6

	// DefaultCircuitBreakerMinRequests is the default min requests
	DefaultCircuitBreakerMinRequests = 3

	// DefaultCircuitBreakerOnStateChange is the default on state change
	DefaultCircuitBreakerOnStateChange = true
)

const (
	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisPassword     = ""
	DefaultRedisDB           = 0
	DefaultRedisPoolSize     = 10
	DefaultRedisMinIdleConns = 2
	DefaultRedisMaxRetries   = 3
	DefaultRedisDialTimeout  = 5 * time.Second
	DefaultRedisReadTimeout  = 3 * time.Second
	DefaultRedisWriteTimeout = 3 * time.Second
	DefaultRedisPoolTimeout  = 4 * time.Second
)
