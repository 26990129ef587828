package lotofacil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerationClientFromConfig(t *testing.T) {
	t.Run("without_api_key_falls_back", func(t *testing.T) {
		client, err := NewGenerationClientFromConfig(DefaultConfig(), NewSilentLogger())
		require.NoError(t, err)

		_, ok := client.backend.(*CircuitBreakerBackend)
		assert.True(t, ok)

		req := newTestRequest(t, 2, StrategyGoldStandard)
		games := client.Generate(context.Background(), req)
		assertFallbackGames(t, games, 2, StrategyGoldStandard)
		assert.Equal(t, int64(1), client.Monitor().Metrics().TransportFailures)
	})

	t.Run("invalid_config", func(t *testing.T) {
		config := DefaultConfig()
		config.Generator.Timeout = 0

		_, err := NewGenerationClientFromConfig(config, nil)
		assert.True(t, errors.Is(err, ErrInvalidGeneratorTimeout))
	})
}

func TestNewSessionFromConfig(t *testing.T) {
	client := NewGenerationClient(&recordingBackend{}, NewSilentLogger())

	t.Run("memory", func(t *testing.T) {
		session, err := NewSessionFromConfig(DefaultConfig(), client, nil, "", NewSilentLogger())
		require.NoError(t, err)
		assert.NotEmpty(t, session.ID())
		assert.Nil(t, session.locker)

		_, ok := session.history.(*MemoryHistory)
		assert.True(t, ok)
	})

	t.Run("redis", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		defer db.Close()

		config := DefaultConfig()
		config.History.Backend = HistoryBackendRedis
		config.History.TTL = time.Hour

		session, err := NewSessionFromConfig(config, client, db, "shared", NewSilentLogger())
		require.NoError(t, err)
		assert.Equal(t, "shared", session.ID())

		history, ok := session.history.(*RedisHistory)
		require.True(t, ok)
		assert.Equal(t, HistoryKeyPrefix+"shared", history.Key())
		locker, ok := session.locker.(*RedisLocker)
		require.True(t, ok)
		assert.Equal(t, config.Generator.LockExpiration(), locker.expiration)
		assert.Greater(t, locker.expiration, config.Generator.MaxCallDuration())

		mock.ExpectLRange(history.Key(), 0, -1).SetVal([]string{})
		snapshot, err := session.History(context.Background())
		require.NoError(t, err)
		assert.Empty(t, snapshot)
	})

	t.Run("redis_without_client", func(t *testing.T) {
		config := DefaultConfig()
		config.History.Backend = HistoryBackendRedis

		_, err := NewSessionFromConfig(config, client, nil, "", nil)
		assert.True(t, errors.Is(err, ErrConfigInvalid))
	})

	t.Run("unknown_backend", func(t *testing.T) {
		config := DefaultConfig()
		config.History.Backend = "disk"

		_, err := NewSessionFromConfig(config, client, nil, "", nil)
		assert.True(t, errors.Is(err, ErrInvalidHistoryBackend))
	})
}
