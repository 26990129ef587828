package lotofacil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBreakerConfig() *CircuitBreakerConfig {
	config := DefaultCircuitBreakerConfig()
	config.Name = "test-breaker"
	config.Timeout = time.Hour
	config.OnStateChange = false
	return config
}

func TestCircuitBreakerBackend_Trips(t *testing.T) {
	ctx := context.Background()
	backend := &recordingBackend{err: ErrTransportFailure}
	cb := NewCircuitBreakerBackend(backend, testBreakerConfig(), NewSilentLogger())
	req := newTestRequest(t, 1, StrategyBalanced)

	assert.Equal(t, "closed", cb.State())

	for range 3 {
		_, err := cb.Produce(ctx, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTransportFailure))
	}
	assert.Equal(t, "open", cb.State())

	_, err := cb.Produce(ctx, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCircuitBreakerOpen))
	assert.True(t, IsTransportFailure(err))
	assert.Equal(t, 3, backend.calls(), "open breaker must not reach the backend")

	health := cb.Health()
	assert.Equal(t, false, health["healthy"])
	assert.Equal(t, "open", health["state"])

	cb.Reset()
	assert.Equal(t, "closed", cb.State())
	assert.Equal(t, uint32(0), cb.Counts().Requests)
}

func TestCircuitBreakerBackend_PassThrough(t *testing.T) {
	ctx := context.Background()
	req := newTestRequest(t, 2, StrategyHotNumbers)

	t.Run("success", func(t *testing.T) {
		cb := NewCircuitBreakerBackend(&recordingBackend{}, testBreakerConfig(), nil)

		out, err := cb.Produce(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, testPayload(2, StrategyHotNumbers), out)
		assert.Equal(t, uint32(1), cb.Counts().TotalSuccesses)
		assert.Equal(t, true, cb.Health()["healthy"])
	})

	t.Run("cancellation_does_not_count_as_failure", func(t *testing.T) {
		cb := NewCircuitBreakerBackend(&recordingBackend{err: context.Canceled}, testBreakerConfig(), nil)

		for range 5 {
			_, err := cb.Produce(ctx, req)
			require.Error(t, err)
		}
		assert.Equal(t, "closed", cb.State())
		assert.Equal(t, uint32(0), cb.Counts().TotalFailures)
	})

	t.Run("disabled", func(t *testing.T) {
		config := testBreakerConfig()
		config.Enabled = false
		backend := &recordingBackend{err: ErrTransportFailure}
		cb := NewCircuitBreakerBackend(backend, config, nil)

		for range 5 {
			_, err := cb.Produce(ctx, req)
			assert.True(t, errors.Is(err, ErrTransportFailure))
		}
		assert.Equal(t, "disabled", cb.State())
		assert.Equal(t, 5, backend.calls())
		assert.Equal(t, true, cb.Health()["healthy"])
	})
}

func TestGenerationClient_OpenBreakerFallsBack(t *testing.T) {
	backend := &recordingBackend{err: ErrTransportFailure}
	cb := NewCircuitBreakerBackend(backend, testBreakerConfig(), NewSilentLogger())
	session := NewSession(NewGenerationClient(cb, NewSilentLogger()), nil, NewSilentLogger())

	for range 6 {
		games, err := session.Generate(context.Background(), 1, StrategyBalanced)
		require.NoError(t, err)
		assertFallbackGames(t, games, 1, StrategyBalanced)
	}
	assert.Equal(t, 3, backend.calls())
	assert.Equal(t, int64(6), session.Client().Monitor().Metrics().Fallbacks)
}
