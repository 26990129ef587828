package lotofacil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	t.Run("basic_error", func(t *testing.T) {
		err := NewError(ErrCodeInvalidParameters, KindValidation, "test error message")

		assert.Equal(t, ErrCodeInvalidParameters, err.Code)
		assert.Equal(t, KindValidation, err.Kind)
		assert.Equal(t, SeverityMedium, err.Severity)
		assert.False(t, err.Retryable)
		assert.Contains(t, err.Error(), "LOTOFACIL_2000")
		assert.Contains(t, err.Error(), "test error message")
	})

	t.Run("retryable_error", func(t *testing.T) {
		err := NewRetryableError(ErrCodeTransportFailure, KindTransport, "connection failed")
		assert.True(t, err.Retryable)
	})

	t.Run("critical_error", func(t *testing.T) {
		err := NewCriticalError(ErrCodeSystem, KindSystem, "system failure")

		assert.Equal(t, SeverityCritical, err.Severity)
		assert.NotEmpty(t, err.StackTrace)
	})

	t.Run("error_with_details", func(t *testing.T) {
		err := ErrBackendStatus.
			WithDetails("status 503").
			WithSessionID("session-123").
			WithOperation("Produce").
			WithMetadata("status", 503)

		assert.Equal(t, "status 503", err.Details)
		assert.Equal(t, "session-123", err.SessionID)
		assert.Equal(t, "Produce", err.Operation)
		assert.Equal(t, 503, err.Metadata["status"])
		assert.Contains(t, err.Error(), "status 503")
	})

	t.Run("builders_do_not_mutate_sentinels", func(t *testing.T) {
		_ = ErrSchemaViolation.WithDetails("changed").WithMetadata("k", "v")

		assert.Empty(t, ErrSchemaViolation.Details)
		assert.Nil(t, ErrSchemaViolation.Metadata)
	})

	t.Run("error_with_cause", func(t *testing.T) {
		original := errors.New("original error")
		err := ErrTransportFailure.WithCause(original)

		assert.Equal(t, original, err.Unwrap())
		assert.True(t, errors.Is(err, original))
		assert.True(t, errors.Is(err, ErrTransportFailure))
	})

	t.Run("error_comparison", func(t *testing.T) {
		assert.True(t, errors.Is(ErrInvalidCount.WithDetails("count=0"), ErrInvalidCount))
		assert.False(t, errors.Is(ErrInvalidCount, ErrInvalidStrategy))
	})
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		validation bool
		transport  bool
		schema     bool
	}{
		{"invalid_count", ErrInvalidCount, true, false, false},
		{"invalid_strategy", ErrInvalidStrategy.WithDetails("X"), true, false, false},
		{"transport", ErrTransportFailure, false, true, false},
		{"breaker_open", ErrCircuitBreakerOpen, false, true, false},
		{"rate_limited", ErrRateLimited, false, true, false},
		{"schema", ErrSchemaViolation, false, false, true},
		{"wrapped_schema", ErrSchemaViolation.WithCause(ErrInvalidGame), false, false, true},
		{"plain", errors.New("plain"), false, false, false},
		{"nil", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidationError(tt.err))
			assert.Equal(t, tt.transport, IsTransportFailure(tt.err))
			assert.Equal(t, tt.schema, IsSchemaViolation(tt.err))
		})
	}
}

func TestDefaultErrorHandler(t *testing.T) {
	handler := NewDefaultErrorHandler(NewSilentLogger(), 100*time.Millisecond)

	t.Run("handle_error_with_session", func(t *testing.T) {
		ctx := ContextWithSessionID(context.Background(), "session-1")
		handled := handler.HandleError(ctx, ErrBackendStatus)

		var e *Error
		require.True(t, errors.As(handled, &e))
		assert.Equal(t, "session-1", e.SessionID)
		assert.Empty(t, ErrBackendStatus.SessionID)
	})

	t.Run("handle_regular_error", func(t *testing.T) {
		original := errors.New("dial tcp: connection refused")
		handled := handler.HandleError(context.Background(), original)

		var e *Error
		require.True(t, errors.As(handled, &e))
		assert.Equal(t, ErrCodeTransportFailure, e.Code)
		assert.True(t, e.Retryable)
		assert.Equal(t, original, e.Unwrap())
	})

	t.Run("should_retry", func(t *testing.T) {
		assert.True(t, handler.ShouldRetry(ErrTransportFailure))
		assert.False(t, handler.ShouldRetry(ErrSchemaViolation))
		assert.True(t, handler.ShouldRetry(errors.New("connection timeout")))
		assert.False(t, handler.ShouldRetry(context.Canceled))
	})

	t.Run("get_retry_delay", func(t *testing.T) {
		for attempt, base := range map[int]time.Duration{
			1: 100 * time.Millisecond,
			2: 200 * time.Millisecond,
			3: 400 * time.Millisecond,
		} {
			delay := handler.GetRetryDelay(attempt, ErrTransportFailure)
			assert.GreaterOrEqual(t, delay, time.Duration(float64(base)*0.75))
			assert.LessOrEqual(t, delay, time.Duration(float64(base)*1.25))
		}
		assert.LessOrEqual(t, handler.GetRetryDelay(20, ErrTransportFailure), 10*time.Second)
	})
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil_error", nil, false},
		{"connection_refused", errors.New("connection refused"), true},
		{"connection_reset", errors.New("connection reset by peer"), true},
		{"io_timeout", errors.New("i/o timeout"), true},
		{"dial_tcp", errors.New("dial tcp: connection failed"), true},
		{"unexpected_eof", errors.New("unexpected EOF"), true},
		{"redis_pool_timeout", errors.New("redis: connection pool timeout"), true},
		{"context_deadline", context.DeadlineExceeded, true},
		{"context_canceled", context.Canceled, false},
		{"invalid_command", errors.New("ERR unknown command"), false},
		{"wrong_type", errors.New("WRONGTYPE Operation against wrong type"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryableError(tt.err))
		})
	}
}

func TestErrorRecovery_ExecuteWithRetry(t *testing.T) {
	handler := NewDefaultErrorHandler(NewSilentLogger(), time.Millisecond)
	recovery := NewErrorRecovery(handler, 2, NewSilentLogger())
	ctx := context.Background()

	t.Run("succeeds_after_retry", func(t *testing.T) {
		attempts := 0
		err := recovery.ExecuteWithRetry(ctx, func() error {
			attempts++
			if attempts < 3 {
				return errors.New("connection reset")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives_up_after_max_retries", func(t *testing.T) {
		attempts := 0
		err := recovery.ExecuteWithRetry(ctx, func() error {
			attempts++
			return errors.New("i/o timeout")
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTransportFailure))
		assert.Equal(t, 3, attempts)
	})

	t.Run("stops_on_non_retryable", func(t *testing.T) {
		attempts := 0
		err := recovery.ExecuteWithRetry(ctx, func() error {
			attempts++
			return ErrSchemaViolation
		})
		assert.True(t, errors.Is(err, ErrSchemaViolation))
		assert.Equal(t, 1, attempts)
	})

	t.Run("cancelled_context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		err := recovery.ExecuteWithRetry(cctx, func() error {
			t.Fatal("operation must not run")
			return nil
		})
		assert.True(t, errors.Is(err, context.Canceled))
	})
}
