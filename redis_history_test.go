package lotofacil

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedNumbers(t *testing.T, numbers []int) string {
	t.Helper()
	data, err := json.Marshal(numbers)
	require.NoError(t, err)
	return string(data)
}

func TestNewRedisHistory(t *testing.T) {
	db, _ := redismock.NewClientMock()
	defer db.Close()

	_, err := NewRedisHistory(nil, "s1", time.Hour, nil)
	assert.True(t, errors.Is(err, ErrInvalidParameters))

	_, err = NewRedisHistory(db, "", time.Hour, nil)
	assert.True(t, errors.Is(err, ErrInvalidParameters))

	h, err := NewRedisHistory(db, "s1", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "lotofacil:history:s1", h.Key())
	assert.Equal(t, DefaultHistoryTTL, h.ttl)
}

func TestRedisHistory_Record(t *testing.T) {
	ctx := context.Background()
	numbers := testNumbers(2)

	tests := []struct {
		name        string
		mockSetup   func(mock redismock.ClientMock, value string)
		expectError bool
	}{
		{
			name: "successful_record",
			mockSetup: func(mock redismock.ClientMock, value string) {
				mock.ExpectRPush("lotofacil:history:s1", value).SetVal(1)
				mock.ExpectExpire("lotofacil:history:s1", time.Hour).SetVal(true)
			},
		},
		{
			name: "retry_after_connection_error",
			mockSetup: func(mock redismock.ClientMock, value string) {
				mock.ExpectRPush("lotofacil:history:s1", value).SetErr(errors.New("connection refused"))
				mock.ExpectRPush("lotofacil:history:s1", value).SetVal(3)
				mock.ExpectExpire("lotofacil:history:s1", time.Hour).SetVal(true)
			},
		},
		{
			name: "expire_retried_without_second_push",
			mockSetup: func(mock redismock.ClientMock, value string) {
				mock.ExpectRPush("lotofacil:history:s1", value).SetVal(1)
				mock.ExpectExpire("lotofacil:history:s1", time.Hour).SetErr(errors.New("i/o timeout"))
				mock.ExpectExpire("lotofacil:history:s1", time.Hour).SetVal(true)
			},
		},
		{
			name: "expire_failure_keeps_recorded_entry",
			mockSetup: func(mock redismock.ClientMock, value string) {
				mock.ExpectRPush("lotofacil:history:s1", value).SetVal(1)
				mock.ExpectExpire("lotofacil:history:s1", time.Hour).
					SetErr(errors.New("WRONGTYPE Operation against a key holding the wrong kind of value"))
			},
		},
		{
			name: "non_retryable_error",
			mockSetup: func(mock redismock.ClientMock, value string) {
				mock.ExpectRPush("lotofacil:history:s1", value).
					SetErr(errors.New("WRONGTYPE Operation against a key holding the wrong kind of value"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := redismock.NewClientMock()
			defer db.Close()

			h, err := NewRedisHistory(db, "s1", time.Hour, NewSilentLogger())
			require.NoError(t, err)
			h.retryBaseDelay = time.Millisecond

			tt.mockSetup(mock, encodedNumbers(t, numbers))

			err = h.Record(ctx, numbers)
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrHistoryUnavailable))
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRedisHistory_Snapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("entries_in_append_order", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		defer db.Close()

		h, err := NewRedisHistory(db, "s1", time.Hour, NewSilentLogger())
		require.NoError(t, err)

		mock.ExpectLRange("lotofacil:history:s1", 0, -1).SetVal([]string{
			encodedNumbers(t, testNumbers(1)),
			encodedNumbers(t, testNumbers(4)),
		})

		snapshot, err := h.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, [][]int{testNumbers(1), testNumbers(4)}, snapshot)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty_session", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		defer db.Close()

		h, err := NewRedisHistory(db, "s1", time.Hour, NewSilentLogger())
		require.NoError(t, err)

		mock.ExpectLRange("lotofacil:history:s1", 0, -1).SetVal([]string{})

		snapshot, err := h.Snapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, snapshot)
	})

	t.Run("corrupted_entry", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		defer db.Close()

		h, err := NewRedisHistory(db, "s1", time.Hour, NewSilentLogger())
		require.NoError(t, err)

		mock.ExpectLRange("lotofacil:history:s1", 0, -1).SetVal([]string{"{not json"})

		_, err = h.Snapshot(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrHistoryUnavailable))
	})

	t.Run("redis_error", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		defer db.Close()

		h, err := NewRedisHistory(db, "s1", time.Hour, NewSilentLogger())
		require.NoError(t, err)

		mock.ExpectLRange("lotofacil:history:s1", 0, -1).SetErr(errors.New("ERR unknown command"))

		_, err = h.Snapshot(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrHistoryUnavailable))
	})
}

func TestSession_WithRedisHistory(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	h, err := NewRedisHistory(db, "s1", time.Hour, NewSilentLogger())
	require.NoError(t, err)

	backend := &recordingBackend{}
	session := NewSessionWithID("s1", NewGenerationClient(backend, NewSilentLogger()), h, NewSilentLogger())

	previous := testNumbers(9)
	mock.ExpectLRange(h.Key(), 0, -1).SetVal([]string{encodedNumbers(t, previous)})
	mock.ExpectRPush(h.Key(), encodedNumbers(t, testNumbers(1))).SetVal(2)
	mock.ExpectExpire(h.Key(), time.Hour).SetVal(true)

	games, err := session.Generate(context.Background(), 1, StrategyBalanced)
	require.NoError(t, err)
	require.Len(t, games, 1)

	require.Equal(t, 1, backend.calls())
	assert.Equal(t, [][]int{previous}, backend.requests[0].Exclusions())
	assert.NoError(t, mock.ExpectationsWereMet())
}
