package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExecutor(maxAttempts int) *retryExecutor {
	return newRetryExecutor(maxAttempts, time.Millisecond, 5*time.Millisecond, zap.NewNop())
}

func TestRetryExecutor(t *testing.T) {
	t.Run("returns nil on first success", func(t *testing.T) {
		calls := 0
		err := newTestExecutor(3).execute(context.Background(), func(ctx context.Context) error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries temporary failures until success", func(t *testing.T) {
		calls := 0
		err := newTestExecutor(3).execute(context.Background(), func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return Temporary("db connection lost")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("treats unclassified errors as temporary", func(t *testing.T) {
		calls := 0
		err := newTestExecutor(2).execute(context.Background(), func(ctx context.Context) error {
			calls++
			return errors.New("something went wrong")
		})

		require.Error(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("exhausts the budget and reports the last error", func(t *testing.T) {
		calls := 0
		err := newTestExecutor(3).execute(context.Background(), func(ctx context.Context) error {
			calls++
			return Temporary("still down")
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTemporary)
		assert.Equal(t, 3, calls)
	})

	t.Run("never retries permanent failures", func(t *testing.T) {
		calls := 0
		err := newTestExecutor(5).execute(context.Background(), func(ctx context.Context) error {
			calls++
			return Permanent("malformed payload")
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPermanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("never retries skipped events", func(t *testing.T) {
		calls := 0
		err := newTestExecutor(5).execute(context.Background(), func(ctx context.Context) error {
			calls++
			return ErrSkip
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSkip)
		assert.Equal(t, 1, calls)
	})

	t.Run("converts a panic into a permanent failure", func(t *testing.T) {
		calls := 0
		err := newTestExecutor(5).execute(context.Background(), func(ctx context.Context) error {
			calls++
			panic("handler bug")
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPermanent)
		assert.Equal(t, 1, calls)

		var panicErr *PanicError
		require.ErrorAs(t, err, &panicErr)
		assert.Equal(t, "handler bug", panicErr.Panic)
		assert.NotEmpty(t, panicErr.Stack)
	})

	t.Run("stops retrying when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := newTestExecutor(100).execute(ctx, func(ctx context.Context) error {
			calls++
			cancel()
			return Temporary("interrupted")
		})

		require.Error(t, err)
		assert.LessOrEqual(t, calls, 2)
	})
}
