package consumer

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// PanicError carries the recovered panic value and stack trace.
type PanicError struct {
	Panic any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Panic)
}

// retryExecutor runs a handler invocation with the retry budget and
// panic recovery. A panic is a bug in the handler, so it is classified
// as permanent rather than retried.
type retryExecutor struct {
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	log            *zap.Logger
}

func newRetryExecutor(maxAttempts int, initialBackoff, maxBackoff time.Duration, log *zap.Logger) *retryExecutor {
	return &retryExecutor{
		maxAttempts:    maxAttempts,
		initialBackoff: initialBackoff,
		maxBackoff:     maxBackoff,
		log:            log,
	}
}

// execute retries fn until it succeeds, returns a non-retryable error,
// exhausts the attempt budget, or the context is cancelled.
func (r *retryExecutor) execute(ctx context.Context, fn func(ctx context.Context) error) error {
	for attempt := 1; attempt <= r.maxAttempts && ctx.Err() == nil; attempt++ {
		err := r.executeWithRecovery(ctx, fn)
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return err
		}

		r.logAttempt(err, attempt)

		if attempt >= r.maxAttempts {
			return fmt.Errorf("retry budget exhausted after %d attempts: %w", r.maxAttempts, err)
		}

		wait(ctx, retryDelay(attempt, r.initialBackoff, r.maxBackoff))
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errors.New("unexpected end of retry loop")
}

func (r *retryExecutor) executeWithRecovery(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrPermanent, &PanicError{
				Panic: rec,
				Stack: debug.Stack(),
			})
		}
	}()

	return fn(ctx)
}

func (r *retryExecutor) logAttempt(err error, attempt int) {
	fields := []zap.Field{
		zap.Int("attempt", attempt),
		zap.Int("max_attempts", r.maxAttempts),
	}

	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		fields = append(fields,
			zap.Any("panic", panicErr.Panic),
			zap.ByteString("stack", panicErr.Stack))
	} else {
		fields = append(fields, zap.Error(err))
	}

	r.log.Warn("handler attempt failed", fields...)
}
