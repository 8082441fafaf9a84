package consumer

import (
	"errors"
	"fmt"
)

// Handler outcomes. Wrap (or use errors.Join with) these sentinels to
// tell the dispatch loop what to do with a failed event:
//
//   - ErrTemporary: retry with the configured backoff budget
//   - ErrPermanent: no retry, route to the dead-letter topic
//   - ErrSkip: drop the event without treating it as a failure
//
// An error that wraps none of them is treated as temporary.
var (
	ErrTemporary = errors.New("temporary failure")
	ErrPermanent = errors.New("permanent failure")
	ErrSkip      = errors.New("skip event")
)

// Temporary marks a failure as retryable.
func Temporary(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTemporary, fmt.Sprintf(format, args...))
}

// Permanent marks a failure as not retryable.
func Permanent(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPermanent, fmt.Sprintf(format, args...))
}

// isRetryable reports whether the dispatch loop should retry the event.
func isRetryable(err error) bool {
	if errors.Is(err, ErrPermanent) || errors.Is(err, ErrSkip) {
		return false
	}
	return true
}
