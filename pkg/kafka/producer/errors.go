package producer

import "errors"

// Publish failures fall into exactly two kinds. Serialization failures
// indicate a construction bug and are never retried; transport failures
// are broker or network trouble and are safe to retry.
var (
	ErrSerialization = errors.New("event serialization failed")
	ErrTransport     = errors.New("event transport failed")
)

// IsTransport reports whether the publish error is retryable.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}
