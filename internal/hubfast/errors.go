package hubfast

import (
	"errors"
	"fmt"
)

// ErrPartitionNotFound means no shard exists for the requested year/month.
// Not retryable; the caller must supply a valid partition.
var ErrPartitionNotFound = errors.New("partition not found")

// TransientError wraps a network or 5xx failure retrieving a shard. The
// client retries these with bounded exponential backoff before surfacing
// one; it is the only error a caller may reasonably retry further.
type TransientError struct {
	Status   int // 0 when the failure was below HTTP
	Attempts int
	Err      error
}

func (e *TransientError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("transient fetch: status=%d attempts=%d: %v", e.Status, e.Attempts, e.Err)
	}
	return fmt.Sprintf("transient fetch: attempts=%d: %v", e.Attempts, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
