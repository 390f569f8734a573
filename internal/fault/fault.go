// Package fault classifies runtime failures into retryable storage errors
// and unrecoverable halts.
package fault

import (
	"errors"
	"fmt"
)

// DefaultAttempts is the number of tries made for a storage write before
// the failure is treated as fatal.
const DefaultAttempts = 4

var ErrRetriesExhausted = errors.New("retries exhausted")

// TransientError marks a storage failure that may succeed when repeated.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err so Retry will try the operation again.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether any error in err's chain is retryable.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// Retry runs op up to attempts times. Only transient failures are retried;
// any other error is returned immediately. onRetry, when set, is called
// before each repeated attempt with the attempt number (starting at 2) and
// the previous failure.
func Retry(attempts int, op func() error, onRetry func(attempt int, err error)) error {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if i > 1 && onRetry != nil {
			onRetry(i, err)
		}
		err = op()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, err)
}

// Fatal is the panic value raised by Halt.
type Fatal struct {
	Err error
}

func (f *Fatal) Error() string { return "fatal: " + f.Err.Error() }
func (f *Fatal) Unwrap() error { return f.Err }

// Halt stops the running pipeline. Code on the per-scanline path has no
// caller able to handle an error, so the failure unwinds to the top of the
// program where it is reported by Recover.
func Halt(err error) {
	panic(&Fatal{Err: err})
}

// Recover converts a Halt panic back into an error. It must be called
// directly by a deferred function; other panics are re-raised.
func Recover(r any) error {
	if r == nil {
		return nil
	}
	if f, ok := r.(*Fatal); ok {
		return f
	}
	panic(r)
}
