// Package timeout races store calls against a deadline.
package timeout

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Default is the deadline applied when none is configured.
const Default = 30 * time.Second

// ErrTimeout is matched by every error returned when a call overruns.
var ErrTimeout = errors.New("request timed out")

// Error reports a call that did not finish within its deadline.
type Error struct {
	Op    string
	After time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: request timed out after %s; check your network connection and that SUPABASE_URL and SUPABASE_ANON_KEY point at a reachable project", e.Op, e.After)
}

func (e *Error) Is(target error) bool {
	return target == ErrTimeout
}

// Do runs fn and returns its result, unless d elapses or ctx is done first.
// fn is not interrupted when the deadline wins; it keeps running in the
// background and its result is discarded.
func Do[T any](ctx context.Context, op string, d time.Duration, fn func() (T, error)) (T, error) {
	if d <= 0 {
		d = Default
	}

	type result struct {
		value T
		err   error
	}
	// Buffered so the losing goroutine can always deliver and exit.
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{value: v, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	var zero T
	select {
	case r := <-done:
		return r.value, r.err
	case <-timer.C:
		return zero, &Error{Op: op, After: d}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
