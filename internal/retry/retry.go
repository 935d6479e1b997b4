// Package retry runs an operation under an explicit retry policy.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Backoff returns the wait before the given retry (1 = first retry)
type Backoff func(attempt int) time.Duration

// Policy describes how many times to try and how long to wait between tries
type Policy struct {
	MaxAttempts int
	Backoff     Backoff
	// Retryable decides whether an error is worth another attempt. Nil retries everything.
	Retryable func(error) bool
	// OnRetry is called before each wait, if set
	OnRetry func(attempt int, err error)
}

// ExhaustedError is returned when every attempt failed or a failure was not retryable
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Constant waits d between every attempt
func Constant(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// Exponential doubles base after each attempt, capped at limit
func Exponential(base, limit time.Duration) Backoff {
	return func(attempt int) time.Duration {
		d := base
		for i := 1; i < attempt; i++ {
			d *= 2
			if d >= limit {
				return limit
			}
		}
		return min(d, limit)
	}
}

// Default is three attempts two seconds apart
func Default() Policy {
	return Policy{MaxAttempts: 3, Backoff: Constant(2 * time.Second)}
}

// permanent marks an error that must not be retried
type permanent struct{ err error }

func (p permanent) Error() string { return p.err.Error() }
func (p permanent) Unwrap() error { return p.err }

// Permanent wraps err so Do stops immediately
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanent{err: err}
}

// Do calls fn until it succeeds, the policy gives up or ctx is done
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		var perm permanent
		if errors.As(err, &perm) {
			return &ExhaustedError{Attempts: attempt, Err: perm.err}
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return &ExhaustedError{Attempts: attempt, Err: err}
		}
		if attempt == attempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}

		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return &ExhaustedError{Attempts: attempt, Err: errors.Join(err, ctx.Err())}
		case <-timer.C:
		}
	}
	return &ExhaustedError{Attempts: attempts, Err: err}
}
