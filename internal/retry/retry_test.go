package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func TestDoSucceedsAfterRetries(t *testing.T) {
	calls := 0
	p := Policy{MaxAttempts: 3, Backoff: Constant(0)}

	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhausts(t *testing.T) {
	calls := 0
	var retried []int
	p := Policy{
		MaxAttempts: 3,
		Backoff:     Constant(time.Millisecond),
		OnRetry:     func(attempt int, _ error) { retried = append(retried, attempt) },
	}

	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errFlaky
	})

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, 3, ex.Attempts)
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0
	p := Policy{
		MaxAttempts: 5,
		Backoff:     Constant(0),
		Retryable:   func(err error) bool { return !errors.Is(err, fatal) },
	}

	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return fatal
	})
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDoStopsOnPermanent(t *testing.T) {
	calls := 0
	p := Policy{MaxAttempts: 5, Backoff: Constant(0)}

	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(errFlaky)
	})
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 1, calls)
}

func TestDoHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 3, Backoff: Constant(time.Hour)}

	err := p.Do(ctx, func(context.Context) error {
		cancel()
		return errFlaky
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, errFlaky)
}

func TestExponential(t *testing.T) {
	b := Exponential(100*time.Millisecond, time.Second)
	assert.Equal(t, 100*time.Millisecond, b(1))
	assert.Equal(t, 200*time.Millisecond, b(2))
	assert.Equal(t, 400*time.Millisecond, b(3))
	assert.Equal(t, 800*time.Millisecond, b(4))
	assert.Equal(t, time.Second, b(5))
	assert.Equal(t, time.Second, b(30))
}

func TestDefault(t *testing.T) {
	p := Default()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, 2*time.Second, p.Backoff(1))
}
