package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:   attempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2,
	}
}

func TestRetrySucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	err := RetryWithConfig(context.Background(), fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("busy")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	err := RetryWithConfig(context.Background(), fastConfig(4), func() error {
		calls++
		return errors.New("still busy")
	})

	assert.EqualError(t, err, "still busy")
	assert.Equal(t, 4, calls)
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	permanent := errors.New("constraint violation")
	cfg := fastConfig(5)
	cfg.RetryableErrors = func(err error) bool { return !errors.Is(err, permanent) }

	calls := 0
	err := RetryWithConfig(context.Background(), cfg, func() error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetryNeverRetriesContextErrors(t *testing.T) {
	calls := 0
	err := RetryWithConfig(context.Background(), fastConfig(5), func() error {
		calls++
		return context.DeadlineExceeded
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
}

func TestRetryHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryWithConfig(ctx, fastConfig(3), func() error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestCalculateDelay(t *testing.T) {
	cfg := RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}

	assert.Equal(t, 100*time.Millisecond, calculateDelay(cfg, 0))
	assert.Equal(t, 400*time.Millisecond, calculateDelay(cfg, 2))
	assert.Equal(t, time.Second, calculateDelay(cfg, 10), "capped at MaxDelay")

	cfg.JitterEnabled = true
	for i := 0; i < 50; i++ {
		d := calculateDelay(cfg, 1)
		assert.GreaterOrEqual(t, d, 200*time.Millisecond)
		assert.Less(t, d, 220*time.Millisecond)
	}
}
