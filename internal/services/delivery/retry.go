// File: internal/services/delivery/retry.go
package delivery

import (
	"context"
	"errors"
	"time"
)

// RetryConfig defines simple retry behavior
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryConfig provides sensible defaults
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Delay:       500 * time.Millisecond,
	}
}

type retryable interface {
	Retryable() bool
}

// RetryWithBackoff runs fn until it succeeds, returns a non-retryable
// error or the attempts run out. The delay doubles after each failure.
func RetryWithBackoff(ctx context.Context, config RetryConfig, fn func(ctx context.Context) error) (int, error) {
	var lastErr error
	delay := config.Delay
	attempts := max(config.MaxAttempts, 1)

	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return attempt, nil
		}
		lastErr = err

		var r retryable
		if errors.As(err, &r) && !r.Retryable() {
			return attempt, err
		}

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return attempt, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	return attempts, lastErr
}
