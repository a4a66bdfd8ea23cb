package weather

import (
	"context"
	"math"
	"time"
)

// RetryPolicy controls how a backend call is retried.
type RetryPolicy struct {
	MaxAttempts int
	// Backoff returns the delay after the given failed attempt (1-based).
	Backoff   func(attempt int) time.Duration
	Retryable func(error) bool
}

// DefaultRetryPolicy is 3 attempts with 2^attempt second delays.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff(time.Second),
		Retryable:   IsRetryable,
	}
}

// ExponentialBackoff returns base * 2^attempt.
func ExponentialBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base * time.Duration(math.Pow(2, float64(attempt)))
	}
}

// NoBackoff retries immediately.
func NoBackoff(int) time.Duration { return 0 }

// Do runs fn until it succeeds, returns a non-retryable error, the attempts
// run out, or ctx is done. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || attempt == attempts {
			return lastErr
		}

		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff(attempt)
		}
		if delay <= 0 {
			continue
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
