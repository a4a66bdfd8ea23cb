package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff(t *testing.T) {
	b := ExponentialBackoff(time.Second)
	assert.Equal(t, 2*time.Second, b(1))
	assert.Equal(t, 4*time.Second, b(2))
	assert.Equal(t, 8*time.Second, b(3))
}

func TestRetryStopsOnSuccess(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, Backoff: NoBackoff}
	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 2 {
			return &Error{Kind: KindNetworkTimeout}
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, Backoff: NoBackoff}
	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return &Error{Kind: KindAPIQuotaExceeded}
	})
	assert.ErrorIs(t, err, ErrAPIQuotaExceeded)
	assert.Equal(t, 3, calls)
}

func TestRetryDoesNotRetryPermanentErrors(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, Backoff: NoBackoff}
	for _, perm := range []error{
		&Error{Kind: KindDataParse},
		&Error{Kind: KindLocationNotFound},
		&Error{Kind: KindUpstream},
		errors.New("plain"),
	} {
		calls := 0
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return perm
		})
		assert.Equal(t, perm, err)
		assert.Equal(t, 1, calls, perm.Error())
	}
}

func TestRetryHonoursContextDuringBackoff(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, Backoff: func(int) time.Duration { return time.Hour }}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	calls := 0
	start := time.Now()
	err := p.Do(ctx, func(context.Context) error {
		calls++
		return &Error{Kind: KindUpstream, Temporary: true}
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRetryCancelledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := DefaultRetryPolicy().Do(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
