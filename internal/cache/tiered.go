package cache

import (
	"context"
	"errors"
	"time"

	"github.com/i474232898/weather-forecast-router/internal/logger"
	"github.com/i474232898/weather-forecast-router/internal/weather"
)

// Remote is a shared cache tier behind the in-process one.
type Remote interface {
	Get(ctx context.Context, key string) (weather.ForecastResult, time.Duration, error)
	Set(ctx context.Context, key string, value weather.ForecastResult, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// Tiered checks the in-process cache first and the remote tier second.
// Remote failures degrade to misses.
type Tiered struct {
	local   *Memory
	remote  Remote
	timeout time.Duration
	log     logger.Logger
}

// NewTiered creates a two-level cache. Remote calls are bounded by timeout.
func NewTiered(local *Memory, remote Remote, timeout time.Duration, log logger.Logger) *Tiered {
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Tiered{
		local:   local,
		remote:  remote,
		timeout: timeout,
		log:     log.WithField("component", "tiered_cache"),
	}
}

// Get promotes remote hits into the local tier for their remaining TTL.
func (t *Tiered) Get(key string) (weather.ForecastResult, bool) {
	if v, ok := t.local.Get(key); ok {
		return v, true
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	v, ttl, err := t.remote.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			t.log.Warnf("remote get %s: %v", key, err)
		}
		return weather.ForecastResult{}, false
	}
	t.local.Set(key, v, ttl)
	return v, true
}

// Set writes both tiers.
func (t *Tiered) Set(key string, value weather.ForecastResult, ttl time.Duration) {
	t.local.Set(key, value, ttl)

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	if err := t.remote.Set(ctx, key, value, ttl); err != nil {
		t.log.Warnf("remote set %s: %v", key, err)
	}
}

// Clear empties both tiers.
func (t *Tiered) Clear() {
	t.local.Clear()

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	if err := t.remote.Clear(ctx); err != nil {
		t.log.Warnf("remote clear: %v", err)
	}
}

// Sweep sweeps the local tier; the remote tier expires keys itself.
func (t *Tiered) Sweep() int { return t.local.Sweep() }

// Stats reports the local tier.
func (t *Tiered) Stats() Stats { return t.local.Stats() }

var (
	_ weather.Cache = (*Tiered)(nil)
	_ Remote        = (*Redis)(nil)
)
