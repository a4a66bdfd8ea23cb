package providers

import (
	"context"
	"time"

	"github.com/i474232898/weather-forecast-router/internal/logger"
	"github.com/i474232898/weather-forecast-router/internal/weather"
)

// BackendConfig holds the settings common to the hourly and daily backends.
type BackendConfig struct {
	Cache   weather.Cache
	TTL     time.Duration
	Timeout time.Duration

	// Zone is used when the provider payload carries no tzshift.
	Zone   *time.Location
	Logger logger.Logger
}

func (c BackendConfig) withDefaults(ttl, timeout time.Duration) BackendConfig {
	if c.TTL <= 0 {
		c.TTL = ttl
	}
	if c.Timeout <= 0 {
		c.Timeout = timeout
	}
	if c.Zone == nil {
		c.Zone = time.UTC
	}
	if c.Logger == nil {
		c.Logger = logger.Discard()
	}
	return c
}

// resultCache wraps the optional shared cache.
type resultCache struct {
	cache weather.Cache
	ttl   time.Duration
}

func (c resultCache) get(key string) (weather.ForecastResult, bool) {
	if c.cache == nil {
		return weather.ForecastResult{}, false
	}
	res, ok := c.cache.Get(key)
	if !ok {
		return weather.ForecastResult{}, false
	}
	res.FromCache = true
	return res, true
}

// put stores res unless ctx is already done, so an abandoned call never
// leaves an entry behind.
func (c resultCache) put(ctx context.Context, key string, res weather.ForecastResult) {
	if c.cache == nil || ctx.Err() != nil {
		return
	}
	res.FromCache = false
	c.cache.Set(key, res, c.ttl)
}
