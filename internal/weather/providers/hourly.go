package providers

import (
	"context"
	"time"

	"github.com/i474232898/weather-forecast-router/internal/logger"
	"github.com/i474232898/weather-forecast-router/internal/weather"
)

const (
	DefaultHourlyTTL     = 30 * time.Minute
	DefaultHourlyTimeout = 10 * time.Second
)

// HourlyBackend serves dates up to three days out from the 72-hour
// provider forecast.
type HourlyBackend struct {
	client  *Client
	cache   resultCache
	timeout time.Duration
	zone    *time.Location
	now     func() time.Time
	log     logger.Logger
}

// NewHourlyBackend creates an HourlyBackend.
func NewHourlyBackend(client *Client, cfg BackendConfig) *HourlyBackend {
	cfg = cfg.withDefaults(DefaultHourlyTTL, DefaultHourlyTimeout)
	return &HourlyBackend{
		client:  client,
		cache:   resultCache{cache: cfg.Cache, ttl: cfg.TTL},
		timeout: cfg.Timeout,
		zone:    cfg.Zone,
		now:     time.Now,
		log:     cfg.Logger.WithField("component", "hourly_backend"),
	}
}

func (b *HourlyBackend) Source() weather.Source { return weather.SourceHourlyAPI }

// Fetch returns the 24 hours of date's calendar day in the location's local
// time. Hours outside the provider window are held from the nearest
// forecast hour and flagged Interpolated.
func (b *HourlyBackend) Fetch(ctx context.Context, loc weather.LocationInfo, date time.Time) (weather.ForecastResult, error) {
	key := weather.CacheKey(weather.TierHourly, loc, date)
	if res, ok := b.cache.get(key); ok {
		return res, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	env, err := b.client.fetch(callCtx, weather.TierHourly, loc, map[string]string{
		"hourlysteps": "72",
		"alert":       "true",
	}, b.cache.ttl)
	if err != nil {
		return weather.ForecastResult{}, err
	}

	all, err := env.Result.Hourly.points()
	if err != nil {
		return weather.ForecastResult{}, err
	}

	zone := env.zone(b.zone)
	for i := range all {
		all[i].Time = all[i].Time.In(zone)
	}
	dayStart := weather.DayStart(date, zone)
	points := weather.FillDay(all, dayStart)
	if points == nil {
		return weather.ForecastResult{}, weather.NewError(weather.KindDataParse, "select hours",
			"no forecast hour falls on %s", date.Format(weather.DateLayout))
	}

	if logger.IsDebugEnabled(b.log) {
		held := 0
		for _, p := range points {
			if p.Interpolated {
				held++
			}
		}
		if held > 0 {
			b.log.Debugf("%s %s: %d of 24 hours outside the provider window",
				weather.LocationKey(loc), date.Format(weather.DateLayout), held)
		}
	}

	res := weather.ForecastResult{
		Source:          weather.SourceHourlyAPI,
		HourlyPoints:    points,
		ConfidenceScore: weather.ConfidenceHourly,
		GeneratedAt:     b.now().UTC(),
	}
	b.cache.put(callCtx, key, res)
	return res, nil
}
