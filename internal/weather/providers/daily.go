package providers

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/i474232898/weather-forecast-router/internal/logger"
	"github.com/i474232898/weather-forecast-router/internal/weather"
)

const (
	DefaultDailyTTL     = 2 * time.Hour
	DefaultDailyTimeout = 15 * time.Second
)

// NoiseFunc returns the noise source for one interpolation.
type NoiseFunc func(loc weather.LocationInfo, date time.Time) weather.Noise

// TimeSeededNoise gives every call its own *rand.Rand.
func TimeSeededNoise(weather.LocationInfo, time.Time) weather.Noise {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// DailyBackend serves dates four to seven days out by interpolating the
// provider's daily summary into hours. The request covers today through
// today+7.
type DailyBackend struct {
	client  *Client
	cache   resultCache
	timeout time.Duration
	zone    *time.Location
	interp  weather.Interpolator
	noise   NoiseFunc
	now     func() time.Time
	log     logger.Logger
}

// NewDailyBackend creates a DailyBackend. A nil noise uses TimeSeededNoise.
func NewDailyBackend(client *Client, cfg BackendConfig, noise NoiseFunc) *DailyBackend {
	cfg = cfg.withDefaults(DefaultDailyTTL, DefaultDailyTimeout)
	if noise == nil {
		noise = TimeSeededNoise
	}
	return &DailyBackend{
		client:  client,
		cache:   resultCache{cache: cfg.Cache, ttl: cfg.TTL},
		timeout: cfg.Timeout,
		zone:    cfg.Zone,
		interp:  weather.NewInterpolator(),
		noise:   noise,
		now:     time.Now,
		log:     cfg.Logger.WithField("component", "daily_backend"),
	}
}

func (b *DailyBackend) Source() weather.Source { return weather.SourceDailyAPI }

// Fetch finds date in the provider window and expands it into 24 points.
func (b *DailyBackend) Fetch(ctx context.Context, loc weather.LocationInfo, date time.Time) (weather.ForecastResult, error) {
	key := weather.CacheKey(weather.TierDaily, loc, date)
	if res, ok := b.cache.get(key); ok {
		return res, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	env, err := b.client.fetch(callCtx, weather.TierDaily, loc, map[string]string{
		"dailysteps": strconv.Itoa(dailySteps),
		"alert":      "true",
	}, b.cache.ttl)
	if err != nil {
		return weather.ForecastResult{}, err
	}

	zone := env.zone(b.zone)
	days, err := env.Result.Daily.days(zone)
	if err != nil {
		return weather.ForecastResult{}, err
	}

	day, ok := findDay(days, date)
	if !ok {
		return weather.ForecastResult{}, weather.NewError(weather.KindDateOutOfRange, "select day",
			"%s is outside the provider window %s..%s", date.Format(weather.DateLayout),
			days[0].Date.Format(weather.DateLayout), days[len(days)-1].Date.Format(weather.DateLayout))
	}

	points, err := b.interp.Expand(day, b.noise(loc, date))
	if err != nil {
		b.log.Warnf("%s %s: using linear curve: %v", weather.LocationKey(loc), day, err)
	}

	res := weather.ForecastResult{
		Source:          weather.SourceDailyAPI,
		HourlyPoints:    points,
		ConfidenceScore: weather.ConfidenceDaily,
		GeneratedAt:     b.now().UTC(),
	}
	b.cache.put(callCtx, key, res)
	return res, nil
}

// findDay matches on the calendar date, not the exact timestamp.
func findDay(days []weather.DaySummary, date time.Time) (weather.DaySummary, bool) {
	y, m, d := date.Date()
	for _, day := range days {
		dy, dm, dd := day.Date.Date()
		if dy == y && dm == m && dd == d {
			return day, true
		}
	}
	return weather.DaySummary{}, false
}
