package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/i474232898/weather-forecast-router/internal/logger"
)

// Day ranges served by each live tier.
const (
	HourlyMaxDays = 3
	DailyMaxDays  = 7
)

// Router picks a tier from the distance to the target date and falls back
// one tier at a time when a live tier fails.
type Router struct {
	hourly Backend
	daily  Backend
	sim    Simulator

	retry RetryPolicy
	zone  *time.Location
	now   func() time.Time
	log   logger.Logger
}

// RouterOption customizes a Router.
type RouterOption func(*Router)

// WithRetryPolicy replaces DefaultRetryPolicy.
func WithRetryPolicy(p RetryPolicy) RouterOption {
	return func(r *Router) { r.retry = p }
}

// WithClock replaces time.Now, used to compute "today".
func WithClock(now func() time.Time) RouterOption {
	return func(r *Router) { r.now = now }
}

// WithZone sets the zone in which "today" and public dates are read.
func WithZone(zone *time.Location) RouterOption {
	return func(r *Router) { r.zone = zone }
}

// WithLogger sets the router logger.
func WithLogger(l logger.Logger) RouterOption {
	return func(r *Router) { r.log = l }
}

// NewRouter creates a Router. hourly and daily may be nil, in which case
// their ranges go straight to the next tier.
func NewRouter(hourly, daily Backend, sim Simulator, opts ...RouterOption) *Router {
	r := &Router{
		hourly: hourly,
		daily:  daily,
		sim:    sim,
		retry:  DefaultRetryPolicy(),
		zone:   time.UTC,
		now:    time.Now,
		log:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithField("component", "router")
	return r
}

// Zone returns the zone used for calendar arithmetic.
func (r *Router) Zone() *time.Location { return r.zone }

// Today is midnight of the current date in the router zone.
func (r *Router) Today() time.Time {
	return DayStart(r.now().In(r.zone), r.zone)
}

// SelectSource maps a non-negative day distance to its tier.
func SelectSource(daysFromNow int) Source {
	switch {
	case daysFromNow <= HourlyMaxDays:
		return SourceHourlyAPI
	case daysFromNow <= DailyMaxDays:
		return SourceDailyAPI
	default:
		return SourceSimulation
	}
}

func nextSource(s Source) Source {
	if s == SourceHourlyAPI {
		return SourceDailyAPI
	}
	return SourceSimulation
}

// GetForecast parses date (YYYY-MM-DD) in the router zone and routes it.
func (r *Router) GetForecast(ctx context.Context, loc LocationInfo, date string) (ForecastResult, error) {
	target, err := ParseDate(date, r.zone)
	if err != nil {
		return ForecastResult{}, err
	}
	return r.Forecast(ctx, loc, target)
}

// Forecast returns the 24-hour forecast of target's calendar date.
// A target at local midnight is read as that calendar date; any other
// instant is first converted to the router zone, so time.Now() always means
// today. Only caller errors (invalid input, unknown location, a date before
// today or outside the daily window) and cancellation of ctx are returned;
// other provider failures degrade to a lower tier.
func (r *Router) Forecast(ctx context.Context, loc LocationInfo, target time.Time) (ForecastResult, error) {
	if err := loc.Validate(); err != nil {
		return ForecastResult{}, err
	}

	if !isMidnight(target) {
		target = target.In(r.zone)
	}
	target = DayStart(target, r.zone)
	days := DaysBetween(r.Today(), target)
	if days < 0 {
		return ForecastResult{}, NewError(KindDateOutOfRange, "route",
			"%s is %d day(s) in the past", target.Format(DateLayout), -days)
	}

	log := r.log.WithFields(map[string]interface{}{
		"location": LocationKey(loc),
		"date":     target.Format(DateLayout),
		"days":     days,
	})

	for source := SelectSource(days); ; source = nextSource(source) {
		if source == SourceSimulation {
			return Normalize(r.sim.Generate(loc, target), SourceSimulation)
		}

		backend := r.backend(source)
		if backend == nil {
			log.Debugf("no %s backend configured", source)
			continue
		}

		res, err := r.fetch(ctx, backend, loc, target)
		if err == nil {
			log.Debugf("served by %s (cached=%t)", source, res.FromCache)
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ForecastResult{}, fmt.Errorf("forecast %s: %w", LocationKey(loc), ctxErr)
		}
		if IsCallerError(err) {
			return ForecastResult{}, err
		}
		log.Warnf("%s failed, falling back to %s: %v", source, nextSource(source), err)
	}
}

func isMidnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}

func (r *Router) backend(s Source) Backend {
	switch s {
	case SourceHourlyAPI:
		return r.hourly
	case SourceDailyAPI:
		return r.daily
	default:
		return nil
	}
}

func (r *Router) fetch(ctx context.Context, b Backend, loc LocationInfo, target time.Time) (ForecastResult, error) {
	var res ForecastResult
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		res, err = b.Fetch(ctx, loc, target)
		return err
	})
	if err != nil {
		return ForecastResult{}, err
	}
	return Normalize(res, b.Source())
}
