package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-forecast-router/internal/logger"
	"github.com/i474232898/weather-forecast-router/internal/weather"
)

const (
	defaultWarmInterval  = 30 * time.Minute
	defaultSweepInterval = 5 * time.Minute
	warmConcurrency      = 4
	warmTimeout          = time.Minute
)

// Forecaster produces forecasts for warm-up.
type Forecaster interface {
	Forecast(ctx context.Context, loc weather.LocationInfo, target time.Time) (weather.ForecastResult, error)
	Today() time.Time
}

// Sweeper drops expired cache entries.
type Sweeper interface {
	Sweep() int
}

// Config holds the job settings.
type Config struct {
	SweepInterval time.Duration

	// Locations are prefetched for today through WarmDays days ahead.
	Locations    []weather.LocationInfo
	WarmInterval time.Duration
	WarmDays     int
}

// Scheduler runs the periodic cache sweep and forecast warm-up.
type Scheduler struct {
	scheduler *gocron.Scheduler
	router    Forecaster
	cache     Sweeper
	cfg       Config
	log       logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Scheduler. router may be nil when no locations are
// configured.
func New(cfg Config, router Forecaster, cache Sweeper, log logger.Logger) *Scheduler {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.WarmInterval <= 0 {
		cfg.WarmInterval = defaultWarmInterval
	}
	if log == nil {
		log = logger.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		router:    router,
		cache:     cache,
		cfg:       cfg,
		log:       log.WithField("component", "scheduler"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.cache != nil {
		_, err := s.scheduler.Every(s.cfg.SweepInterval).WaitForSchedule().SingletonMode().Do(s.Sweep)
		if err != nil {
			return err
		}
	}

	if len(s.cfg.Locations) == 0 || s.router == nil {
		s.log.Info("no warm-up locations configured")
	} else {
		_, err := s.scheduler.Every(s.cfg.WarmInterval).SingletonMode().Do(func() {
			if err := s.Warm(s.ctx); err != nil {
				s.log.Warnf("warm-up stopped: %v", err)
			}
		})
		if err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// Sweep runs one cache sweep.
func (s *Scheduler) Sweep() {
	if n := s.cache.Sweep(); n > 0 {
		s.log.Debugf("swept %d expired cache entries", n)
	}
}

// Warm fetches every configured location for today through WarmDays ahead.
// Individual failures are logged; only cancellation of ctx is returned.
func (s *Scheduler) Warm(ctx context.Context) error {
	start := time.Now()
	today := s.router.Today()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)

	for _, loc := range s.cfg.Locations {
		for d := 0; d <= s.cfg.WarmDays; d++ {
			loc, target := loc, today.AddDate(0, 0, d)
			g.Go(func() error {
				callCtx, cancel := context.WithTimeout(gctx, warmTimeout)
				defer cancel()

				res, err := s.router.Forecast(callCtx, loc, target)
				if err != nil {
					if ctxErr := gctx.Err(); ctxErr != nil {
						return ctxErr
					}
					s.log.Warnf("warm %s %s: %v", weather.LocationKey(loc), target.Format(weather.DateLayout), err)
					return nil
				}
				s.log.Debugf("warmed %s %s from %s", weather.LocationKey(loc), target.Format(weather.DateLayout), res.Source)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	s.log.Infof("warm-up of %d location(s) finished in %s", len(s.cfg.Locations), time.Since(start).Round(time.Millisecond))
	return nil
}

// Stop stops the scheduler and cancels any running warm-up.
func (s *Scheduler) Stop() {
	s.cancel()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
