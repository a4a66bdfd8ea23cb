package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-forecast-router/internal/api/http"
	"github.com/i474232898/weather-forecast-router/internal/cache"
	"github.com/i474232898/weather-forecast-router/internal/config"
	"github.com/i474232898/weather-forecast-router/internal/logger"
	"github.com/i474232898/weather-forecast-router/internal/scheduler"
	"github.com/i474232898/weather-forecast-router/internal/weather"
	"github.com/i474232898/weather-forecast-router/internal/weather/providers"
)

// resultCache is what the backends, the sweep job and the stats endpoint
// need from the cache.
type resultCache interface {
	weather.Cache
	Sweep() int
	Stats() cache.Stats
}

func main() {
	started := time.Now()

	// Load configuration.
	envErr := config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLog := logger.New(cfg.LogLevel, cfg.Env)
	if envErr != nil {
		appLog.Infof("no .env file loaded: %v", envErr)
	}

	zone, err := cfg.Location()
	if err != nil {
		appLog.Fatalf("invalid timezone: %v", err)
	}

	// In-process LRU, optionally backed by Redis.
	mem := cache.NewMemory(cfg.CacheMaxEntries)
	var results resultCache = mem
	var redisCache *cache.Redis
	if cfg.RedisAddr != "" {
		redisCache, err = cache.NewRedis(context.Background(), cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, appLog)
		if err != nil {
			appLog.Warnf("redis unavailable, using in-process cache only: %v", err)
		} else {
			results = cache.NewTiered(mem, redisCache, 0, appLog)
		}
	}

	// Shared HTTP client for outbound provider calls. Per-call deadlines
	// come from the backend timeouts.
	client := providers.NewClient(providers.ClientConfig{
		BaseURL:           cfg.ProviderBaseURL,
		APIKey:            cfg.ProviderAPIKey,
		HTTPClient:        &http.Client{Timeout: 30 * time.Second},
		RequestsPerSecond: cfg.ProviderRPS,
		Burst:             cfg.ProviderBurst,
	}, appLog)

	hourly := providers.NewHourlyBackend(client, providers.BackendConfig{
		Cache:   results,
		TTL:     cfg.HourlyTTL,
		Timeout: cfg.HourlyTimeout,
		Zone:    zone,
		Logger:  appLog,
	})
	daily := providers.NewDailyBackend(client, providers.BackendConfig{
		Cache:   results,
		TTL:     cfg.DailyTTL,
		Timeout: cfg.DailyTimeout,
		Zone:    zone,
		Logger:  appLog,
	}, nil)
	sim := weather.NewSimulationBackend(zone, appLog)

	router := weather.NewRouter(hourly, daily, sim,
		weather.WithZone(zone),
		weather.WithLogger(appLog),
		weather.WithRetryPolicy(weather.RetryPolicy{
			MaxAttempts: cfg.RetryMaxAttempts,
			Backoff:     weather.ExponentialBackoff(cfg.RetryBaseDelay),
			Retryable:   weather.IsRetryable,
		}),
	)

	// Cache sweep and warm-up of configured locations.
	sched := scheduler.New(scheduler.Config{
		SweepInterval: cfg.CacheSweepInterval,
		Locations:     cfg.WarmLocations,
		WarmInterval:  cfg.WarmInterval,
		WarmDays:      cfg.WarmDays,
	}, router, results, appLog)
	if err := sched.Start(); err != nil {
		appLog.Fatalf("failed to start scheduler: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               "weather-forecast-router",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", httpapi.Health(started))
	httpapi.RegisterRoutes(app, router, results, appLog)

	go func() {
		appLog.Infof("listening on :%s (zone %s)", cfg.Port, zone)
		if err := app.Listen(":" + cfg.Port); err != nil {
			appLog.Errorf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	appLog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLog.Errorf("error during shutdown: %v", err)
	}
	sched.Stop()
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			appLog.Errorf("closing redis: %v", err)
		}
	}
}
