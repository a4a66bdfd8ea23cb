package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/i474232898/weather-forecast-router/internal/logger"
	"github.com/i474232898/weather-forecast-router/internal/weather"
)

// RedisOptions configures the shared cache tier.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key, e.g. "forecast:".
	Prefix string
}

// Redis stores forecasts as JSON so several service instances share one
// cache.
type Redis struct {
	client *redis.Client
	prefix string
	log    logger.Logger
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, opts RedisOptions, log logger.Logger) (*Redis, error) {
	if log == nil {
		log = logger.Discard()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "forecast:"
	}

	log = log.WithField("component", "redis_cache")
	log.Infof("redis cache connected to %s", opts.Addr)
	return &Redis{client: client, prefix: prefix, log: log}, nil
}

// Get returns the value and its remaining TTL, or ErrCacheMiss.
func (r *Redis) Get(ctx context.Context, key string) (weather.ForecastResult, time.Duration, error) {
	k := r.prefix + key

	data, err := r.client.Get(ctx, k).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return weather.ForecastResult{}, 0, ErrCacheMiss
		}
		return weather.ForecastResult{}, 0, fmt.Errorf("failed to get %s from Redis: %w", key, err)
	}

	ttl, err := r.client.PTTL(ctx, k).Result()
	if err != nil {
		return weather.ForecastResult{}, 0, fmt.Errorf("failed to read TTL of %s: %w", key, err)
	}
	if ttl <= 0 {
		// Expired between the two calls, or stored without expiry.
		return weather.ForecastResult{}, 0, ErrCacheMiss
	}

	var res weather.ForecastResult
	if err := json.Unmarshal(data, &res); err != nil {
		return weather.ForecastResult{}, 0, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return res, ttl, nil
}

// Set stores value with ttl.
func (r *Redis) Set(ctx context.Context, key string, value weather.ForecastResult, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in Redis: %w", key, err)
	}
	return nil
}

// Clear deletes every key under the prefix.
func (r *Redis) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete keys: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	r.log.Info("closing redis cache")
	return r.client.Close()
}
