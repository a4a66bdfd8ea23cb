package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/weather-forecast-router/internal/weather"
)

type AppConfig struct {
	Port     string `mapstructure:"port"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	// Upstream provider.
	ProviderBaseURL string        `mapstructure:"provider_base_url"`
	ProviderAPIKey  string        `mapstructure:"provider_api_key"`
	ProviderRPS     float64       `mapstructure:"provider_rps"`
	ProviderBurst   int           `mapstructure:"provider_burst"`
	HourlyTimeout   time.Duration `mapstructure:"hourly_timeout"`
	DailyTimeout    time.Duration `mapstructure:"daily_timeout"`

	// Result cache.
	HourlyTTL          time.Duration `mapstructure:"hourly_ttl"`
	DailyTTL           time.Duration `mapstructure:"daily_ttl"`
	CacheMaxEntries    int           `mapstructure:"cache_max_entries"`
	CacheSweepInterval time.Duration `mapstructure:"cache_sweep_interval"`

	// Optional shared tier; empty RedisAddr disables it.
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	// Timezone is where "today" and provider days without tzshift are read.
	Timezone string `mapstructure:"forecast_timezone"`

	RetryMaxAttempts int           `mapstructure:"retry_max_attempts"`
	RetryBaseDelay   time.Duration `mapstructure:"retry_base_delay"`

	// Warm-up of frequently requested locations.
	WarmLocations []weather.LocationInfo `mapstructure:"-"`
	WarmInterval  time.Duration          `mapstructure:"warm_interval"`
	WarmDays      int                    `mapstructure:"warm_days"`
}

var keys = map[string]interface{}{
	"port":                 "8080",
	"app_env":              "development",
	"log_level":            "info",
	"provider_base_url":    "https://api.caiyunapp.com/v2.6",
	"provider_api_key":     "",
	"provider_rps":         5.0,
	"provider_burst":       5,
	"hourly_timeout":       "10s",
	"daily_timeout":        "15s",
	"hourly_ttl":           "30m",
	"daily_ttl":            "2h",
	"cache_max_entries":    1000,
	"cache_sweep_interval": "5m",
	"redis_addr":           "",
	"redis_password":       "",
	"redis_db":             0,
	"forecast_timezone":    "Asia/Shanghai",
	"retry_max_attempts":   3,
	"retry_base_delay":     "1s",
	"warm_locations":       "",
	"warm_interval":        "30m",
	"warm_days":            3,
}

// LoadDotEnv copies a .env file in the working directory into the process
// environment. Variables already set win. The error is informational; a
// missing file is normal outside development.
func LoadDotEnv() error {
	return godotenv.Load()
}

// Load reads configuration from an optional config.yaml and the environment,
// in increasing priority, with sensible defaults. Call LoadDotEnv first to
// pick up a .env file.
func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	for key, def := range keys {
		v.SetDefault(key, def)
		// Bind explicitly so Unmarshal sees variables absent from the file.
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	locs, err := ParseLocations(v.GetString("warm_locations"))
	if err != nil {
		return nil, fmt.Errorf("invalid WARM_LOCATIONS: %w", err)
	}
	cfg.WarmLocations = locs

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	if c.ProviderBaseURL == "" {
		return errors.New("PROVIDER_BASE_URL must not be empty")
	}
	if c.CacheMaxEntries <= 0 {
		return errors.New("CACHE_MAX_ENTRIES must be positive")
	}
	if c.CacheSweepInterval <= 0 {
		return errors.New("CACHE_SWEEP_INTERVAL must be positive")
	}
	if c.RetryMaxAttempts <= 0 {
		return errors.New("RETRY_MAX_ATTEMPTS must be positive")
	}
	if c.WarmDays < 0 || c.WarmDays > weather.DailyMaxDays {
		return fmt.Errorf("WARM_DAYS must be within 0..%d", weather.DailyMaxDays)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone, falling back to a fixed UTC+8 zone when the
// tz database lacks Asia/Shanghai.
func (c *AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err == nil {
		return loc, nil
	}
	if c.Timezone == "Asia/Shanghai" {
		return time.FixedZone("CST", 8*3600), nil
	}
	return nil, fmt.Errorf("invalid FORECAST_TIMEZONE %q: %w", c.Timezone, err)
}

// ParseLocations parses "name:lng:lat[:adcode];..." entries.
func ParseLocations(s string) ([]weather.LocationInfo, error) {
	var locs []weather.LocationInfo
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, ":")
		if len(parts) < 3 || len(parts) > 4 {
			return nil, fmt.Errorf("%q: want name:lng:lat[:adcode]", item)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: longitude: %w", item, err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: latitude: %w", item, err)
		}
		loc := weather.LocationInfo{Name: strings.TrimSpace(parts[0]), Longitude: lng, Latitude: lat}
		if len(parts) == 4 {
			loc.AdminCode = strings.TrimSpace(parts[3])
		}
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("%q: %w", item, err)
		}
		locs = append(locs, loc)
	}
	return locs, nil
}
