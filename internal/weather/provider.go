package weather

import (
	"context"
	"time"
)

// Backend is a live data tier (hourly or daily provider data).
type Backend interface {
	Source() Source
	Fetch(ctx context.Context, loc LocationInfo, date time.Time) (ForecastResult, error)
}

// Simulator is the last-resort tier. It never fails.
type Simulator interface {
	Generate(loc LocationInfo, date time.Time) ForecastResult
}

// Cache is the result cache shared by the backends.
type Cache interface {
	Get(key string) (ForecastResult, bool)
	Set(key string, value ForecastResult, ttl time.Duration)
}

// Noise supplies standard normal samples. *rand.Rand satisfies it.
type Noise interface {
	NormFloat64() float64
}

// ZeroNoise always returns 0, producing the noise-free curve.
type ZeroNoise struct{}

func (ZeroNoise) NormFloat64() float64 { return 0 }
