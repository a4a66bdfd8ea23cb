package testutils

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/i474232898/weather-forecast-router/internal/weather"
)

// MockBackend is a mock implementation of weather.Backend.
type MockBackend struct {
	mock.Mock
	source weather.Source
}

// NewMockBackend returns a MockBackend reporting source.
func NewMockBackend(source weather.Source) *MockBackend {
	return &MockBackend{source: source}
}

func (m *MockBackend) Source() weather.Source { return m.source }

func (m *MockBackend) Fetch(ctx context.Context, loc weather.LocationInfo, date time.Time) (weather.ForecastResult, error) {
	args := m.Called(ctx, loc, date)
	return args.Get(0).(weather.ForecastResult), args.Error(1)
}

// MockSimulator is a mock implementation of weather.Simulator.
type MockSimulator struct {
	mock.Mock
}

func (m *MockSimulator) Generate(loc weather.LocationInfo, date time.Time) weather.ForecastResult {
	args := m.Called(loc, date)
	return args.Get(0).(weather.ForecastResult)
}

// MockCache is a mock implementation of weather.Cache.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(key string) (weather.ForecastResult, bool) {
	args := m.Called(key)
	return args.Get(0).(weather.ForecastResult), args.Bool(1)
}

func (m *MockCache) Set(key string, value weather.ForecastResult, ttl time.Duration) {
	m.Called(key, value, ttl)
}

// Day builds 24 hourly points starting at dayStart with a constant
// temperature.
func Day(dayStart time.Time, tempC float64) []weather.HourlyPoint {
	points := make([]weather.HourlyPoint, weather.HoursPerDay)
	for h := range points {
		points[h] = weather.HourlyPoint{
			Time:         dayStart.Add(time.Duration(h) * time.Hour),
			TemperatureC: tempC,
			Condition:    weather.ConditionClear,
			HumidityPct:  60,
			WindSpeedMS:  2,
		}
	}
	return points
}

// Result wraps Day into a ForecastResult for source.
func Result(source weather.Source, dayStart time.Time, confidence float64) weather.ForecastResult {
	return weather.ForecastResult{
		Source:          source,
		HourlyPoints:    Day(dayStart, 20),
		ConfidenceScore: confidence,
		GeneratedAt:     dayStart,
	}
}
