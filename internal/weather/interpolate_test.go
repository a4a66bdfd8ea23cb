package weather

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// swingNoise alternates between +amp and -amp.
type swingNoise struct {
	amp float64
	n   int
}

func (s *swingNoise) NormFloat64() float64 {
	s.n++
	if s.n%2 == 0 {
		return -s.amp
	}
	return s.amp
}

func sampleDay() DaySummary {
	return DaySummary{
		Date:        time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC),
		TempMin:     10,
		TempMax:     20,
		TempAvg:     15,
		Condition:   ConditionPartlyCloudy,
		WindAvg:     3,
		WindMax:     6,
		HumidityAvg: 65,
		HumidityMax: 80,
		HumidityMin: 50,
		PressureHPa: 1008,
		AQI:         42,
	}
}

func TestExpandNoiseFreeShape(t *testing.T) {
	in := NewInterpolator()
	points, err := in.Expand(sampleDay(), ZeroNoise{})
	require.NoError(t, err)
	require.Len(t, points, HoursPerDay)

	assert.InDelta(t, 15, points[0].TemperatureC, 1e-9)
	assert.InDelta(t, 10, points[6].TemperatureC, 1e-9)
	assert.InDelta(t, 20, points[14].TemperatureC, 1e-9)

	for h, p := range points {
		assert.Equal(t, sampleDay().Date.Add(time.Duration(h)*time.Hour), p.Time)
		assert.True(t, p.Interpolated)
		assert.Equal(t, ConditionPartlyCloudy, p.Condition)
		assert.Equal(t, 1008.0, p.PressureHPa)
		assert.Equal(t, 42, p.AQI)
		assert.GreaterOrEqual(t, p.HumidityPct, 30.0)
		assert.LessOrEqual(t, p.HumidityPct, 95.0)
		assert.GreaterOrEqual(t, p.WindSpeedMS, 0.0)
	}

	// Wind peaks mid-afternoon.
	assert.InDelta(t, 6, points[15].WindSpeedMS, 1e-9)
	assert.Less(t, points[3].WindSpeedMS, points[15].WindSpeedMS)
}

func TestExpandKeepsContinuityWithNoise(t *testing.T) {
	in := NewInterpolator()
	points, err := in.Expand(sampleDay(), &swingNoise{amp: 1})
	require.NoError(t, err)
	assert.NoError(t, in.Validate(points))

	for _, p := range points {
		assert.GreaterOrEqual(t, p.TemperatureC, 9.0)
		assert.LessOrEqual(t, p.TemperatureC, 21.0)
	}
}

func TestExpandFallsBackToLinear(t *testing.T) {
	in := NewInterpolator()
	points, err := in.Expand(sampleDay(), &swingNoise{amp: 100})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInterpolation)
	require.Len(t, points, HoursPerDay)
	assert.NoError(t, in.Validate(points))

	assert.InDelta(t, 10, points[0].TemperatureC, 1e-9)
	assert.InDelta(t, 20, points[14].TemperatureC, 1e-9)
	assert.InDelta(t, 11, points[23].TemperatureC, 1e-9)
}

func TestLinearCapsSteps(t *testing.T) {
	in := Interpolator{MaxStepC: 2}
	day := sampleDay()
	day.TempMin, day.TempMax, day.TempAvg = -10, 40, 15

	points := in.linear(day)
	require.Len(t, points, HoursPerDay)
	assert.NoError(t, in.Validate(points))
}

func TestExpandRepairsSwappedExtremes(t *testing.T) {
	day := sampleDay()
	day.TempMin, day.TempMax = day.TempMax, day.TempMin
	day.TempAvg = 35

	points, err := NewInterpolator().Expand(day, ZeroNoise{})
	require.NoError(t, err)
	assert.InDelta(t, 10, points[6].TemperatureC, 1e-9)
	assert.InDelta(t, 20, points[14].TemperatureC, 1e-9)
	assert.InDelta(t, 20, points[0].TemperatureC, 1e-9, "average is clamped into min..max")
}

func TestValidate(t *testing.T) {
	in := NewInterpolator()

	err := in.Validate(make([]HourlyPoint, 12))
	assert.ErrorIs(t, err, ErrInterpolation)

	points := make([]HourlyPoint, HoursPerDay)
	points[10].TemperatureC = 5.5
	err = in.Validate(points)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hour 9->10")

	points[10].TemperatureC = 5
	assert.NoError(t, in.Validate(points))
}

func TestShapeTemperatureMonotoneSegments(t *testing.T) {
	day := sampleDay()
	for h := 1; h <= 6; h++ {
		assert.LessOrEqual(t, shapeTemperature(day, float64(h)), shapeTemperature(day, float64(h-1)))
	}
	for h := 7; h <= 14; h++ {
		assert.GreaterOrEqual(t, shapeTemperature(day, float64(h)), shapeTemperature(day, float64(h-1)))
	}
	for h := 15; h < 24; h++ {
		assert.LessOrEqual(t, shapeTemperature(day, float64(h)), shapeTemperature(day, float64(h-1)))
	}
	assert.False(t, math.IsNaN(shapeHumidity(day, 3, 12)))
}
