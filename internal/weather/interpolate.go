package weather

import (
	"fmt"
	"math"
	"time"
)

const (
	tempNoiseC       = 0.5
	windNoiseMS      = 0.2
	humidityNoisePct = 2.0

	humidityFloor   = 30.0
	humidityCeiling = 95.0

	// DefaultMaxStepC is the largest allowed temperature change between
	// adjacent hours.
	DefaultMaxStepC = 5.0
)

// Interpolator expands a DaySummary into 24 hourly points.
type Interpolator struct {
	MaxStepC float64
}

// NewInterpolator returns an Interpolator with the default continuity limit.
func NewInterpolator() Interpolator {
	return Interpolator{MaxStepC: DefaultMaxStepC}
}

// Expand builds the 24-hour curve for day. When the noisy curve fails
// validation the noise-free linear curve is returned instead, together with
// the KindInterpolation error describing why. The returned points are valid
// in both cases.
func (in Interpolator) Expand(day DaySummary, noise Noise) ([]HourlyPoint, error) {
	if noise == nil {
		noise = ZeroNoise{}
	}
	day = orderedDay(day)

	points := in.curve(day, noise)
	if err := in.Validate(points); err != nil {
		return in.linear(day), err
	}
	return points, nil
}

// Validate checks length and hour-to-hour temperature continuity.
func (in Interpolator) Validate(points []HourlyPoint) error {
	if len(points) < HoursPerDay {
		return NewError(KindInterpolation, "validate curve", "%d points, want %d", len(points), HoursPerDay)
	}
	limit := in.maxStep()
	for i := 1; i < len(points); i++ {
		if d := math.Abs(points[i].TemperatureC - points[i-1].TemperatureC); d > limit {
			return NewError(KindInterpolation, "validate curve",
				"hour %d->%d changes %.2f°C (limit %.1f)", i-1, i, d, limit)
		}
	}
	return nil
}

func (in Interpolator) maxStep() float64 {
	if in.MaxStepC <= 0 {
		return DefaultMaxStepC
	}
	return in.MaxStepC
}

func (in Interpolator) curve(day DaySummary, noise Noise) []HourlyPoint {
	points := make([]HourlyPoint, 0, HoursPerDay)
	for h := 0; h < HoursPerDay; h++ {
		hf := float64(h)

		temp := shapeTemperature(day, hf) + noise.NormFloat64()*tempNoiseC
		temp = clamp(temp, day.TempMin-1, day.TempMax+1)

		wind := shapeWind(day, hf) + noise.NormFloat64()*windNoiseMS

		humidity := shapeHumidity(day, hf, temp) + noise.NormFloat64()*humidityNoisePct

		points = append(points, dayPoint(day, h, temp, wind, humidity))
	}
	return points
}

// linear is the fallback: min at midnight up to max at 14:00, back down to
// min at midnight, with no noise and steps capped at the continuity limit.
func (in Interpolator) linear(day DaySummary) []HourlyPoint {
	limit := in.maxStep()
	span := day.TempMax - day.TempMin

	points := make([]HourlyPoint, 0, HoursPerDay)
	for h := 0; h < HoursPerDay; h++ {
		hf := float64(h)

		var temp float64
		if h <= 14 {
			temp = day.TempMin + span*hf/14
		} else {
			temp = day.TempMax - span*(hf-14)/10
		}
		if h > 0 {
			prev := points[h-1].TemperatureC
			temp = clamp(temp, prev-limit, prev+limit)
		}

		points = append(points, dayPoint(day, h, temp, shapeWind(day, hf), shapeHumidity(day, hf, temp)))
	}
	return points
}

func shapeTemperature(day DaySummary, h float64) float64 {
	switch {
	case h <= 6:
		return day.TempAvg + (day.TempMin-day.TempAvg)*(h/6)
	case h <= 14:
		return day.TempMin + (day.TempMax-day.TempMin)*((h-6)/8)
	default:
		return day.TempMax + (day.TempMin-day.TempMax)*((h-14)/10)
	}
}

// shapeWind peaks at 15:00.
func shapeWind(day DaySummary, h float64) float64 {
	return day.WindAvg + (day.WindMax-day.WindAvg)*math.Exp(-math.Pow(h-15, 2)/50)
}

func shapeHumidity(day DaySummary, h, temp float64) float64 {
	return day.HumidityAvg - 2.0*(temp-day.TempAvg) + 5*math.Cos((h-6)*math.Pi/12)
}

func dayPoint(day DaySummary, h int, temp, wind, humidity float64) HourlyPoint {
	return HourlyPoint{
		Time:             day.Date.Add(time.Duration(h) * time.Hour),
		TemperatureC:     clamp(temp, MinTemperatureC, MaxTemperatureC),
		Condition:        day.Condition,
		WindSpeedMS:      math.Max(0, wind),
		WindDirectionDeg: day.WindDirectionDeg,
		HumidityPct:      clamp(humidity, humidityFloor, humidityCeiling),
		PressureHPa:      day.PressureHPa,
		VisibilityKm:     day.VisibilityKm,
		PrecipitationMm:  day.PrecipitationMm,
		UVIndex:          day.UVIndex,
		AQI:              day.AQI,
		Interpolated:     true,
	}
}

// orderedDay repairs swapped extremes and an average outside them.
func orderedDay(day DaySummary) DaySummary {
	if day.TempMin > day.TempMax {
		day.TempMin, day.TempMax = day.TempMax, day.TempMin
	}
	day.TempAvg = clamp(day.TempAvg, day.TempMin, day.TempMax)
	if day.WindMax < day.WindAvg {
		day.WindMax = day.WindAvg
	}
	return day
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// String is used in log lines.
func (d DaySummary) String() string {
	return fmt.Sprintf("%s %.1f..%.1f°C avg %.1f %s", d.Date.Format(DateLayout), d.TempMin, d.TempMax, d.TempAvg, d.Condition)
}
