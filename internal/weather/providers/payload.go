package providers

import (
	"time"

	"github.com/i474232898/weather-forecast-router/internal/weather"
)

const (
	hourlySteps = 72

	// The daily window starts today, so day +7 needs an eighth entry.
	dailySteps = weather.DailyMaxDays + 1
)

// hourlyBlock holds parallel per-hour arrays indexed like Time.
type hourlyBlock struct {
	Status        string    `json:"status"`
	Time          []int64   `json:"time"`
	Temperature   []float64 `json:"temperature"`
	Humidity      []float64 `json:"humidity"`
	WindSpeed     []float64 `json:"wind_speed"`
	WindDirection []float64 `json:"wind_direction"`
	Pressure      []float64 `json:"pressure"`
	Visibility    []float64 `json:"visibility"`
	Precipitation []float64 `json:"precipitation"`
	Ultraviolet   []float64 `json:"ultraviolet"`
	AQI           []int     `json:"aqi"`
	Skycon        []string  `json:"skycon"`
}

// dailyBlock holds parallel per-day arrays indexed like Time.
type dailyBlock struct {
	Status         string    `json:"status"`
	Time           []int64   `json:"time"`
	TemperatureMax []float64 `json:"temperature_max"`
	TemperatureMin []float64 `json:"temperature_min"`
	TemperatureAvg []float64 `json:"temperature_avg"`
	HumidityMax    []float64 `json:"humidity_max"`
	HumidityMin    []float64 `json:"humidity_min"`
	HumidityAvg    []float64 `json:"humidity_avg"`
	WindSpeedMax   []float64 `json:"wind_speed_max"`
	WindSpeedAvg   []float64 `json:"wind_speed_avg"`
	WindDirection  []float64 `json:"wind_direction"`
	Pressure       []float64 `json:"pressure"`
	Visibility     []float64 `json:"visibility"`
	Precipitation  []float64 `json:"precipitation"`
	Ultraviolet    []float64 `json:"ultraviolet"`
	AQI            []int     `json:"aqi"`
	Skycon         []string  `json:"skycon"`
}

// lengths checks required arrays have exactly want entries and optional
// arrays are either absent or just as long.
type lengths struct {
	op   string
	want int
	err  error
}

func (l *lengths) required(name string, got int) {
	if l.err == nil && got != l.want {
		l.err = weather.NewError(weather.KindDataParse, l.op, "%s has %d entries, want %d", name, got, l.want)
	}
}

func (l *lengths) optional(name string, got int) {
	if got != 0 {
		l.required(name, got)
	}
}

func (b *hourlyBlock) points() ([]weather.HourlyPoint, error) {
	const op = "parse hourly"
	if b == nil {
		return nil, weather.NewError(weather.KindDataParse, op, "result.hourly is missing")
	}

	l := lengths{op: op, want: hourlySteps}
	l.required("time", len(b.Time))
	l.required("temperature", len(b.Temperature))
	l.required("humidity", len(b.Humidity))
	l.required("wind_speed", len(b.WindSpeed))
	l.required("skycon", len(b.Skycon))
	l.optional("wind_direction", len(b.WindDirection))
	l.optional("pressure", len(b.Pressure))
	l.optional("visibility", len(b.Visibility))
	l.optional("precipitation", len(b.Precipitation))
	l.optional("ultraviolet", len(b.Ultraviolet))
	l.optional("aqi", len(b.AQI))
	if l.err != nil {
		return nil, l.err
	}

	points := make([]weather.HourlyPoint, 0, len(b.Time))
	for i, ts := range b.Time {
		points = append(points, weather.HourlyPoint{
			Time:             time.Unix(ts, 0),
			TemperatureC:     b.Temperature[i],
			Condition:        mapSkycon(b.Skycon[i]),
			WindSpeedMS:      b.WindSpeed[i],
			WindDirectionDeg: at(b.WindDirection, i),
			HumidityPct:      b.Humidity[i],
			PressureHPa:      at(b.Pressure, i),
			VisibilityKm:     at(b.Visibility, i),
			PrecipitationMm:  at(b.Precipitation, i),
			UVIndex:          at(b.Ultraviolet, i),
			AQI:              at(b.AQI, i),
		})
	}
	return points, nil
}

func (b *dailyBlock) days(zone *time.Location) ([]weather.DaySummary, error) {
	const op = "parse daily"
	if b == nil {
		return nil, weather.NewError(weather.KindDataParse, op, "result.daily is missing")
	}

	l := lengths{op: op, want: dailySteps}
	l.required("time", len(b.Time))
	l.required("temperature_max", len(b.TemperatureMax))
	l.required("temperature_min", len(b.TemperatureMin))
	l.required("temperature_avg", len(b.TemperatureAvg))
	l.required("humidity_avg", len(b.HumidityAvg))
	l.required("wind_speed_avg", len(b.WindSpeedAvg))
	l.required("wind_speed_max", len(b.WindSpeedMax))
	l.required("skycon", len(b.Skycon))
	l.optional("humidity_max", len(b.HumidityMax))
	l.optional("humidity_min", len(b.HumidityMin))
	l.optional("wind_direction", len(b.WindDirection))
	l.optional("pressure", len(b.Pressure))
	l.optional("visibility", len(b.Visibility))
	l.optional("precipitation", len(b.Precipitation))
	l.optional("ultraviolet", len(b.Ultraviolet))
	l.optional("aqi", len(b.AQI))
	if l.err != nil {
		return nil, l.err
	}

	days := make([]weather.DaySummary, 0, len(b.Time))
	for i, ts := range b.Time {
		avgHumidity := b.HumidityAvg[i]
		days = append(days, weather.DaySummary{
			Date:             weather.DayStart(time.Unix(ts, 0).In(zone), zone),
			TempMax:          b.TemperatureMax[i],
			TempMin:          b.TemperatureMin[i],
			TempAvg:          b.TemperatureAvg[i],
			Condition:        mapSkycon(b.Skycon[i]),
			WindAvg:          b.WindSpeedAvg[i],
			WindMax:          b.WindSpeedMax[i],
			HumidityAvg:      avgHumidity,
			HumidityMax:      orDefault(b.HumidityMax, i, avgHumidity+10),
			HumidityMin:      orDefault(b.HumidityMin, i, avgHumidity-10),
			PrecipitationMm:  at(b.Precipitation, i),
			WindDirectionDeg: at(b.WindDirection, i),
			PressureHPa:      at(b.Pressure, i),
			VisibilityKm:     at(b.Visibility, i),
			UVIndex:          at(b.Ultraviolet, i),
			AQI:              at(b.AQI, i),
		})
	}
	return days, nil
}

func at[T any](xs []T, i int) T {
	var zero T
	if i >= len(xs) {
		return zero
	}
	return xs[i]
}

func orDefault(xs []float64, i int, def float64) float64 {
	if i >= len(xs) {
		return def
	}
	return xs[i]
}
