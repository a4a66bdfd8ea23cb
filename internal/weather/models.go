package weather

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown      Condition = "unknown"
	ConditionClear        Condition = "clear"
	ConditionPartlyCloudy Condition = "partly_cloudy"
	ConditionCloudy       Condition = "cloudy"
	ConditionRain         Condition = "rain"
	ConditionSnow         Condition = "snow"
	ConditionStorm        Condition = "storm"
	ConditionFog          Condition = "fog"
	ConditionHaze         Condition = "haze"
	ConditionWind         Condition = "wind"
	ConditionDust         Condition = "dust"
)

// Source identifies which tier produced a forecast.
type Source string

const (
	SourceHourlyAPI  Source = "HOURLY_API"
	SourceDailyAPI   Source = "DAILY_API"
	SourceSimulation Source = "SIMULATION"
)

// Confidence scores per tier.
const (
	ConfidenceHourly     = 0.95
	ConfidenceDaily      = 0.85
	ConfidenceSimulation = 0.4
)

// HoursPerDay is the fixed length of every ForecastResult.
const HoursPerDay = 24

// LocationInfo is a resolved place supplied by the caller.
type LocationInfo struct {
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	AdminCode string  `json:"adcode,omitempty"`
}

// Validate checks the coordinate ranges.
func (l LocationInfo) Validate() error {
	if err := validate.Struct(l); err != nil {
		return &Error{Kind: KindInvalidInput, Op: "validate location", Msg: err.Error()}
	}
	return nil
}

// HourlyPoint is one hour of weather.
type HourlyPoint struct {
	Time             time.Time `json:"time"`
	TemperatureC     float64   `json:"temperatureC"`
	Condition        Condition `json:"condition"`
	WindSpeedMS      float64   `json:"windSpeedMs"`
	WindDirectionDeg float64   `json:"windDirectionDeg"`
	HumidityPct      float64   `json:"humidityPct"`
	PressureHPa      float64   `json:"pressureHpa"`
	VisibilityKm     float64   `json:"visibilityKm"`
	PrecipitationMm  float64   `json:"precipitationMm"`
	UVIndex          float64   `json:"uvIndex"`
	AQI              int       `json:"aqi"`
	Interpolated     bool      `json:"interpolated"`
}

// ForecastResult is the uniform 24-point answer for one location and day.
// Values are shared between cache readers and must not be mutated.
type ForecastResult struct {
	Source          Source        `json:"source"`
	HourlyPoints    []HourlyPoint `json:"hourlyPoints"`
	ConfidenceScore float64       `json:"confidenceScore"`
	FromCache       bool          `json:"fromCache"`
	GeneratedAt     time.Time     `json:"generatedAt"`
}

// DaySummary is one day of provider data, the input of the Interpolator.
type DaySummary struct {
	Date            time.Time
	TempMax         float64
	TempMin         float64
	TempAvg         float64
	Condition       Condition
	WindAvg         float64
	WindMax         float64
	HumidityAvg     float64
	HumidityMax     float64
	HumidityMin     float64
	PrecipitationMm float64

	// Held constant across the day.
	WindDirectionDeg float64
	PressureHPa      float64
	VisibilityKm     float64
	UVIndex          float64
	AQI              int
}
