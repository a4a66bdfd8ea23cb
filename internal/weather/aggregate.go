package weather

import "math"

// DayOverview is a compact view of a ForecastResult for text formatting.
type DayOverview struct {
	TempMinC       float64   `json:"tempMinC"`
	TempMaxC       float64   `json:"tempMaxC"`
	TempAvgC       float64   `json:"tempAvgC"`
	HumidityAvgPct float64   `json:"humidityAvgPct"`
	WindMaxMS      float64   `json:"windMaxMs"`
	PrecipPeakMm   float64   `json:"precipitationPeakMm"`
	Condition      Condition `json:"condition"`
}

// Summarize combines hourly points into a DayOverview.
// Temperature and humidity are averaged, wind and precipitation report the
// peak hour, and the condition is selected by majority (first seen on ties).
func Summarize(points []HourlyPoint) DayOverview {
	if len(points) == 0 {
		return DayOverview{Condition: ConditionUnknown}
	}

	var (
		sumTemp     float64
		sumHumidity float64
		minTemp     = math.Inf(1)
		maxTemp     = math.Inf(-1)
		maxWind     float64
		maxPrecip   float64
	)

	conditionCounts := make(map[Condition]int)
	var order []Condition

	for _, p := range points {
		sumTemp += p.TemperatureC
		sumHumidity += p.HumidityPct
		minTemp = math.Min(minTemp, p.TemperatureC)
		maxTemp = math.Max(maxTemp, p.TemperatureC)
		maxWind = math.Max(maxWind, p.WindSpeedMS)
		maxPrecip = math.Max(maxPrecip, p.PrecipitationMm)

		if conditionCounts[p.Condition] == 0 {
			order = append(order, p.Condition)
		}
		conditionCounts[p.Condition]++
	}

	n := float64(len(points))

	// Pick majority condition.
	bestCond := ConditionUnknown
	bestCount := 0
	for _, cond := range order {
		if count := conditionCounts[cond]; count > bestCount {
			bestCount = count
			bestCond = cond
		}
	}

	return DayOverview{
		TempMinC:       minTemp,
		TempMaxC:       maxTemp,
		TempAvgC:       sumTemp / n,
		HumidityAvgPct: sumHumidity / n,
		WindMaxMS:      maxWind,
		PrecipPeakMm:   maxPrecip,
		Condition:      bestCond,
	}
}
