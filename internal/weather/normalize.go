package weather

import (
	"math"
	"sort"
	"time"
)

// Physical bounds enforced on every point.
const (
	MinTemperatureC = -50.0
	MaxTemperatureC = 60.0
)

// FillDay places points into the 24 hourly slots of the day starting at
// dayStart. Points outside the day are dropped; when two points share a
// slot the first wins. Empty slots copy the nearest earlier filled slot (or
// the nearest later one at the start of the day) and are flagged
// Interpolated. It returns nil when no point falls inside the day.
func FillDay(points []HourlyPoint, dayStart time.Time) []HourlyPoint {
	slots := make([]*HourlyPoint, HoursPerDay)
	filled := 0
	for i := range points {
		offset := points[i].Time.Sub(dayStart)
		if offset < 0 || offset >= HoursPerDay*time.Hour {
			continue
		}
		h := int(offset / time.Hour)
		if slots[h] != nil {
			continue
		}
		p := points[i]
		slots[h] = &p
		filled++
	}
	if filled == 0 {
		return nil
	}

	out := make([]HourlyPoint, HoursPerDay)
	for h := range slots {
		if slots[h] != nil {
			out[h] = *slots[h]
			continue
		}
		src := nearestFilled(slots, h)
		p := *slots[src]
		p.Time = dayStart.Add(time.Duration(h) * time.Hour)
		p.Interpolated = true
		out[h] = p
	}
	return out
}

func nearestFilled(slots []*HourlyPoint, h int) int {
	for i := h - 1; i >= 0; i-- {
		if slots[i] != nil {
			return i
		}
	}
	for i := h + 1; i < len(slots); i++ {
		if slots[i] != nil {
			return i
		}
	}
	return -1
}

// Normalize returns a copy of res with exactly 24 points sorted by time,
// point invariants enforced, the confidence clamped and the source set.
// res itself is left untouched.
func Normalize(res ForecastResult, source Source) (ForecastResult, error) {
	if len(res.HourlyPoints) == 0 {
		return ForecastResult{}, NewError(KindDataParse, "normalize", "%s returned no hourly points", source)
	}

	points := make([]HourlyPoint, len(res.HourlyPoints))
	copy(points, res.HourlyPoints)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })

	if len(points) != HoursPerDay || !hourly(points) {
		first := points[0].Time
		points = FillDay(points, DayStart(first, first.Location()))
	}

	for i := range points {
		p := &points[i]
		p.TemperatureC = clamp(p.TemperatureC, MinTemperatureC, MaxTemperatureC)
		p.HumidityPct = clamp(p.HumidityPct, 0, 100)
		p.WindSpeedMS = math.Max(0, p.WindSpeedMS)
		if p.Condition == "" {
			p.Condition = ConditionUnknown
		}
	}

	out := res
	out.Source = source
	out.HourlyPoints = points
	out.ConfidenceScore = clamp(res.ConfidenceScore, 0, 1)
	if out.GeneratedAt.IsZero() {
		out.GeneratedAt = time.Now().UTC()
	}
	return out, nil
}

// hourly reports whether points are spaced exactly one hour apart.
func hourly(points []HourlyPoint) bool {
	for i := 1; i < len(points); i++ {
		if points[i].Time.Sub(points[i-1].Time) != time.Hour {
			return false
		}
	}
	return true
}
