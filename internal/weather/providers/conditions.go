package providers

import (
	"github.com/i474232898/weather-forecast-router/internal/common"
	"github.com/i474232898/weather-forecast-router/internal/weather"
)

// mapSkycon converts provider sky condition codes (CLEAR_DAY, LIGHT_RAIN,
// MODERATE_HAZE, ...) to a Condition.
func mapSkycon(code string) weather.Condition {
	switch {
	case code == "":
		return weather.ConditionUnknown
	case common.HasAny(code, "storm_rain", "thunder"):
		return weather.ConditionStorm
	case common.HasAny(code, "partly"):
		return weather.ConditionPartlyCloudy
	case common.HasAny(code, "clear", "sunny"):
		return weather.ConditionClear
	case common.HasAny(code, "rain", "drizzle", "shower"):
		return weather.ConditionRain
	case common.HasAny(code, "snow", "sleet"):
		return weather.ConditionSnow
	case common.HasAny(code, "cloud", "overcast"):
		return weather.ConditionCloudy
	case common.HasAny(code, "haze"):
		return weather.ConditionHaze
	case common.HasAny(code, "fog", "mist"):
		return weather.ConditionFog
	case common.HasAny(code, "dust", "sand"):
		return weather.ConditionDust
	case common.HasAny(code, "wind"):
		return weather.ConditionWind
	default:
		return weather.ConditionUnknown
	}
}
