package weather

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionFog     Condition = "fog"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
)

// HourlyObservation is one hour of historical weather at a location.
type HourlyObservation struct {
	Time             string  `json:"time"` // local time, YYYY-MM-DDTHH:MM
	TemperatureC     float64 `json:"temperature"`
	ApparentC        float64 `json:"apparent_temperature"`
	HumidityPct      float64 `json:"humidity"`
	PrecipMm         float64 `json:"precipitation"`
	WindSpeedKmh     float64 `json:"wind_speed"`
	WindDirectionDeg float64 `json:"wind_direction"`
	PressureHpa      float64 `json:"pressure"`
	CloudCoverPct    float64 `json:"cloud_cover"`
	WeatherCode      int     `json:"weather_code"`
}

// Units maps observation field names to the unit strings reported by the
// provider, e.g. "temperature" -> "°C".
type Units map[string]string

// Report is the answer to a historical weather query: the single hourly
// record matching the requested hour, plus units metadata.
type Report struct {
	Observation HourlyObservation `json:"observation"`
	Condition   Condition         `json:"condition"`
	Units       Units             `json:"units"`
	Timezone    string            `json:"timezone,omitempty"`
}

// ConditionFromCode maps a WMO weather code to a normalized Condition.
func ConditionFromCode(code int) Condition {
	switch {
	case code == 0:
		return ConditionClear
	case code >= 1 && code <= 3:
		return ConditionCloudy
	case code == 45 || code == 48:
		return ConditionFog
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return ConditionSnow
	case code >= 95:
		return ConditionStorm
	default:
		return ConditionUnknown
	}
}
