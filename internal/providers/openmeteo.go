package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/histweather/histweather/internal/weather"
)

// archiveLagDays is how far the Open-Meteo archive trails the present;
// more recent dates are served by the forecast API instead.
const archiveLagDays = 6

var hourlyFields = []string{
	"temperature_2m",
	"apparent_temperature",
	"relative_humidity_2m",
	"precipitation",
	"wind_speed_10m",
	"wind_direction_10m",
	"surface_pressure",
	"cloud_cover",
	"weather_code",
}

// OpenMeteoProvider implements the weather.Provider interface against the
// Open-Meteo archive and forecast APIs. No API key is required.
type OpenMeteoProvider struct {
	name        string
	archiveURL  string
	forecastURL string
	httpCfg     HTTPClientConfig
	circuit     *gobreaker.CircuitBreaker
	now         func() time.Time
}

func NewOpenMeteoProvider(client *http.Client, archiveURL, forecastURL string) *OpenMeteoProvider {
	if archiveURL == "" {
		archiveURL = "https://archive-api.open-meteo.com/v1/archive"
	}
	if forecastURL == "" {
		forecastURL = "https://api.open-meteo.com/v1/forecast"
	}

	return &OpenMeteoProvider{
		name:        "openmeteo",
		archiveURL:  archiveURL,
		forecastURL: forecastURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newBreaker("openmeteo"),
		now:     time.Now,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) FetchHour(ctx context.Context, q weather.Query) (weather.Report, error) {
	day, err := time.Parse("2006-01-02", q.Date)
	if err != nil {
		return weather.Report{}, fmt.Errorf("invalid date %q: %w", q.Date, err)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", q.Coordinate.Lat))
		values.Set("longitude", fmt.Sprintf("%f", q.Coordinate.Lon))
		values.Set("start_date", q.Date)
		values.Set("end_date", q.Date)
		values.Set("hourly", strings.Join(hourlyFields, ","))
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s?%s", p.baseURLFor(day), values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Report{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Timezone    string `json:"timezone"`
		HourlyUnits struct {
			Temperature   string `json:"temperature_2m"`
			Apparent      string `json:"apparent_temperature"`
			Humidity      string `json:"relative_humidity_2m"`
			Precipitation string `json:"precipitation"`
			WindSpeed     string `json:"wind_speed_10m"`
			WindDirection string `json:"wind_direction_10m"`
			Pressure      string `json:"surface_pressure"`
			CloudCover    string `json:"cloud_cover"`
		} `json:"hourly_units"`
		Hourly struct {
			Time          []string  `json:"time"`
			Temperature   []float64 `json:"temperature_2m"`
			Apparent      []float64 `json:"apparent_temperature"`
			Humidity      []float64 `json:"relative_humidity_2m"`
			Precipitation []float64 `json:"precipitation"`
			WindSpeed     []float64 `json:"wind_speed_10m"`
			WindDirection []float64 `json:"wind_direction_10m"`
			Pressure      []float64 `json:"surface_pressure"`
			CloudCover    []float64 `json:"cloud_cover"`
			WeatherCode   []int     `json:"weather_code"`
		} `json:"hourly"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Report{}, err
	}

	// Hourly rows use local time "YYYY-MM-DDTHH:MM"; match on date + hour.
	wantPrefix := fmt.Sprintf("%sT%02d", q.Date, q.Hour)
	idx := -1
	for i, ts := range payload.Hourly.Time {
		if strings.HasPrefix(ts, wantPrefix) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return weather.Report{}, fmt.Errorf("no hourly record for %s %02d:00", q.Date, q.Hour)
	}

	obs := weather.HourlyObservation{
		Time:             payload.Hourly.Time[idx],
		TemperatureC:     floatAt(payload.Hourly.Temperature, idx),
		ApparentC:        floatAt(payload.Hourly.Apparent, idx),
		HumidityPct:      floatAt(payload.Hourly.Humidity, idx),
		PrecipMm:         floatAt(payload.Hourly.Precipitation, idx),
		WindSpeedKmh:     floatAt(payload.Hourly.WindSpeed, idx),
		WindDirectionDeg: floatAt(payload.Hourly.WindDirection, idx),
		PressureHpa:      floatAt(payload.Hourly.Pressure, idx),
		CloudCoverPct:    floatAt(payload.Hourly.CloudCover, idx),
	}
	if idx < len(payload.Hourly.WeatherCode) {
		obs.WeatherCode = payload.Hourly.WeatherCode[idx]
	}

	units := weather.Units{
		"temperature":          payload.HourlyUnits.Temperature,
		"apparent_temperature": payload.HourlyUnits.Apparent,
		"humidity":             payload.HourlyUnits.Humidity,
		"precipitation":        payload.HourlyUnits.Precipitation,
		"wind_speed":           payload.HourlyUnits.WindSpeed,
		"wind_direction":       payload.HourlyUnits.WindDirection,
		"pressure":             payload.HourlyUnits.Pressure,
		"cloud_cover":          payload.HourlyUnits.CloudCover,
	}

	return weather.Report{
		Observation: obs,
		Units:       units,
		Timezone:    payload.Timezone,
	}, nil
}

// baseURLFor picks the archive API for dates old enough to be in it and the
// forecast API (which also serves the recent past) otherwise.
func (p *OpenMeteoProvider) baseURLFor(day time.Time) string {
	cutoff := p.now().UTC().AddDate(0, 0, -archiveLagDays)
	if day.Before(cutoff) {
		return p.archiveURL
	}
	return p.forecastURL
}

func floatAt(vals []float64, idx int) float64 {
	if idx < len(vals) {
		return vals[idx]
	}
	return 0
}
