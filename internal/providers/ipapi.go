package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/histweather/histweather/internal/geo"
	"github.com/histweather/histweather/internal/locate"
)

// IPAPILocator implements the locate.Locator interface against ip-api.com.
type IPAPILocator struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewIPAPILocator(client *http.Client, baseURL string) *IPAPILocator {
	if baseURL == "" {
		baseURL = "http://ip-api.com/json"
	}

	return &IPAPILocator{
		name:    "ip-api",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newBreaker("ip-api"),
	}
}

func (l *IPAPILocator) Name() string {
	return l.name
}

func (l *IPAPILocator) Locate(ctx context.Context) (locate.Location, error) {
	buildRequest := func() (*http.Request, error) {
		u := l.baseURL + "?fields=status,message,lat,lon,city,regionName,country,zip,timezone"
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, l.httpCfg, l.circuit, buildRequest)
	if err != nil {
		return locate.Location{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Status     string  `json:"status"`
		Message    string  `json:"message"`
		Lat        float64 `json:"lat"`
		Lon        float64 `json:"lon"`
		City       string  `json:"city"`
		RegionName string  `json:"regionName"`
		Country    string  `json:"country"`
		Zip        string  `json:"zip"`
		Timezone   string  `json:"timezone"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return locate.Location{}, err
	}

	if payload.Status != "success" {
		return locate.Location{}, fmt.Errorf("ip-api lookup failed: %s", payload.Message)
	}

	return locate.Location{
		Coordinate: geo.Coordinate{Lat: payload.Lat, Lon: payload.Lon},
		City:       payload.City,
		Region:     payload.RegionName,
		Country:    payload.Country,
		Postcode:   payload.Zip,
		Timezone:   payload.Timezone,
	}, nil
}
