package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/histweather/histweather/internal/address"
	"github.com/histweather/histweather/internal/geo"
)

// viewboxSpanDeg is the half-width, in degrees, of the bias viewbox drawn
// around the reference coordinate. It is a request-shaping hint only;
// ranking is re-derived locally from the returned coordinates.
const viewboxSpanDeg = 0.75

// NominatimGeocoder implements the address.Geocoder interface against a
// Nominatim search endpoint. Requests are restricted to US postal addresses
// and ask for a generous result count so the local filter has enough to
// work with.
type NominatimGeocoder struct {
	name      string
	baseURL   string
	userAgent string
	limit     int
	httpCfg   HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker
}

func NewNominatimGeocoder(client *http.Client, baseURL, userAgent string, limit int) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org/search"
	}
	if limit <= 0 {
		limit = 30
	}

	return &NominatimGeocoder{
		name:      "nominatim",
		baseURL:   baseURL,
		userAgent: userAgent,
		limit:     limit,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newBreaker("nominatim"),
	}
}

func (g *NominatimGeocoder) Name() string {
	return g.name
}

func (g *NominatimGeocoder) Search(ctx context.Context, query string, reference *geo.Coordinate) ([]address.Candidate, error) {
	if query == "" {
		return nil, nil
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", query)
		values.Set("format", "jsonv2")
		values.Set("addressdetails", "1")
		values.Set("countrycodes", "us")
		values.Set("limit", strconv.Itoa(g.limit))

		// Bias, don't bound: results outside the box are still returned.
		if reference != nil {
			values.Set("viewbox", fmt.Sprintf("%f,%f,%f,%f",
				reference.Lon-viewboxSpanDeg,
				reference.Lat+viewboxSpanDeg,
				reference.Lon+viewboxSpanDeg,
				reference.Lat-viewboxSpanDeg,
			))
		}

		u := fmt.Sprintf("%s?%s", g.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		if g.userAgent != "" {
			req.Header.Set("User-Agent", g.userAgent)
		}
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload []struct {
		DisplayName string           `json:"display_name"`
		Lat         string           `json:"lat"`
		Lon         string           `json:"lon"`
		Type        string           `json:"type"`
		Address     *address.Details `json:"address"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	candidates := make([]address.Candidate, 0, len(payload))
	for _, row := range payload {
		lat, latErr := strconv.ParseFloat(row.Lat, 64)
		lon, lonErr := strconv.ParseFloat(row.Lon, 64)
		if latErr != nil || lonErr != nil {
			// A hit without usable coordinates cannot be ranked or selected.
			continue
		}

		candidates = append(candidates, address.Candidate{
			DisplayName: row.DisplayName,
			Coordinate:  geo.Coordinate{Lat: lat, Lon: lon},
			Details:     row.Address,
			PlaceType:   row.Type,
		})
	}

	return candidates, nil
}
