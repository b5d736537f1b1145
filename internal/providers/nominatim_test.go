package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/histweather/histweather/internal/geo"
)

const nominatimPayload = `[
	{
		"display_name": "1600, Pennsylvania Avenue Northwest, Washington, DC",
		"lat": "38.8977", "lon": "-77.0365",
		"type": "house",
		"address": {"house_number": "1600", "road": "Pennsylvania Avenue Northwest", "city": "Washington", "state": "District of Columbia", "postcode": "20500", "country": "United States"}
	},
	{
		"display_name": "Broken row",
		"lat": "not-a-number", "lon": "-77.0",
		"type": "house",
		"address": {"road": "Nowhere"}
	},
	{
		"display_name": "Washington",
		"lat": "38.9072", "lon": "-77.0369",
		"type": "city",
		"address": {"city": "Washington"}
	}
]`

func TestNominatimRequestShaping(t *testing.T) {
	var captured url.Values
	var userAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.URL.Query()
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(nominatimPayload))
	}))
	defer server.Close()

	g := NewNominatimGeocoder(server.Client(), server.URL, "histweather-test/1.0", 30)

	ref := &geo.Coordinate{Lat: 38.9, Lon: -77.0}
	candidates, err := g.Search(context.Background(), "1600 pennsylvania avenue", ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := captured.Get("countrycodes"); got != "us" {
		t.Errorf("countrycodes = %q, want us", got)
	}
	if got := captured.Get("format"); got != "jsonv2" {
		t.Errorf("format = %q, want jsonv2", got)
	}
	if got := captured.Get("addressdetails"); got != "1" {
		t.Errorf("addressdetails = %q, want 1", got)
	}
	if got := captured.Get("limit"); got != "30" {
		t.Errorf("limit = %q, want 30", got)
	}
	if captured.Get("viewbox") == "" {
		t.Error("viewbox bias missing despite reference coordinate")
	}
	if userAgent != "histweather-test/1.0" {
		t.Errorf("User-Agent = %q", userAgent)
	}

	// The unparsable row is skipped; the rest come through with numeric
	// coordinates and their provider tags.
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	first := candidates[0]
	if first.Coordinate.Lat != 38.8977 || first.Coordinate.Lon != -77.0365 {
		t.Errorf("coordinate = %+v", first.Coordinate)
	}
	if first.PlaceType != "house" || first.Details == nil || first.Details.HouseNumber != "1600" {
		t.Errorf("candidate not parsed: %+v", first)
	}
}

func TestNominatimNoViewboxWithoutReference(t *testing.T) {
	var captured url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	g := NewNominatimGeocoder(server.Client(), server.URL, "", 0)

	if _, err := g.Search(context.Background(), "main street", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Get("viewbox") != "" {
		t.Error("viewbox set without a reference coordinate")
	}
	// Zero limit falls back to the generous default.
	if got := captured.Get("limit"); got != "30" {
		t.Errorf("limit = %q, want 30", got)
	}
}

func TestNominatimEmptyQueryShortCircuits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request issued for empty query")
	}))
	defer server.Close()

	g := NewNominatimGeocoder(server.Client(), server.URL, "", 0)

	candidates, err := g.Search(context.Background(), "", nil)
	if err != nil || candidates != nil {
		t.Errorf("empty query: got (%v, %v), want (nil, nil)", candidates, err)
	}
}
