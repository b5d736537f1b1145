package weather

import (
	"context"
	"testing"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/histweather/histweather/internal/geo"
)

type countingProvider struct {
	calls  int
	report Report
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) FetchHour(context.Context, Query) (Report, error) {
	p.calls++
	return p.report, nil
}

func TestGetHourValidation(t *testing.T) {
	svc := NewService(&countingProvider{}, nil)

	bad := []Query{
		{Date: "July 4th", Hour: 12},
		{Date: "2023-07-04", Hour: 24},
		{Date: "2023-07-04", Hour: -1},
		{Date: "2023-07-04", Hour: 12, Minute: 60},
	}
	for _, q := range bad {
		if _, err := svc.GetHour(context.Background(), q); err == nil {
			t.Errorf("expected validation error for %+v", q)
		}
	}
}

func TestGetHourAnnotatesConditionAndCaches(t *testing.T) {
	provider := &countingProvider{
		report: Report{Observation: HourlyObservation{WeatherCode: 61, TemperatureC: 12.5}},
	}
	svc := NewService(provider, gocache.New(time.Minute, time.Minute))

	q := Query{
		Coordinate: geo.Coordinate{Lat: 38.9, Lon: -77.0},
		Date:       "2023-07-04",
		Hour:       14,
	}

	report, err := svc.GetHour(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Condition != ConditionRain {
		t.Errorf("condition = %q, want rain for WMO code 61", report.Condition)
	}

	// History is immutable; the second call must come from the cache.
	if _, err := svc.GetHour(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1", provider.calls)
	}

	// A different hour misses the cache.
	q.Hour = 15
	if _, err := svc.GetHour(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.calls != 2 {
		t.Errorf("provider called %d times, want 2", provider.calls)
	}
}

func TestConditionFromCode(t *testing.T) {
	cases := map[int]Condition{
		0:  ConditionClear,
		2:  ConditionCloudy,
		45: ConditionFog,
		55: ConditionRain,
		71: ConditionSnow,
		85: ConditionSnow,
		95: ConditionStorm,
		40: ConditionUnknown,
	}
	for code, want := range cases {
		if got := ConditionFromCode(code); got != want {
			t.Errorf("ConditionFromCode(%d) = %q, want %q", code, got, want)
		}
	}
}
