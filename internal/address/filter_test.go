package address

import (
	"testing"

	"github.com/histweather/histweather/internal/geo"
)

func TestFilterDropsAreasAndBareHits(t *testing.T) {
	candidates := []Candidate{
		// Area tag always loses, even with a road present.
		{DisplayName: "Portland", PlaceType: "city", Details: &Details{Road: "Main Street"}},
		{DisplayName: "Oregon", PlaceType: "state", Details: &Details{State: "Oregon"}},
		// No structured breakdown at all.
		{DisplayName: "Somewhere", PlaceType: "house"},
		// Breakdown without any concrete locator.
		{DisplayName: "Rural area", PlaceType: "hamlet", Details: &Details{State: "Kansas"}},
		// Genuine addresses.
		{DisplayName: "12 Oak St", PlaceType: "house", Details: &Details{Road: "Oak Street", HouseNumber: "12"}},
		{DisplayName: "City Hall", PlaceType: "townhall", Details: &Details{Building: "City Hall"}},
		{DisplayName: "Corner Shop", PlaceType: "convenience", Details: &Details{Shop: "Corner Shop"}},
	}

	got := FilterAndRank(candidates, nil)

	if len(got) != 3 {
		t.Fatalf("expected 3 survivors, got %d: %+v", len(got), got)
	}
	for _, c := range got {
		if c.DistanceKm != nil {
			t.Errorf("distance set without a reference coordinate: %+v", c)
		}
	}
	// Provider order is preserved when no reference is given.
	if got[0].DisplayName != "12 Oak St" || got[1].DisplayName != "City Hall" || got[2].DisplayName != "Corner Shop" {
		t.Errorf("provider order not preserved: %+v", got)
	}
}

func TestRankNearestFirst(t *testing.T) {
	ref := &geo.Coordinate{Lat: 0, Lon: 0}

	// Roughly 5, 1 and 3 km east of the reference.
	candidates := []Candidate{
		{DisplayName: "far", PlaceType: "house", Details: &Details{Road: "A"}, Coordinate: geo.Coordinate{Lat: 0, Lon: 0.045}},
		{DisplayName: "near", PlaceType: "house", Details: &Details{Road: "B"}, Coordinate: geo.Coordinate{Lat: 0, Lon: 0.009}},
		{DisplayName: "mid", PlaceType: "house", Details: &Details{Road: "C"}, Coordinate: geo.Coordinate{Lat: 0, Lon: 0.027}},
	}

	got := FilterAndRank(candidates, ref)

	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	order := []string{got[0].DisplayName, got[1].DisplayName, got[2].DisplayName}
	want := []string{"near", "mid", "far"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	for _, c := range got {
		if c.DistanceKm == nil {
			t.Errorf("distance missing for %s", c.DisplayName)
		}
	}
}

func TestRankTiesAreStable(t *testing.T) {
	ref := &geo.Coordinate{Lat: 0, Lon: 0}
	same := geo.Coordinate{Lat: 0, Lon: 0.01}

	candidates := []Candidate{
		{DisplayName: "first", PlaceType: "house", Details: &Details{Road: "A"}, Coordinate: same},
		{DisplayName: "second", PlaceType: "house", Details: &Details{Road: "B"}, Coordinate: same},
	}

	got := FilterAndRank(candidates, ref)
	if got[0].DisplayName != "first" || got[1].DisplayName != "second" {
		t.Errorf("tie order not stable: %+v", got)
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	ref := &geo.Coordinate{Lat: 0, Lon: 0}
	in := []Candidate{
		{DisplayName: "a", PlaceType: "house", Details: &Details{Road: "A"}, Coordinate: geo.Coordinate{Lat: 1, Lon: 1}},
	}

	_ = FilterAndRank(in, ref)

	if in[0].DistanceKm != nil {
		t.Error("input slice was mutated")
	}
}
