package address

import (
	"sort"

	"github.com/histweather/histweather/internal/common"
	"github.com/histweather/histweather/internal/geo"
)

// areaTypes are provider place-type tags that denote areas rather than
// addresses; hits carrying one are never shown as suggestions.
var areaTypes = map[string]bool{
	"administrative": true,
	"state":          true,
	"country":        true,
	"city":           true,
	"county":         true,
	"region":         true,
}

// FilterAndRank discards geocoder hits that are not genuine street addresses
// and, when a reference coordinate is given, annotates the survivors with
// their distance to it and sorts them nearest first (stable for ties).
// Without a reference the provider order is kept and no distance is set.
// A fresh slice is returned on every call.
func FilterAndRank(candidates []Candidate, reference *geo.Coordinate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if isStreetAddress(c) {
			out = append(out, c)
		}
	}

	if reference == nil {
		return out
	}

	for i := range out {
		d := geo.DistanceKm(*reference, out[i].Coordinate)
		out[i].DistanceKm = &d
	}

	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].DistanceKm < *out[j].DistanceKm
	})

	return out
}

// isStreetAddress reports whether a hit points at a specific place: it must
// carry a structured breakdown, must not be tagged as an area, and must name
// a road or some other concrete locator beyond a bare area.
func isStreetAddress(c Candidate) bool {
	if c.Details == nil {
		return false
	}
	if areaTypes[c.PlaceType] {
		return false
	}
	return common.AnyNonEmpty(
		c.Details.Road,
		c.Details.Building,
		c.Details.Amenity,
		c.Details.Shop,
		c.Details.Office,
		c.Details.HouseNumber,
	)
}
