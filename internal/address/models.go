package address

import (
	"github.com/histweather/histweather/internal/geo"
)

// MaxDisplayResults bounds how many suggestions are shown to the user.
// The full filtered set is still retained for counting.
const MaxDisplayResults = 10

// Details is the structured address breakdown attached to a geocoder hit.
type Details struct {
	HouseNumber string `json:"house_number,omitempty"`
	Road        string `json:"road,omitempty"`
	Building    string `json:"building,omitempty"`
	Amenity     string `json:"amenity,omitempty"`
	Shop        string `json:"shop,omitempty"`
	Office      string `json:"office,omitempty"`
	City        string `json:"city,omitempty"`
	Town        string `json:"town,omitempty"`
	Village     string `json:"village,omitempty"`
	State       string `json:"state,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
	Country     string `json:"country,omitempty"`
}

// Candidate is one hit from the address provider. DistanceKm is populated
// only when a reference coordinate was supplied for the search that
// produced it.
type Candidate struct {
	DisplayName string         `json:"display_name"`
	Coordinate  geo.Coordinate `json:"coordinate"`
	Details     *Details       `json:"address,omitempty"`
	PlaceType   string         `json:"type"`
	DistanceKm  *float64       `json:"distance_km,omitempty"`
}

// Selection is the payload handed to the selection sink when the user
// finalizes a choice.
type Selection struct {
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	DisplayName string   `json:"display_name"`
	Address     *Details `json:"address,omitempty"`
	PlaceType   string   `json:"type"`
}

// SelectionOf builds the selection payload for a chosen candidate.
func SelectionOf(c Candidate) Selection {
	return Selection{
		Latitude:    c.Coordinate.Lat,
		Longitude:   c.Coordinate.Lon,
		DisplayName: c.DisplayName,
		Address:     c.Details,
		PlaceType:   c.PlaceType,
	}
}
