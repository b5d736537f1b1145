package locate

import (
	"context"

	"github.com/histweather/histweather/internal/geo"
)

// Location describes where the current network connection appears to be.
// It supplies the reference coordinate used to bias and rank address search.
type Location struct {
	Coordinate geo.Coordinate `json:"coordinate"`
	City       string         `json:"city,omitempty"`
	Region     string         `json:"region,omitempty"`
	Country    string         `json:"country,omitempty"`
	Postcode   string         `json:"postcode,omitempty"`
	Timezone   string         `json:"timezone,omitempty"`
}

// Locator abstracts an IP-based geolocation source.
type Locator interface {
	Name() string
	Locate(ctx context.Context) (Location, error)
}
