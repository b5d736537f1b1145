package address

import (
	"context"

	"github.com/histweather/histweather/internal/geo"
)

// Geocoder abstracts the address provider (e.g. Nominatim). Implementations
// must honor context cancellation; the reference coordinate, when non-nil,
// is a bias hint for the provider, not a filter.
type Geocoder interface {
	Name() string
	Search(ctx context.Context, query string, reference *geo.Coordinate) ([]Candidate, error)
}
