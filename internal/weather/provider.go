package weather

import (
	"context"
	"fmt"

	"github.com/histweather/histweather/internal/geo"
)

// Query identifies one hour of weather at one place. Date is a local
// calendar date (YYYY-MM-DD) at the location; Hour/Minute are local
// clock time.
type Query struct {
	Coordinate geo.Coordinate
	Date       string
	Hour       int
	Minute     int
}

// Key returns a canonical cache key for this query. History for a given
// place and hour never changes, so the minute is excluded.
func (q Query) Key() string {
	return fmt.Sprintf("%f:%f:%s:%02d", q.Coordinate.Lat, q.Coordinate.Lon, q.Date, q.Hour)
}

// Provider abstracts a historical weather source (e.g. Open-Meteo).
type Provider interface {
	Name() string
	FetchHour(ctx context.Context, q Query) (Report, error)
}
