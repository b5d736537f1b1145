package locate

import (
	"context"
	"log"

	gocache "github.com/patrickmn/go-cache"

	"github.com/histweather/histweather/internal/geo"
)

const cacheKey = "self"

// Service answers "where is this host" with a cached geolocation lookup.
// Failure is tolerated by design: address search degrades to unranked
// results when no reference coordinate is available.
type Service struct {
	locator Locator
	cache   *gocache.Cache
}

// NewService creates a Service. The cache TTL bounds how long a geolocation
// answer is reused.
func NewService(locator Locator, cache *gocache.Cache) *Service {
	return &Service{
		locator: locator,
		cache:   cache,
	}
}

// Get returns the current location, reusing a cached answer when fresh.
func (s *Service) Get(ctx context.Context) (Location, error) {
	if cached, ok := s.cache.Get(cacheKey); ok {
		if loc, ok := cached.(Location); ok {
			return loc, nil
		}
	}

	loc, err := s.locator.Locate(ctx)
	if err != nil {
		return Location{}, err
	}

	s.cache.SetDefault(cacheKey, loc)
	return loc, nil
}

// Reference returns the reference coordinate for ranking, or nil when
// geolocation is unavailable. The failure is logged, not propagated.
func (s *Service) Reference(ctx context.Context) *geo.Coordinate {
	loc, err := s.Get(ctx)
	if err != nil {
		log.Printf("locate: geolocation unavailable, searches will be unranked: %v", err)
		return nil
	}
	c := loc.Coordinate
	return &c
}
