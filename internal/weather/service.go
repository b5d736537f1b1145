package weather

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Service validates historical weather queries, delegates to the provider,
// and caches reports. Past observations are immutable, so cached answers
// never go stale within their TTL.
type Service struct {
	provider Provider
	cache    *gocache.Cache
}

// NewService creates a Service. cache may be nil to disable caching.
func NewService(provider Provider, cache *gocache.Cache) *Service {
	return &Service{
		provider: provider,
		cache:    cache,
	}
}

// GetHour returns the hourly report for the query, annotated with the
// normalized condition derived from its weather code.
func (s *Service) GetHour(ctx context.Context, q Query) (Report, error) {
	if err := validateQuery(q); err != nil {
		return Report{}, err
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(q.Key()); ok {
			if report, ok := cached.(Report); ok {
				return report, nil
			}
		}
	}

	report, err := s.provider.FetchHour(ctx, q)
	if err != nil {
		return Report{}, err
	}
	report.Condition = ConditionFromCode(report.Observation.WeatherCode)

	if s.cache != nil {
		s.cache.SetDefault(q.Key(), report)
	}

	return report, nil
}

func validateQuery(q Query) error {
	if _, err := time.Parse("2006-01-02", q.Date); err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", q.Date)
	}
	if q.Hour < 0 || q.Hour > 23 {
		return fmt.Errorf("invalid hour %d: want 0-23", q.Hour)
	}
	if q.Minute < 0 || q.Minute > 59 {
		return fmt.Errorf("invalid minute %d: want 0-59", q.Minute)
	}
	return nil
}
