package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port        string
	HTTPTimeout time.Duration

	// Nominatim address search.
	NominatimBaseURL  string
	UserAgent         string
	SearchResultLimit int
	SearchDebounce    time.Duration
	SearchMinQueryLen int

	// IP geolocation.
	IPAPIBaseURL string

	// Open-Meteo historical weather.
	OpenMeteoArchiveURL  string
	OpenMeteoForecastURL string

	// Search session retention.
	SessionTTL           time.Duration
	SessionPurgeInterval time.Duration

	// Provider response caches (geolocation, weather reports).
	CacheTTL time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.NominatimBaseURL = os.Getenv("NOMINATIM_BASE_URL")
	cfg.IPAPIBaseURL = os.Getenv("IPAPI_BASE_URL")
	cfg.OpenMeteoArchiveURL = os.Getenv("OPENMETEO_ARCHIVE_URL")
	cfg.OpenMeteoForecastURL = os.Getenv("OPENMETEO_FORECAST_URL")

	// Nominatim asks for a descriptive User-Agent on every request.
	cfg.UserAgent = getenvDefault("USER_AGENT", "histweather/1.0")

	cfg.SearchResultLimit = getenvInt("SEARCH_RESULT_LIMIT", 30)
	cfg.SearchMinQueryLen = getenvInt("SEARCH_MIN_QUERY", 3)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.SearchDebounce, err = getenvDuration("SEARCH_DEBOUNCE", "300ms"); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getenvDuration("SESSION_TTL", "10m"); err != nil {
		return nil, err
	}
	if cfg.SessionPurgeInterval, err = getenvDuration("SESSION_PURGE_INTERVAL", "1m"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "1h"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
