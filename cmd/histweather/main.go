package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	gocache "github.com/patrickmn/go-cache"

	"github.com/histweather/histweather/internal/address"
	httpapi "github.com/histweather/histweather/internal/api/http"
	"github.com/histweather/histweather/internal/config"
	"github.com/histweather/histweather/internal/locate"
	"github.com/histweather/histweather/internal/providers"
	"github.com/histweather/histweather/internal/scheduler"
	"github.com/histweather/histweather/internal/session"
	"github.com/histweather/histweather/internal/weather"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Outbound providers with resilience (backoff + circuit breaker).
	geocoder := providers.NewNominatimGeocoder(httpClient, cfg.NominatimBaseURL, cfg.UserAgent, cfg.SearchResultLimit)
	locator := providers.NewIPAPILocator(httpClient, cfg.IPAPIBaseURL)
	meteo := providers.NewOpenMeteoProvider(httpClient, cfg.OpenMeteoArchiveURL, cfg.OpenMeteoForecastURL)

	// Services with TTL caches for the answers that never change.
	locateSvc := locate.NewService(locator, gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL))
	weatherSvc := weather.NewService(meteo, gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL))

	// Interactive search sessions and their idle purge job.
	sessions := session.NewStore(geocoder, cfg.SessionTTL,
		address.WithDebounce(cfg.SearchDebounce),
		address.WithMinQueryLen(cfg.SearchMinQueryLen),
	)
	sched := scheduler.New(sessions, cfg.SessionPurgeInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "histweather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "histweather",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Geocoder: geocoder,
		Locate:   locateSvc,
		Weather:  weatherSvc,
		Sessions: sessions,
	})

	// Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
