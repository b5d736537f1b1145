package httpapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/histweather/histweather/internal/address"
	"github.com/histweather/histweather/internal/geo"
	"github.com/histweather/histweather/internal/locate"
	"github.com/histweather/histweather/internal/session"
	"github.com/histweather/histweather/internal/weather"
)

var validate = validator.New()

// suggestWaitTimeout bounds how long a suggest call waits for the debounced
// search to complete before telling the client to poll again.
const suggestWaitTimeout = 5 * time.Second

// Deps are the collaborators the HTTP handlers are wired to.
type Deps struct {
	Geocoder address.Geocoder
	Locate   *locate.Service
	Weather  *weather.Service
	Sessions *session.Store
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	v1 := app.Group("/api/v1")

	v1.Post("/address/sessions", func(c *fiber.Ctx) error {
		var body struct {
			Lat *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
			Lon *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			if err := validate.Struct(body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}

		var reference *geo.Coordinate
		if body.Lat != nil && body.Lon != nil {
			reference = &geo.Coordinate{Lat: *body.Lat, Lon: *body.Lon}
		} else {
			// Geolocation failure degrades to unranked search.
			reference = d.Locate.Reference(c.UserContext())
		}

		s := d.Sessions.Create(reference)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"session_id": s.ID,
			"ranked":     reference != nil,
		})
	})

	v1.Get("/address/suggest", func(c *fiber.Ctx) error {
		var req suggestQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		s, err := d.Sessions.Get(req.SessionID)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "unknown search session")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load search session")
		}

		s.Searcher.Input(req.Q)

		candidates, done := s.Await(suggestWaitTimeout)
		if !done {
			// Superseded by a newer keystroke or still in flight.
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
				"status": "searching",
			})
		}

		return c.JSON(fiber.Map{
			"status":      "idle",
			"query":       req.Q,
			"count":       len(candidates),
			"suggestions": displayPrefix(candidates),
		})
	})

	v1.Post("/address/select", func(c *fiber.Ctx) error {
		var body struct {
			SessionID string            `json:"session_id" validate:"required"`
			Candidate address.Candidate `json:"candidate"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		s, err := d.Sessions.Get(body.SessionID)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "unknown search session")
		}

		s.Searcher.Select(body.Candidate)
		return c.JSON(address.SelectionOf(body.Candidate))
	})

	v1.Get("/address/search", func(c *fiber.Ctx) error {
		var req searchQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reference := req.reference()
		if reference == nil {
			reference = d.Locate.Reference(c.UserContext())
		}

		normalized := address.Normalize(req.Q)
		if normalized == "" {
			return c.JSON(fiber.Map{"query": "", "count": 0, "results": []address.Candidate{}})
		}

		candidates, err := d.Geocoder.Search(c.UserContext(), normalized, reference)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "address lookup failed")
		}

		ranked := address.FilterAndRank(candidates, reference)
		return c.JSON(fiber.Map{
			"query":   normalized,
			"count":   len(ranked),
			"results": displayPrefix(ranked),
		})
	})

	v1.Get("/locate", func(c *fiber.Ctx) error {
		loc, err := d.Locate.Get(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "geolocation unavailable")
		}
		return c.JSON(loc)
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := d.Weather.GetHour(c.UserContext(), req.toQuery())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "weather lookup failed")
		}
		return c.JSON(report)
	})
}

// displayPrefix truncates ranked results to the display bound; the caller
// still reports the full count.
func displayPrefix(candidates []address.Candidate) []address.Candidate {
	if candidates == nil {
		return []address.Candidate{}
	}
	if len(candidates) > address.MaxDisplayResults {
		return candidates[:address.MaxDisplayResults]
	}
	return candidates
}

// suggestQuery holds query parameters for the interactive suggest endpoint.
type suggestQuery struct {
	SessionID string `validate:"required"`
	Q         string `validate:"required"`
}

func (s *suggestQuery) bind(c *fiber.Ctx) error {
	s.SessionID = c.Query("session_id")
	s.Q = c.Query("q")
	return validate.Struct(s)
}

// searchQuery holds query parameters for the one-shot search endpoint.
type searchQuery struct {
	Q   string `validate:"required,min=3"`
	Lat *float64
	Lon *float64
}

func (s *searchQuery) bind(c *fiber.Ctx) error {
	s.Q = strings.TrimSpace(c.Query("q"))

	var err error
	if s.Lat, err = optionalFloat(c.Query("lat")); err != nil {
		return err
	}
	if s.Lon, err = optionalFloat(c.Query("lon")); err != nil {
		return err
	}

	return validate.Struct(s)
}

func (s *searchQuery) reference() *geo.Coordinate {
	if s.Lat == nil || s.Lon == nil {
		return nil
	}
	return &geo.Coordinate{Lat: *s.Lat, Lon: *s.Lon}
}

// historyQuery holds query parameters for the historical weather endpoint.
type historyQuery struct {
	Lat  float64 `validate:"gte=-90,lte=90"`
	Lon  float64 `validate:"gte=-180,lte=180"`
	Date string  `validate:"required,datetime=2006-01-02"`
	Time string  `validate:"required"`

	hour   int
	minute int
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return errors.New("lat and lon query parameters are required")
	}

	var err error
	if h.Lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return errors.New("invalid lat")
	}
	if h.Lon, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return errors.New("invalid lon")
	}

	h.Date = c.Query("date")
	h.Time = c.Query("time")

	if err := validate.Struct(h); err != nil {
		return err
	}

	clock, err := time.Parse("15:04", h.Time)
	if err != nil {
		return errors.New("invalid time; use HH:MM")
	}
	h.hour = clock.Hour()
	h.minute = clock.Minute()
	return nil
}

func (h *historyQuery) toQuery() weather.Query {
	return weather.Query{
		Coordinate: geo.Coordinate{Lat: h.Lat, Lon: h.Lon},
		Date:       h.Date,
		Hour:       h.hour,
		Minute:     h.minute,
	}
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.New("invalid coordinate value")
	}
	return &f, nil
}
