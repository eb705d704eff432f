package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"weathernow/collector"
	"weathernow/models"
)

// Server represents the API server
type Server struct {
	collector *collector.Collector
	store     *ReportStore
	logger    *zap.Logger
	app       *fiber.App
	addr      string
}

// NewServer creates a new API server
func NewServer(c *collector.Collector, store *ReportStore, port int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	server := &Server{
		collector: c,
		store:     store,
		logger:    logger,
		addr:      fmt.Sprintf(":%d", port),
	}

	app := fiber.New(fiber.Config{
		AppName:               "WeatherNow",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          server.errorHandler,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(server.logRequests)

	api := app.Group("/api")
	{
		api.Get("/health", server.handleHealthCheck)

		// Stateless lookups
		api.Get("/weather", server.handleGetWeather)
		api.Get("/weather/here", server.handleGetWeatherHere)
		api.Get("/weather/locations", server.handleGetAllLocations)

		// Session backed by the collector
		api.Get("/session", server.handleGetSession)
		api.Post("/session/fetch", server.handleSessionFetch)
		api.Put("/session/units", server.handleSessionUnits)
	}

	server.app = app
	return server
}

// App exposes the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Start begins the API server
func (s *Server) Start() error {
	s.logger.Info("starting API server", zap.String("addr", s.addr))
	return s.app.Listen(s.addr)
}

// Shutdown stops the server, waiting up to timeout for open requests
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("took", time.Since(start)),
	)
	return err
}

// handleGetWeather loads weather for ?q= or ?lat=&lon= without touching the session
func (s *Server) handleGetWeather(c *fiber.Ctx) error {
	loc, err := locationFromQuery(c)
	if err != nil {
		return err
	}
	units, err := s.unitsFromQuery(c)
	if err != nil {
		return err
	}

	report, err := s.collector.Load(c.UserContext(), loc, units)
	if err != nil {
		return err
	}
	s.store.Update(report)
	return c.JSON(report)
}

// handleGetWeatherHere loads weather for the resolved current position
func (s *Server) handleGetWeatherHere(c *fiber.Ctx) error {
	units, err := s.unitsFromQuery(c)
	if err != nil {
		return err
	}

	report, err := s.collector.LoadHere(c.UserContext(), units)
	if err != nil {
		return err
	}
	s.store.Update(report)
	return c.JSON(report)
}

// handleGetAllLocations lists locations with a stored report
func (s *Server) handleGetAllLocations(c *fiber.Ctx) error {
	reports := s.store.Reports()
	return c.JSON(fiber.Map{
		"reports": reports,
		"count":   len(reports),
	})
}

func (s *Server) handleGetSession(c *fiber.Ctx) error {
	return c.JSON(s.collector.Snapshot())
}

type fetchRequest struct {
	City string   `json:"city"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
	Here bool     `json:"here"`
}

// handleSessionFetch runs a fetch action and returns the resulting session state
func (s *Server) handleSessionFetch(c *fiber.Ctx) error {
	var req fetchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	var err error
	switch {
	case req.Here:
		_, err = s.collector.FetchHere(c.UserContext())
	case req.Lat != nil || req.Lon != nil:
		if req.Lat == nil || req.Lon == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Both lat and lon are required")
		}
		loc := models.CoordsLocation(*req.Lat, *req.Lon)
		loc.City = strings.TrimSpace(req.City)
		_, err = s.collector.Fetch(c.UserContext(), loc)
	default:
		_, err = s.collector.Fetch(c.UserContext(), models.CityLocation(req.City))
	}
	if err != nil {
		return err
	}
	return c.JSON(s.collector.Snapshot())
}

type unitsRequest struct {
	Units string `json:"units"`
}

// handleSessionUnits switches units, re-fetching the last location if any
func (s *Server) handleSessionUnits(c *fiber.Ctx) error {
	var req unitsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	units, err := models.ParseUnitSystem(req.Units)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := s.collector.SetUnits(c.UserContext(), units); err != nil {
		return err
	}
	return c.JSON(s.collector.Snapshot())
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func locationFromQuery(c *fiber.Ctx) (models.Location, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" && lonStr == "" {
		return models.CityLocation(c.Query("q")), nil
	}
	if latStr == "" || lonStr == "" {
		return models.Location{}, fiber.NewError(fiber.StatusBadRequest, "Both lat and lon are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return models.Location{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Invalid lat %q", latStr))
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return models.Location{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Invalid lon %q", lonStr))
	}

	loc := models.CoordsLocation(lat, lon)
	// city and coordinates together are rejected by Location.Validate
	loc.City = strings.TrimSpace(c.Query("q"))
	return loc, nil
}

func (s *Server) unitsFromQuery(c *fiber.Ctx) (models.UnitSystem, error) {
	raw := c.Query("units")
	if raw == "" {
		return s.collector.Units(), nil
	}
	units, err := models.ParseUnitSystem(raw)
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return units, nil
}
