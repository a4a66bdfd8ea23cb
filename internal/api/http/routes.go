package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/weather-forecast-router/internal/cache"
	"github.com/i474232898/weather-forecast-router/internal/logger"
	"github.com/i474232898/weather-forecast-router/internal/weather"
)

const requestIDHeader = "X-Request-ID"

var validate = validator.New()

// Forecaster answers forecast requests.
type Forecaster interface {
	GetForecast(ctx context.Context, loc weather.LocationInfo, date string) (weather.ForecastResult, error)
}

// StatsProvider reports cache counters.
type StatsProvider interface {
	Stats() cache.Stats
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. stats may be
// nil.
func RegisterRoutes(app *fiber.App, router Forecaster, stats StatsProvider, log logger.Logger) {
	if log == nil {
		log = logger.Discard()
	}
	log = log.WithField("component", "http")

	app.Use(requestID)

	v1 := app.Group("/api/v1")

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		var q forecastQuery
		if err := c.QueryParser(&q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := router.GetForecast(c.UserContext(), q.location(), q.Date)
		if err != nil {
			log.WithField("request_id", c.Locals(requestIDHeader)).Warnf("forecast %s %s: %v", q.Name, q.Date, err)
			return forecastError(err)
		}

		return c.JSON(forecastResponse{
			ForecastResult: res,
			Location:       q.location(),
			Date:           q.Date,
			Summary:        weather.Summarize(res.HourlyPoints),
		})
	})

	v1.Get("/cache/stats", func(c *fiber.Ctx) error {
		if stats == nil {
			return fiber.NewError(fiber.StatusNotFound, "cache statistics are not available")
		}
		return c.JSON(stats.Stats())
	})
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":     true,
		"message":   err.Error(),
		"requestId": c.Locals(requestIDHeader),
	})
}

// requestID propagates or assigns X-Request-ID.
func requestID(c *fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals(requestIDHeader, id)
	c.Set(requestIDHeader, id)
	return c.Next()
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	Name      string   `query:"name"`
	Longitude *float64 `query:"lng" validate:"required,gte=-180,lte=180"`
	Latitude  *float64 `query:"lat" validate:"required,gte=-90,lte=90"`
	AdminCode string   `query:"adcode"`
	Date      string   `query:"date" validate:"required,datetime=2006-01-02"`
}

func (q forecastQuery) location() weather.LocationInfo {
	loc := weather.LocationInfo{Name: q.Name, AdminCode: q.AdminCode}
	if q.Longitude != nil {
		loc.Longitude = *q.Longitude
	}
	if q.Latitude != nil {
		loc.Latitude = *q.Latitude
	}
	return loc
}

type forecastResponse struct {
	weather.ForecastResult
	Location weather.LocationInfo `json:"location"`
	Date     string               `json:"date"`
	Summary  weather.DayOverview  `json:"summary"`
}

// forecastError maps error kinds to HTTP statuses.
func forecastError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fiber.NewError(fiber.StatusServiceUnavailable, "request cancelled before a forecast was produced")
	}
	switch weather.KindOf(err) {
	case weather.KindInvalidInput, weather.KindDateOutOfRange:
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case weather.KindLocationNotFound:
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to produce forecast")
	}
}

// Health reports liveness.
func Health(started time.Time) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-forecast-router",
			"uptime":  time.Since(started).Round(time.Second).String(),
		})
	}
}
