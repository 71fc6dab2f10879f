package httpapi

import (
	"errors"
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/i474232898/weather-cli/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		q, err := parseCityQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := service.Lookup(c.UserContext(), q.City)
		if err != nil {
			return lookupError(err)
		}
		return c.JSON(rec)
	})

	v1.Get("/weather/local", func(c *fiber.Ctx) error {
		rec, err := service.LookupLocal(c.UserContext())
		if err != nil {
			return lookupError(err)
		}
		return c.JSON(rec)
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		records, total, err := service.Recent(req.Limit)
		if err != nil {
			if errors.Is(err, weather.ErrInvalidCount) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read weather history")
		}

		return c.JSON(fiber.Map{
			"total":   total,
			"shown":   len(records),
			"records": records,
		})
	})

	v1.Delete("/weather/history", func(c *fiber.Ctx) error {
		cleared, err := service.ClearHistory()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to clear weather history")
		}
		return c.JSON(fiber.Map{"cleared": cleared})
	})
}

// lookupError maps pipeline failures onto HTTP statuses.
func lookupError(err error) error {
	switch {
	case errors.Is(err, weather.ErrUnknownCity):
		return fiber.NewError(fiber.StatusNotFound, "no weather data for requested city")
	case errors.Is(err, weather.ErrTimeout):
		return fiber.NewError(fiber.StatusGatewayTimeout, "weather service timed out")
	case errors.Is(err, weather.ErrLocationUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, "could not determine location")
	case errors.Is(err, weather.ErrNetwork), errors.Is(err, weather.ErrUnauthorized):
		return fiber.NewError(fiber.StatusBadGateway, "weather service unavailable")
	default:
		log.Errorf("[http] lookup failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}
}

// cityQuery holds the query parameters for a lookup by name.
type cityQuery struct {
	City string `validate:"required"`
}

func parseCityQuery(c *fiber.Ctx) (cityQuery, error) {
	q := cityQuery{City: c.Query("city")}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// historyQuery holds query parameters for the history endpoint.
// A missing limit means the whole history.
type historyQuery struct {
	Limit int `validate:"gte=0"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	limitStr := c.Query("limit")
	if limitStr == "" {
		h.Limit = math.MaxInt32
		return nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return errors.New("limit must be an integer")
	}
	h.Limit = limit
	return nil
}
