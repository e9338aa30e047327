package middleware

import (
	"time"

	"go-hse/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics returns a middleware that records HTTP metrics
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if metrics.ShouldSkipEndpoint(c.Path()) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}
		// route pattern, not the concrete path
		m.RecordHTTPRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
