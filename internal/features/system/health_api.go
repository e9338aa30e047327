package system

import (
	"go-hse/internal/common/api"
	"go-hse/internal/config"
	"go-hse/internal/metrics"
	"go-hse/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthApi struct {
	controller *HealthController
	metrics    *metrics.Metrics
	config     *config.Config
}

func NewHealthApi(controller *HealthController, m *metrics.Metrics, cfg *config.Config) api.Route {
	return &HealthApi{
		controller: controller,
		metrics:    m,
		config:     cfg,
	}
}

// Setup registers health, metrics and debug routes
func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.controller.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.metrics.Gatherer(), promhttp.HandlerOpts{})))

	if !h.config.IsProduction() {
		debug := app.Group("/api/debug", middleware.AuthMiddleware(h.config.SkipAuth))
		debug.Get("/me", h.controller.GetCurrentUser)
	}
}
