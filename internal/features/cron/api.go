package cron_feature

import (
	"go-hse/internal/common/api"
	"go-hse/internal/config"
	"go-hse/internal/middleware"
	"go-hse/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type CronApi struct {
	cronController *CronController
	config         *config.Config
}

func NewCronApi(cronController *CronController, config *config.Config) api.Route {
	return &CronApi{
		cronController: cronController,
		config:         config,
	}
}

func (h *CronApi) Setup(app *fiber.App) {
	cronJobs := app.Group("/api/cron-jobs",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(h.config.SkipAuth, utils.RoleSuperAdmin),
	)

	cronJobs.Get("/", h.cronController.ListCronJobs)
	cronJobs.Post("/:name/execute", h.cronController.ExecuteCronJob)
	cronJobs.Get("/:name/logs", h.cronController.GetCronJobLogs)
}
