package report

import (
	"go-hse/internal/common/api"
	"go-hse/internal/config"
	"go-hse/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	ReportController *ReportController
	Config           *config.Config
}

func NewReportApi(reportController *ReportController, config *config.Config) api.Route {
	return &ReportApi{
		ReportController: reportController,
		Config:           config,
	}
}

func (api *ReportApi) Setup(app *fiber.App) {
	group := app.Group("/api/reports", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Post("/", api.ReportController.Create)
	group.Get("/", api.ReportController.List)
	group.Get("/:id", api.ReportController.Get)
	group.Put("/:id", api.ReportController.Update)
	group.Delete("/:id", api.ReportController.Delete)
	group.Post("/:id/duplicate", api.ReportController.Duplicate)
	group.Get("/:id/data", api.ReportController.Data)
	group.Get("/:id/export", api.ReportController.Export)
}
