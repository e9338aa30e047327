package audit

import (
	"go-hse/internal/common/api"
	"go-hse/internal/config"
	"go-hse/internal/middleware"
	"go-hse/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	config     *config.Config
}

func NewAuditApi(controller *AuditController, config *config.Config) api.Route {
	return &AuditApi{
		controller: controller,
		config:     config,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	audit := app.Group("/api/audit-logs", middleware.AuthMiddleware(h.config.SkipAuth))

	superAdmin := middleware.RequireRole(h.config.SkipAuth, utils.RoleSuperAdmin)
	audit.Get("/", superAdmin, h.controller.ListLogs)
	audit.Get("/security", superAdmin, h.controller.SecuritySummary)
}
