package billing

import (
	"go-hse/internal/common/api"
	"go-hse/internal/config"
	"go-hse/internal/middleware"
	"go-hse/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type BillingApi struct {
	BillingController *BillingController
	Config            *config.Config
}

func NewBillingApi(billingController *BillingController, config *config.Config) api.Route {
	return &BillingApi{
		BillingController: billingController,
		Config:            config,
	}
}

func (api *BillingApi) Setup(app *fiber.App) {
	// Stripe calls the webhook without a user token.
	app.Post("/api/billing/webhook", api.BillingController.Webhook)

	group := app.Group("/api/billing", middleware.AuthMiddleware(api.Config.SkipAuth))
	admin := middleware.RequireRole(api.Config.SkipAuth, utils.RoleSuperAdmin, utils.RoleCompanyAdmin)

	group.Get("/invoices", api.BillingController.ListInvoices)
	group.Post("/checkout", admin, api.BillingController.Checkout)
	group.Post("/portal", admin, api.BillingController.Portal)

	superAdmin := app.Group("/api/admin/invoices",
		middleware.AuthMiddleware(api.Config.SkipAuth),
		middleware.RequireRole(api.Config.SkipAuth, utils.RoleSuperAdmin))
	superAdmin.Get("/", api.BillingController.AllInvoices)
	superAdmin.Get("/export", api.BillingController.ExportInvoices)
}
