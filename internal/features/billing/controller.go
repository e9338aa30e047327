package billing

import (
	"errors"
	"fmt"

	"go-hse/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type BillingController struct {
	BillingService BillingService
	logger         *zap.Logger
}

func NewBillingController(billingService BillingService, logger *zap.Logger) *BillingController {
	return &BillingController{BillingService: billingService, logger: logger}
}

// Webhook godoc
// @Summary Stripe webhook
// @Description Verifies the Stripe-Signature header and applies subscription, invoice and checkout events
// @Tags billing
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/billing/webhook [post]
func (c *BillingController) Webhook(ctx *fiber.Ctx) error {
	signature := ctx.Get("Stripe-Signature")
	if signature == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Webhook Error: missing signature"})
	}

	event, err := c.BillingService.ParseEvent(ctx.Body(), signature)
	if err != nil {
		c.logger.Warn("Stripe signature verification failed", zap.Error(err))
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Webhook Error: " + err.Error()})
	}

	if err := c.BillingService.HandleEvent(ctx.UserContext(), event); err != nil {
		c.logger.Error("Stripe webhook handler failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Handler Error: " + err.Error()})
	}
	return ctx.JSON(fiber.Map{"received": true})
}

// Checkout godoc
// @Summary Start a subscription checkout
// @Tags billing
// @Accept json
// @Produce json
// @Param request body CheckoutRequest true "Checkout"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/billing/checkout [post]
func (c *BillingController) Checkout(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	var req CheckoutRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	url, err := c.BillingService.StartCheckout(ctx.UserContext(), identity, req)
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	return ctx.JSON(fiber.Map{"url": url})
}

// Portal godoc
// @Summary Open the Stripe billing portal
// @Tags billing
// @Accept json
// @Produce json
// @Param request body PortalRequest false "Portal"
// @Success 200 {object} map[string]interface{}
// @Router /api/billing/portal [post]
func (c *BillingController) Portal(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	var req PortalRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	url, err := c.BillingService.OpenPortal(ctx.UserContext(), identity, req)
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	return ctx.JSON(fiber.Map{"url": url})
}

// ListInvoices godoc
// @Summary List the company's invoices
// @Tags billing
// @Produce json
// @Success 200 {array} Invoice
// @Router /api/billing/invoices [get]
func (c *BillingController) ListInvoices(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	invoices, err := c.BillingService.ListInvoices(ctx.UserContext(), identity.CompanyID)
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	if invoices == nil {
		invoices = []Invoice{}
	}
	return ctx.JSON(invoices)
}

func invoiceQuery(ctx *fiber.Ctx) InvoiceQuery {
	query := InvoiceQuery{
		CompanyID: ctx.Query("company_id"),
		Status:    ctx.Query("status"),
		Search:    ctx.Query("search"),
		Sort:      ctx.Query("sort", "created_at"),
		Ascending: ctx.Query("dir") == "asc",
	}
	if query.CompanyID == "all" {
		query.CompanyID = ""
	}
	if query.Status == "all" {
		query.Status = ""
	}
	return query
}

// AllInvoices godoc
// @Summary List invoices across companies
// @Description Super admin view with totals per status and the owning company of each invoice
// @Tags billing
// @Produce json
// @Param company_id query string false "Company"
// @Param status query string false "Status"
// @Param search query string false "Invoice number, company name or email"
// @Param sort query string false "created_at, invoice_number, total, status or company"
// @Param dir query string false "asc or desc"
// @Success 200 {object} InvoiceOverview
// @Failure 403 {object} map[string]interface{}
// @Router /api/admin/invoices [get]
func (c *BillingController) AllInvoices(ctx *fiber.Ctx) error {
	overview, err := c.BillingService.AllInvoices(ctx.UserContext(), invoiceQuery(ctx))
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	return ctx.JSON(overview)
}

// ExportInvoices godoc
// @Summary Export invoices across companies
// @Tags billing
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /api/admin/invoices/export [get]
func (c *BillingController) ExportInvoices(ctx *fiber.Ctx) error {
	data, filename, err := c.BillingService.ExportInvoices(ctx.UserContext(), invoiceQuery(ctx))
	if err != nil {
		return c.errorResponse(ctx, err)
	}
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	return ctx.Send(data)
}

func (c *BillingController) errorResponse(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNoPrice):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrCompanyNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No company found"})
	default:
		c.logger.Error("Billing request failed", zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
