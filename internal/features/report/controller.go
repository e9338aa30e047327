package report

import (
	"errors"
	"fmt"
	"strings"

	"go-hse/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportController struct {
	ReportService ReportService
}

func NewReportController(reportService ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

func errorResponse(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrReportNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report not found"})
	case errors.Is(err, ErrNameMissing), errors.Is(err, ErrUnsupportedDataSource):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

// Create godoc
// @Summary Create a custom report
// @Tags reports
// @Accept json
// @Produce json
// @Param report body ReportInput true "Report"
// @Success 201 {object} CustomReport
// @Failure 400 {object} map[string]interface{}
// @Router /api/reports [post]
func (c *ReportController) Create(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	var input ReportInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	report, err := c.ReportService.CreateReport(ctx.UserContext(), identity, input)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(report)
}

// List godoc
// @Summary List the caller's custom reports
// @Tags reports
// @Produce json
// @Success 200 {array} CustomReport
// @Router /api/reports [get]
func (c *ReportController) List(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	reports, err := c.ReportService.ListReports(ctx.UserContext(), identity)
	if err != nil {
		return errorResponse(ctx, err)
	}
	if reports == nil {
		reports = []CustomReport{}
	}
	return ctx.JSON(reports)
}

// Get godoc
// @Summary Get a custom report
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} CustomReport
// @Failure 404 {object} map[string]interface{}
// @Router /api/reports/{id} [get]
func (c *ReportController) Get(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	report, err := c.ReportService.GetReport(ctx.UserContext(), identity, ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(report)
}

// Update godoc
// @Summary Update a custom report
// @Tags reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param report body ReportInput true "Report"
// @Success 200 {object} CustomReport
// @Router /api/reports/{id} [put]
func (c *ReportController) Update(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	var input ReportInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	report, err := c.ReportService.UpdateReport(ctx.UserContext(), identity, ctx.Params("id"), input)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(report)
}

// Delete godoc
// @Summary Delete a custom report
// @Tags reports
// @Param id path string true "Report ID"
// @Success 204
// @Router /api/reports/{id} [delete]
func (c *ReportController) Delete(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if err := c.ReportService.DeleteReport(ctx.UserContext(), identity, ctx.Params("id")); err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// Duplicate godoc
// @Summary Duplicate a custom report
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 201 {object} map[string]interface{}
// @Router /api/reports/{id}/duplicate [post]
func (c *ReportController) Duplicate(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	report, err := c.ReportService.DuplicateReport(ctx.UserContext(), identity, ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"title":       "Report Duplicated",
		"description": fmt.Sprintf("Created a copy of %q", strings.TrimSuffix(report.Name, copySuffix)),
		"report":      report,
	})
}

// Data godoc
// @Summary Chart data of a custom report
// @Description Grouped counts of the report's data source, e.g. incidents by location
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {array} DataPoint
// @Failure 404 {object} map[string]interface{}
// @Router /api/reports/{id}/data [get]
func (c *ReportController) Data(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	points, err := c.ReportService.ReportData(ctx.UserContext(), identity, ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(points)
}

// Export godoc
// @Summary Export a custom report
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Report ID"
// @Success 200 {file} file
// @Router /api/reports/{id}/export [get]
func (c *ReportController) Export(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	data, filename, err := c.ReportService.ExportReport(ctx.UserContext(), identity, ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, err)
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	return ctx.Send(data)
}
