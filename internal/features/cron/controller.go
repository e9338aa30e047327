package cron_feature

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type CronController struct {
	Service CronService
}

func NewCronController(service CronService) *CronController {
	return &CronController{
		Service: service,
	}
}

// ListCronJobs godoc
// @Summary List cron jobs
// @Description List the housekeeping jobs with their schedules
// @Tags cron
// @Produce json
// @Success 200 {array} CronJob
// @Router /api/cron-jobs [get]
func (c *CronController) ListCronJobs(ctx *fiber.Ctx) error {
	return ctx.JSON(c.Service.ListCronJobs())
}

// ExecuteCronJob godoc
// @Summary Execute cron job
// @Description Run a housekeeping job now
// @Tags cron
// @Produce json
// @Param name path string true "Job name"
// @Success 200 {object} CronJobLog
// @Failure 404 {object} map[string]interface{}
// @Router /api/cron-jobs/{name}/execute [post]
func (c *CronController) ExecuteCronJob(ctx *fiber.Ctx) error {
	entry, err := c.Service.ExecuteCronJob(ctx.UserContext(), ctx.Params("name"))
	if errors.Is(err, ErrJobNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(entry)
}

// GetCronJobLogs godoc
// @Summary Get cron job logs
// @Description Recent runs of a job, newest first
// @Tags cron
// @Produce json
// @Param name path string true "Job name"
// @Param limit query int false "Limit"
// @Success 200 {array} CronJobLog
// @Failure 404 {object} map[string]interface{}
// @Router /api/cron-jobs/{name}/logs [get]
func (c *CronController) GetCronJobLogs(ctx *fiber.Ctx) error {
	logs, err := c.Service.GetCronJobLogs(ctx.UserContext(), ctx.Params("name"), ctx.QueryInt("limit", defaultLogLimit))
	if errors.Is(err, ErrJobNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if logs == nil {
		logs = []CronJobLog{}
	}
	return ctx.JSON(logs)
}
