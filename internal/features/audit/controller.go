package audit

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

// ListLogs godoc
// @Summary List audit logs
// @Description Security view of user actions, newest first
// @Tags audit
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Param company_id query string false "Company"
// @Param action query string false "Action"
// @Success 200 {array} models.AuditLog
// @Failure 403 {object} map[string]interface{}
// @Router /api/audit-logs [get]
func (ctrl *AuditController) ListLogs(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	filters := make(map[string]interface{})
	for _, key := range []string{"company_id", "action", "module", "record_id", "actor_id"} {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}

	logs, err := ctrl.Service.ListLogs(c.UserContext(), filters, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(logs)
}

// SecuritySummary godoc
// @Summary Security overview
// @Description Counts of platform admin actions and role changes with the newest of each
// @Tags audit
// @Produce json
// @Success 200 {object} SecuritySummary
// @Failure 403 {object} map[string]interface{}
// @Router /api/audit-logs/security [get]
func (ctrl *AuditController) SecuritySummary(c *fiber.Ctx) error {
	summary, err := ctrl.Service.SecuritySummary(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(summary)
}
