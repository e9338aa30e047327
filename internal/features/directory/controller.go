package directory

import (
	"go-hse/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DirectoryController struct {
	service DirectoryService
}

func NewDirectoryController(service DirectoryService) *DirectoryController {
	return &DirectoryController{service: service}
}

// Me godoc
// @Summary Resolve the caller's display name
// @Description Name used for @mentions and the linked employee id, empty when no profile matches
// @Tags directory
// @Produce json
// @Success 200 {object} mention.Profile
// @Router /api/directory/me [get]
func (ctrl *DirectoryController) Me(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return ctx.JSON(ctrl.service.Me(ctx.UserContext(), identity))
}

// People godoc
// @Summary List mentionable people
// @Tags directory
// @Produce json
// @Success 200 {array} Person
// @Router /api/directory/people [get]
func (ctrl *DirectoryController) People(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	people, err := ctrl.service.People(ctx.UserContext(), identity.CompanyID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(people)
}
