package directory

import (
	"go-hse/internal/common/api"
	"go-hse/internal/config"
	"go-hse/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DirectoryApi struct {
	controller *DirectoryController
	config     *config.Config
}

func NewDirectoryApi(controller *DirectoryController, config *config.Config) api.Route {
	return &DirectoryApi{controller: controller, config: config}
}

func (h *DirectoryApi) Setup(app *fiber.App) {
	group := app.Group("/api/directory", middleware.AuthMiddleware(h.config.SkipAuth))
	group.Get("/me", h.controller.Me)
	group.Get("/people", h.controller.People)
}
