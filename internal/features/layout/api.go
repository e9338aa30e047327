package layout

import (
	"go-hse/internal/common/api"
	"go-hse/internal/config"
	"go-hse/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type LayoutApi struct {
	controller *LayoutController
	config     *config.Config
}

func NewLayoutApi(controller *LayoutController, config *config.Config) api.Route {
	return &LayoutApi{
		controller: controller,
		config:     config,
	}
}

func (h *LayoutApi) Setup(app *fiber.App) {
	group := app.Group("/api/layouts", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/:dashboard/ws", middleware.RequireWebSocketUpgrade(), websocket.New(h.controller.HandleGestureStream))
	group.Get("/:dashboard", h.controller.GetLayout)
	group.Post("/:dashboard/changes", h.controller.LayoutChange)
	group.Post("/:dashboard/gestures/:gesture/start", h.controller.StartGesture)
	group.Post("/:dashboard/gestures/:gesture/stop", h.controller.StopGesture)
	group.Post("/:dashboard/widgets/:widgetId/:action", h.controller.SetVisibility)
	group.Post("/:dashboard/reset", h.controller.ResetLayout)
}
