package api

import "github.com/gofiber/fiber/v2"

// Route is implemented by every feature API and registered through the fx "routes" group.
type Route interface {
	Setup(app *fiber.App)
}
