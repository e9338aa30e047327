package middleware

import (
	"slices"

	"go-hse/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// RequireRole rejects callers whose role is not one of the given roles.
func RequireRole(skipAuth bool, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipAuth {
			return c.Next()
		}

		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		if !slices.Contains(roles, claims.Role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Insufficient role",
			})
		}

		return c.Next()
	}
}
