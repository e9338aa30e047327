package middleware

import (
	"context"
	"strings"

	common_models "go-hse/internal/common/models"
	"go-hse/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates JWT tokens and injects user claims into locals and the user context.
func AuthMiddleware(skipAuth bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipAuth {
			devClaims := &utils.UserClaims{
				UserID:    "dev-user-id",
				Email:     "dev@localhost",
				CompanyID: c.Get("X-Company-ID", "dev-company-id"),
				Role:      utils.RoleCompanyAdmin,
			}
			attachClaims(c, devClaims)
			return c.Next()
		}

		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}
		if claims.CompanyID == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "No company associated with this account",
			})
		}

		attachClaims(c, claims)
		return c.Next()
	}
}

// bearerToken reads "Bearer <token>" from the header, or ?token= for websocket upgrades.
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	if authHeader == "" {
		return c.Query("token")
	}
	return ""
}

func attachClaims(c *fiber.Ctx, claims *utils.UserClaims) {
	c.Locals(utils.UserClaimsKey, claims)
	ctx := utils.WithClaims(c.UserContext(), claims)
	ctx = context.WithValue(ctx, common_models.CompanyIDKey, claims.CompanyID)
	c.SetUserContext(ctx)
}

// CurrentIdentity returns the caller set by AuthMiddleware.
func CurrentIdentity(c *fiber.Ctx) (common_models.Identity, bool) {
	return IdentityFromValue(c.Locals(utils.UserClaimsKey))
}

// IdentityFromValue converts a stored claims value, e.g. a websocket connection local.
func IdentityFromValue(v interface{}) (common_models.Identity, bool) {
	claims, ok := v.(*utils.UserClaims)
	if !ok || claims == nil {
		return common_models.Identity{}, false
	}
	return IdentityFromClaims(claims), true
}

func IdentityFromClaims(claims *utils.UserClaims) common_models.Identity {
	return common_models.Identity{
		UserID:    claims.UserID,
		Email:     claims.Email,
		CompanyID: claims.CompanyID,
		Role:      claims.Role,
	}
}
