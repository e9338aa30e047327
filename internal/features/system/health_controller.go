package system

import (
	"context"
	"time"

	"go-hse/internal/config"
	"go-hse/internal/database"
	"go-hse/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

type HealthController struct {
	mongodb  *database.MongodbDB
	redis    *redis.Client
	sql      *database.SQLDB
	config   *config.Config
}

// NewHealthController accepts nil redis and sql handles; those backends are then left out
// of the report.
func NewHealthController(mongodb *database.MongodbDB, rdb *redis.Client, sdb *database.SQLDB, cfg *config.Config) *HealthController {
	return &HealthController{mongodb: mongodb, redis: rdb, sql: sdb, config: cfg}
}

func (c *HealthController) checks() map[string]func(ctx context.Context) error {
	checks := map[string]func(ctx context.Context) error{}
	if c.mongodb != nil {
		checks["mongo"] = func(ctx context.Context) error { return c.mongodb.Client.Ping(ctx, nil) }
	}
	if c.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return c.redis.Ping(ctx).Err() }
	}
	if c.sql != nil {
		checks[c.sql.Driver] = c.sql.DB.PingContext
	}
	return checks
}

// Health godoc
// @Summary      Health check
// @Description  Pings every configured backend
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (c *HealthController) Health(ctx *fiber.Ctx) error {
	ctxt, cancel := context.WithTimeout(ctx.UserContext(), pingTimeout)
	defer cancel()

	status := fiber.StatusOK
	backends := fiber.Map{}
	for name, ping := range c.checks() {
		if err := ping(ctxt); err != nil {
			backends[name] = err.Error()
			status = fiber.StatusServiceUnavailable
			continue
		}
		backends[name] = "ok"
	}

	state := "ok"
	if status != fiber.StatusOK {
		state = "degraded"
	}
	return ctx.Status(status).JSON(fiber.Map{
		"status":    state,
		"app_id":    c.config.AppId,
		"kv_driver": c.config.KVDriver,
		"backends":  backends,
	})
}

// GetCurrentUser godoc
// @Summary      Get current user info
// @Description  Get the current user's info from JWT
// @Tags         debug
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/debug/me [get]
func (c *HealthController) GetCurrentUser(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return ctx.JSON(fiber.Map{
		"user_id":    identity.UserID,
		"email":      identity.Email,
		"company_id": identity.CompanyID,
		"role":       identity.Role,
		"message":    "This is your current JWT token data",
	})
}
