package notification

import (
	"errors"

	"go-hse/internal/middleware"
	"go-hse/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type NotificationController struct {
	service NotificationService
	hub     *Hub
	logger  *zap.Logger
}

func NewNotificationController(service NotificationService, hub *Hub, logger *zap.Logger) *NotificationController {
	return &NotificationController{
		service: service,
		hub:     hub,
		logger:  logger,
	}
}

// List godoc
// @Summary List notifications
// @Description Stored notifications merged with task mentions, newest first
// @Tags notifications
// @Produce json
// @Param surface query string false "bell or page" default(page)
// @Success 200 {object} map[string]interface{}
// @Router /api/notifications [get]
func (c *NotificationController) List(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	surface := ctx.Query("surface", SurfacePage)
	if surface != SurfaceBell && surface != SurfacePage {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "surface must be bell or page"})
	}

	feed := c.service.Feed(ctx.UserContext(), identity, surface)
	return ctx.JSON(fiber.Map{
		"data":  feed,
		"total": len(feed),
	})
}

// GetUnreadCount godoc
// @Summary Unread notification count
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/notifications/unread-count [get]
func (c *NotificationController) GetUnreadCount(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return ctx.JSON(fiber.Map{"count": c.service.UnreadCount(ctx.UserContext(), identity)})
}

// MarkAsRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/notifications/{id}/read [put]
func (c *NotificationController) MarkAsRead(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if err := c.service.MarkAsRead(ctx.UserContext(), identity, ctx.Params("id")); err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(fiber.Map{"status": "success"})
}

// MarkAllAsRead godoc
// @Summary Mark all stored notifications as read
// @Tags notifications
// @Success 200 {object} map[string]interface{}
// @Router /api/notifications/mark-all-read [post]
func (c *NotificationController) MarkAllAsRead(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	n, err := c.service.MarkAllAsRead(ctx.UserContext(), identity)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"status": "success", "updated": n})
}

// Delete godoc
// @Summary Delete or dismiss a notification
// @Tags notifications
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/notifications/{id} [delete]
func (c *NotificationController) Delete(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if err := c.service.Delete(ctx.UserContext(), identity, ctx.Params("id")); err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(fiber.Map{"status": "success"})
}

// Stream pushes new notifications until the client disconnects.
func (c *NotificationController) Stream(conn *websocket.Conn) {
	identity, ok := middleware.IdentityFromValue(conn.Locals(utils.UserClaimsKey))
	if !ok {
		_ = conn.WriteJSON(fiber.Map{"type": "error", "error": "unauthorized"})
		return
	}

	clientID := c.hub.Subscribe(identity.CompanyID, identity.UserID, conn)
	defer c.hub.Unsubscribe(identity.CompanyID, identity.UserID, clientID)

	// Incoming frames are ignored, reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			c.logger.Debug("Notification stream closed", zap.String("client_id", clientID), zap.Error(err))
			return
		}
	}
}

func errorResponse(ctx *fiber.Ctx, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
