package layout

import (
	"context"
	"errors"

	"go-hse/internal/config"
	"go-hse/internal/middleware"
	"go-hse/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// LayoutView is what the grid renders.
type LayoutView struct {
	Dashboard    string       `json:"dashboard"`
	Layouts      Layouts      `json:"layouts"`
	Hidden       []string     `json:"hidden"`
	Widgets      []WidgetSpec `json:"widgets"`
	GestureState string       `json:"gesture_state"`
}

type layoutRequest struct {
	Layouts Layouts `json:"layouts"`
}

type LayoutController struct {
	service    LayoutService
	dashboards map[string]bool
	logger     *zap.Logger
}

func NewLayoutController(service LayoutService, cfg *config.Config, logger *zap.Logger) *LayoutController {
	dashboards := map[string]bool{DefaultDashboard: true}
	for _, d := range cfg.LayoutDashboards {
		dashboards[d] = true
	}
	return &LayoutController{service: service, dashboards: dashboards, logger: logger}
}

var errUnknownDashboard = fiber.NewError(fiber.StatusNotFound, "dashboard not found")

// sessionRef builds the session reference for the caller. Dashboards outside the
// configured set are rejected.
func (ctrl *LayoutController) sessionRef(ctx *fiber.Ctx) (SessionRef, string, error) {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return SessionRef{}, "", fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	dashboard := ctx.Params("dashboard", DefaultDashboard)
	if !ctrl.dashboards[dashboard] {
		return SessionRef{}, "", errUnknownDashboard
	}
	return SessionRef{CompanyID: identity.CompanyID, UserID: identity.UserID, Dashboard: dashboard}, dashboard, nil
}

func viewOf(dashboard string, e *Engine) LayoutView {
	return LayoutView{
		Dashboard:    dashboard,
		Layouts:      e.VisibleLayouts(),
		Hidden:       e.HiddenWidgets(),
		Widgets:      e.Widgets(),
		GestureState: e.State().String(),
	}
}

func (ctrl *LayoutController) engine(ctx *fiber.Ctx) (*Engine, string, error) {
	ref, dashboard, err := ctrl.sessionRef(ctx)
	if err != nil {
		return nil, "", err
	}
	return ctrl.service.Session(ctx.UserContext(), ref), dashboard, nil
}

// GetLayout godoc
// @Summary Get dashboard layout
// @Description Visible layouts per breakpoint, hidden widgets and the widget catalog
// @Tags layouts
// @Produce json
// @Param dashboard path string true "Dashboard"
// @Success 200 {object} LayoutView
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/layouts/{dashboard} [get]
func (ctrl *LayoutController) GetLayout(ctx *fiber.Ctx) error {
	e, dashboard, err := ctrl.engine(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(viewOf(dashboard, e))
}

// StartGesture godoc
// @Summary Start a drag or resize gesture
// @Tags layouts
// @Param dashboard path string true "Dashboard"
// @Param gesture path string true "drag or resize"
// @Success 200 {object} map[string]interface{}
// @Router /api/layouts/{dashboard}/gestures/{gesture}/start [post]
func (ctrl *LayoutController) StartGesture(ctx *fiber.Ctx) error {
	e, _, err := ctrl.engine(ctx)
	if err != nil {
		return err
	}
	switch ctx.Params("gesture") {
	case "drag":
		e.DragStart()
	case "resize":
		e.ResizeStart()
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "gesture must be drag or resize"})
	}
	return ctx.JSON(fiber.Map{"gesture_state": e.State().String()})
}

// StopGesture godoc
// @Summary Stop a drag or resize gesture
// @Description Commits the pending layout (or the final layout in the body) once
// @Tags layouts
// @Accept json
// @Produce json
// @Param dashboard path string true "Dashboard"
// @Param gesture path string true "drag or resize"
// @Success 200 {object} map[string]interface{}
// @Router /api/layouts/{dashboard}/gestures/{gesture}/stop [post]
func (ctrl *LayoutController) StopGesture(ctx *fiber.Ctx) error {
	e, dashboard, err := ctrl.engine(ctx)
	if err != nil {
		return err
	}

	var req layoutRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	var written bool
	switch ctx.Params("gesture") {
	case "drag":
		written = e.DragStop(ctx.UserContext(), req.Layouts)
	case "resize":
		written = e.ResizeStop(ctx.UserContext(), req.Layouts)
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "gesture must be drag or resize"})
	}
	return ctx.JSON(fiber.Map{"written": written, "layout": viewOf(dashboard, e)})
}

// LayoutChange godoc
// @Summary Report a layout change from the grid
// @Description Buffered while a gesture is active, persisted otherwise
// @Tags layouts
// @Accept json
// @Produce json
// @Param dashboard path string true "Dashboard"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/layouts/{dashboard}/changes [post]
func (ctrl *LayoutController) LayoutChange(ctx *fiber.Ctx) error {
	e, _, err := ctrl.engine(ctx)
	if err != nil {
		return err
	}
	var req layoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Layouts == nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "layouts is required"})
	}
	written := e.LayoutChange(ctx.UserContext(), req.Layouts)
	return ctx.JSON(fiber.Map{"written": written, "gesture_state": e.State().String()})
}

// SetVisibility godoc
// @Summary Hide, show or toggle a widget
// @Tags layouts
// @Produce json
// @Param dashboard path string true "Dashboard"
// @Param widgetId path string true "Widget ID"
// @Param action path string true "hide, show or toggle"
// @Success 200 {object} LayoutView
// @Failure 404 {object} map[string]interface{}
// @Router /api/layouts/{dashboard}/widgets/{widgetId}/{action} [post]
func (ctrl *LayoutController) SetVisibility(ctx *fiber.Ctx) error {
	e, dashboard, err := ctrl.engine(ctx)
	if err != nil {
		return err
	}
	widgetID := ctx.Params("widgetId")

	switch ctx.Params("action") {
	case "hide":
		err = e.Hide(ctx.UserContext(), widgetID)
	case "show":
		err = e.Show(ctx.UserContext(), widgetID)
	case "toggle":
		_, err = e.Toggle(ctx.UserContext(), widgetID)
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "action must be hide, show or toggle"})
	}
	if errors.Is(err, ErrUnknownWidget) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "widget not found"})
	}
	return ctx.JSON(viewOf(dashboard, e))
}

// ResetLayout godoc
// @Summary Reset dashboard layout
// @Description Restores the default layout and shows every widget again
// @Tags layouts
// @Produce json
// @Param dashboard path string true "Dashboard"
// @Success 200 {object} map[string]interface{}
// @Router /api/layouts/{dashboard}/reset [post]
func (ctrl *LayoutController) ResetLayout(ctx *fiber.Ctx) error {
	ref, dashboard, err := ctrl.sessionRef(ctx)
	if err != nil {
		return err
	}

	e := ctrl.service.ResetLayout(ctx.UserContext(), ref)
	return ctx.JSON(fiber.Map{
		"title":       "Layout Reset",
		"description": "Dashboard layout has been reset to default view",
		"layout":      viewOf(dashboard, e),
	})
}

// Gesture stream message types.
const (
	msgDragStart    = "drag_start"
	msgResizeStart  = "resize_start"
	msgLayoutChange = "layout_change"
	msgDragStop     = "drag_stop"
	msgResizeStop   = "resize_stop"
	msgCancel       = "cancel"
)

type gestureMessage struct {
	Type    string  `json:"type"`
	Layouts Layouts `json:"layouts,omitempty"`
}

type gestureReply struct {
	Type    string      `json:"type"`
	Written bool        `json:"written,omitempty"`
	Layout  *LayoutView `json:"layout,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HandleGestureStream drives an engine from grid events sent over a websocket. A socket
// that closes mid-gesture commits whatever is pending. The session stays registered
// while the socket is open.
func (ctrl *LayoutController) HandleGestureStream(c *websocket.Conn) {
	identity, ok := middleware.IdentityFromValue(c.Locals(utils.UserClaimsKey))
	if !ok {
		_ = c.WriteJSON(gestureReply{Type: "error", Error: "unauthorized"})
		return
	}
	dashboard := c.Params("dashboard", DefaultDashboard)
	if !ctrl.dashboards[dashboard] {
		_ = c.WriteJSON(gestureReply{Type: "error", Error: "dashboard not found"})
		return
	}
	ctx := context.Background()
	e, release := ctrl.service.Attach(ctx, SessionRef{CompanyID: identity.CompanyID, UserID: identity.UserID, Dashboard: dashboard})
	defer release()

	for {
		var msg gestureMessage
		if err := c.ReadJSON(&msg); err != nil {
			if e.State() != GestureIdle {
				e.CancelGesture(ctx)
			}
			ctrl.logger.Debug("Gesture stream closed", zap.String("user_id", identity.UserID), zap.Error(err))
			return
		}

		var reply *gestureReply
		switch msg.Type {
		case msgDragStart:
			e.DragStart()
		case msgResizeStart:
			e.ResizeStart()
		case msgLayoutChange:
			e.LayoutChange(ctx, msg.Layouts)
		case msgDragStop, msgResizeStop, msgCancel:
			var written bool
			switch msg.Type {
			case msgDragStop:
				written = e.DragStop(ctx, msg.Layouts)
			case msgResizeStop:
				written = e.ResizeStop(ctx, msg.Layouts)
			default:
				written = e.CancelGesture(ctx)
			}
			view := viewOf(dashboard, e)
			reply = &gestureReply{Type: "layout", Written: written, Layout: &view}
		default:
			reply = &gestureReply{Type: "error", Error: "unknown message type " + msg.Type}
		}

		if reply != nil {
			if err := c.WriteJSON(reply); err != nil {
				ctrl.logger.Debug("Gesture stream write failed", zap.Error(err))
				return
			}
		}
	}
}
