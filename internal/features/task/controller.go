package task

import (
	"errors"

	"go-hse/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type TaskController struct {
	service TaskService
}

func NewTaskController(service TaskService) *TaskController {
	return &TaskController{service: service}
}

// ListTasks godoc
// @Summary List visible tasks
// @Description Tasks filtered by @mentions and assignment for the caller
// @Tags tasks
// @Produce json
// @Param surface query string false "dashboard or tasks" default(tasks)
// @Param status query string false "upcoming, completed or all" default(all)
// @Success 200 {array} mention.VisibleTask
// @Router /api/tasks [get]
func (ctrl *TaskController) ListTasks(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	surface := ctx.Query("surface", SurfaceTasks)
	status := ctx.Query("status", FilterAll)
	if status != FilterAll && status != FilterUpcoming && status != FilterCompleted {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be upcoming, completed or all"})
	}
	return ctx.JSON(ctrl.service.ListVisible(ctx.UserContext(), identity, surface, status))
}

// CreateTask godoc
// @Summary Create a task
// @Description Creates a task and notifies mentioned people and the assignee
// @Tags tasks
// @Accept json
// @Produce json
// @Param task body CreateTaskInput true "Task"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/tasks [post]
func (ctrl *TaskController) CreateTask(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	var input CreateTaskInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	task, sent, err := ctrl.service.CreateTask(ctx.UserContext(), identity, input)
	if errors.Is(err, ErrTitleMissing) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"task": task, "notifications_sent": sent})
}

// ToggleStatus godoc
// @Summary Toggle task completion
// @Tags tasks
// @Param id path string true "Task ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/tasks/{id}/toggle [post]
func (ctrl *TaskController) ToggleStatus(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	task, err := ctrl.service.ToggleStatus(ctx.UserContext(), identity, ctx.Params("id"))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.JSON(task)
}

// DeleteTask godoc
// @Summary Delete a task
// @Tags tasks
// @Param id path string true "Task ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /api/tasks/{id} [delete]
func (ctrl *TaskController) DeleteTask(ctx *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if err := ctrl.service.DeleteTask(ctx.UserContext(), identity, ctx.Params("id")); err != nil {
		return errorResponse(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func errorResponse(ctx *fiber.Ctx, err error) error {
	if errors.Is(err, ErrTaskNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
