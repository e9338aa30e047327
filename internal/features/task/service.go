package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	common_models "go-hse/internal/common/models"
	"go-hse/internal/config"
	"go-hse/internal/features/audit"
	"go-hse/internal/features/directory"
	"go-hse/internal/features/mention"
	"go-hse/internal/features/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Task list surfaces.
const (
	SurfaceDashboard = "dashboard"
	SurfaceTasks     = "tasks"
)

const (
	fetchLimit         = 100
	dashboardTaskLimit = 20
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrTitleMissing = errors.New("title is required")
)

type CreateTaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssignedTo  string     `json:"assigned_to"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

type TaskService interface {
	ListVisible(ctx context.Context, identity common_models.Identity, surface, filter string) []mention.VisibleTask
	CreateTask(ctx context.Context, identity common_models.Identity, input CreateTaskInput) (*common_models.Task, int, error)
	ToggleStatus(ctx context.Context, identity common_models.Identity, id string) (*common_models.Task, error)
	DeleteTask(ctx context.Context, identity common_models.Identity, id string) error
}

type TaskServiceImpl struct {
	repo          TaskRepository
	people        directory.DirectoryService
	resolver      *mention.NameResolver
	notifications notification.NotificationService
	auditService  audit.AuditService
	config        *config.Config
	logger        *zap.Logger
}

func NewTaskService(
	repo TaskRepository,
	people directory.DirectoryService,
	resolver *mention.NameResolver,
	notifications notification.NotificationService,
	auditService audit.AuditService,
	cfg *config.Config,
	logger *zap.Logger,
) TaskService {
	return &TaskServiceImpl{
		repo:          repo,
		people:        people,
		resolver:      resolver,
		notifications: notifications,
		auditService:  auditService,
		config:        cfg,
		logger:        logger,
	}
}

// ListVisible returns the tasks the caller may see on a surface. A failed fetch yields
// an empty list.
func (s *TaskServiceImpl) ListVisible(ctx context.Context, identity common_models.Identity, surface, filter string) []mention.VisibleTask {
	tasks, err := s.repo.List(ctx, identity.CompanyID, filter, fetchLimit)
	if err != nil {
		s.logger.Error("Failed to fetch tasks",
			zap.String("company_id", identity.CompanyID),
			zap.String("surface", surface),
			zap.Error(err))
		return []mention.VisibleTask{}
	}

	limit := 0
	if surface == SurfaceDashboard {
		limit = dashboardTaskLimit
	}
	policy := mention.Policy{EnforceForElevatedRoles: s.config.EnforcesMentionFilter(surface)}
	viewer := s.resolver.Resolve(ctx, identity).Viewer(identity.Role)
	return policy.Filter(tasks, viewer, limit)
}

// CreateTask stores the task and notifies mentioned people and the assignee. It returns
// the number of notifications sent; notification failures do not fail the call.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, identity common_models.Identity, input CreateTaskInput) (*common_models.Task, int, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, 0, ErrTitleMissing
	}

	now := time.Now()
	task := &common_models.Task{
		ID:          uuid.NewString(),
		CompanyID:   identity.CompanyID,
		Title:       title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		AssignedTo:  input.AssignedTo,
		CreatedBy:   identity.UserID,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Status == "" {
		task.Status = common_models.TaskStatusPending
	}
	if task.Priority == "" {
		task.Priority = "medium"
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, 0, err
	}

	if s.auditService != nil {
		_ = s.auditService.LogChange(ctx, common_models.AuditActionAssignTask, "tasks", task.ID, map[string]common_models.Change{
			"assigned_to": {Old: nil, New: task.AssignedTo},
		})
	}

	sent := s.notifyTask(ctx, identity, task)
	s.logger.Info("Task created",
		zap.String("task_id", task.ID),
		zap.String("company_id", task.CompanyID),
		zap.Int("notifications", sent))
	return task, sent, nil
}

func (s *TaskServiceImpl) notifyTask(ctx context.Context, sender common_models.Identity, task *common_models.Task) int {
	people, err := s.people.People(ctx, task.CompanyID)
	if err != nil {
		s.logger.Error("Failed to list people for task notifications", zap.String("task_id", task.ID), zap.Error(err))
		return 0
	}
	senderName := s.resolver.SenderName(ctx, sender)

	notified := make(map[string]bool)
	sent := 0
	send := func(userID, title, message string) {
		if userID == "" || userID == sender.UserID || notified[userID] {
			return
		}
		notified[userID] = true
		err := s.notifications.Create(ctx, &notification.Notification{
			CompanyID: task.CompanyID,
			UserID:    userID,
			Title:     title,
			Message:   message,
			Category:  notification.CategoryTask,
			Type:      notification.NotificationTypeInfo,
			RelatedID: task.ID,
		})
		if err != nil {
			s.logger.Warn("Failed to create task notification", zap.String("user_id", userID), zap.Error(err))
			return
		}
		sent++
	}

	for _, p := range people {
		if mention.Mentions(*task, p.Name) {
			send(p.UserID, "You were mentioned in a task", fmt.Sprintf("%s mentioned you in %q", senderName, task.Title))
		}
	}
	if task.AssignedTo != "" {
		for _, p := range people {
			if p.EmployeeID == task.AssignedTo {
				send(p.UserID, "New task assigned", fmt.Sprintf("%s assigned you %q", senderName, task.Title))
			}
		}
	}
	return sent
}

// ToggleStatus flips a task between pending and completed. In-progress tasks complete.
func (s *TaskServiceImpl) ToggleStatus(ctx context.Context, identity common_models.Identity, id string) (*common_models.Task, error) {
	task, err := s.repo.FindByID(ctx, identity.CompanyID, id)
	if err != nil {
		return nil, err
	}

	next, action := common_models.TaskStatusCompleted, common_models.AuditActionCompleteTask
	if task.Status == common_models.TaskStatusCompleted {
		next, action = common_models.TaskStatusPending, common_models.AuditActionReopenTask
	}
	if err := s.repo.UpdateStatus(ctx, identity.CompanyID, id, next); err != nil {
		return nil, err
	}

	if s.auditService != nil {
		_ = s.auditService.LogChange(ctx, action, "tasks", id, map[string]common_models.Change{
			"status": {Old: task.Status, New: next},
		})
	}
	task.Status = next
	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, identity common_models.Identity, id string) error {
	if err := s.repo.Delete(ctx, identity.CompanyID, id); err != nil {
		return err
	}
	if s.auditService != nil {
		_ = s.auditService.LogChange(ctx, common_models.AuditActionDeleteTask, "tasks", id, nil)
	}
	return nil
}
