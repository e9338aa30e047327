package notification

import (
	"context"
	"errors"
	"time"

	common_models "go-hse/internal/common/models"
	"go-hse/internal/config"
	"go-hse/internal/features/mention"
	"go-hse/internal/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// fetchSizes bounds the rows a feed is built from. Zero means every stored row.
type fetchSizes struct {
	persisted int64
	tasks     int64
}

var surfaceFetchSizes = map[string]fetchSizes{
	SurfaceBell: {persisted: 50, tasks: 100},
	SurfacePage: {persisted: 0, tasks: 200},
}

var ErrNotFound = errors.New("notification not found")

// TaskSource returns the most recent tasks of a company.
type TaskSource interface {
	RecentTasks(ctx context.Context, companyID string, limit int64) ([]common_models.Task, error)
}

type NotificationService interface {
	Feed(ctx context.Context, identity common_models.Identity, surface string) []mention.Notification
	UnreadCount(ctx context.Context, identity common_models.Identity) int
	MarkAsRead(ctx context.Context, identity common_models.Identity, id string) error
	MarkAllAsRead(ctx context.Context, identity common_models.Identity) (int64, error)
	Delete(ctx context.Context, identity common_models.Identity, id string) error
	Create(ctx context.Context, n *Notification) error
	PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

type NotificationServiceImpl struct {
	repo     NotificationRepository
	tasks    TaskSource
	resolver *mention.NameResolver
	hub      *Hub
	config   *config.Config
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewNotificationService(
	repo NotificationRepository,
	tasks TaskSource,
	resolver *mention.NameResolver,
	hub *Hub,
	cfg *config.Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) NotificationService {
	return &NotificationServiceImpl{
		repo:     repo,
		tasks:    tasks,
		resolver: resolver,
		hub:      hub,
		config:   cfg,
		metrics:  m,
		logger:   logger,
	}
}

func (s *NotificationServiceImpl) limitFor(surface string) int {
	if surface == SurfaceBell {
		return s.config.FeedLimitBell
	}
	return s.config.FeedLimitPage
}

// Feed merges the user's stored notifications with synthetic mention entries. Failed
// fetches degrade to fewer entries rather than an error.
func (s *NotificationServiceImpl) Feed(ctx context.Context, identity common_models.Identity, surface string) []mention.Notification {
	sizes, ok := surfaceFetchSizes[surface]
	if !ok {
		sizes = surfaceFetchSizes[SurfacePage]
	}

	rows, err := s.repo.ListForUser(ctx, identity.CompanyID, identity.UserID, sizes.persisted)
	if err != nil {
		s.logger.Error("Failed to fetch notifications",
			zap.String("company_id", identity.CompanyID),
			zap.String("user_id", identity.UserID),
			zap.Error(err))
		rows = nil
	}
	persisted := make([]mention.Notification, 0, len(rows))
	for _, n := range rows {
		persisted = append(persisted, n.View())
	}

	tasks, err := s.tasks.RecentTasks(ctx, identity.CompanyID, sizes.tasks)
	if err != nil {
		s.logger.Error("Failed to fetch tasks for mention feed",
			zap.String("company_id", identity.CompanyID),
			zap.Error(err))
		tasks = nil
	}

	profile := s.resolver.Resolve(ctx, identity)
	covered := s.coveredTasks(ctx, identity, persisted, tasks, profile.Name)
	feed := mention.BuildFeedCovered(persisted, covered, tasks, profile.Name, s.limitFor(surface))

	synthetic := 0
	for _, n := range feed {
		if n.Synthetic {
			synthetic++
		}
	}
	s.metrics.RecordMentionsSynthesized(synthetic)
	return feed
}

// coveredTasks looks up stored notifications for mentioning tasks whose row fell outside
// the fetched page. On failure only the fetched rows count as coverage.
func (s *NotificationServiceImpl) coveredTasks(ctx context.Context, identity common_models.Identity, persisted []mention.Notification, tasks []common_models.Task, name string) []string {
	if name == "" || len(tasks) == 0 {
		return nil
	}
	fetched := make(map[string]bool, len(persisted))
	for _, n := range persisted {
		fetched[n.RelatedID] = true
	}
	var candidates []string
	for _, t := range tasks {
		if !fetched[t.ID] && mention.Mentions(t, name) {
			candidates = append(candidates, t.ID)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	ids, err := s.repo.RelatedIDs(ctx, identity.CompanyID, identity.UserID, candidates)
	if err != nil {
		s.logger.Warn("Failed to look up notified tasks",
			zap.String("company_id", identity.CompanyID),
			zap.String("user_id", identity.UserID),
			zap.Error(err))
		return nil
	}
	return ids
}

func (s *NotificationServiceImpl) UnreadCount(ctx context.Context, identity common_models.Identity) int {
	return mention.UnreadCount(s.Feed(ctx, identity, SurfaceBell))
}

// MarkAsRead on a synthetic id is a no-op: its read state is derived from the task
// status every time the feed is built.
func (s *NotificationServiceImpl) MarkAsRead(ctx context.Context, identity common_models.Identity, id string) error {
	if mention.IsSyntheticID(id) {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	return notFound(s.repo.MarkAsRead(ctx, identity.CompanyID, identity.UserID, oid))
}

func (s *NotificationServiceImpl) MarkAllAsRead(ctx context.Context, identity common_models.Identity) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, identity.CompanyID, identity.UserID)
}

// Delete dismisses a synthetic entry without any write.
func (s *NotificationServiceImpl) Delete(ctx context.Context, identity common_models.Identity, id string) error {
	if mention.IsSyntheticID(id) {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	return notFound(s.repo.Delete(ctx, identity.CompanyID, identity.UserID, oid))
}

func (s *NotificationServiceImpl) Create(ctx context.Context, n *Notification) error {
	if n.Type == "" {
		n.Type = NotificationTypeInfo
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.Publish(n.CompanyID, n.UserID, Event{Type: "notification", Notification: n.View()})
	}
	return nil
}

func (s *NotificationServiceImpl) PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.repo.PurgeRead(ctx, time.Now().Add(-olderThan))
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
