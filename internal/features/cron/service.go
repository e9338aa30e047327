package cron_feature

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go-hse/internal/config"
	"go-hse/internal/features/layout"
	"go-hse/internal/features/notification"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ErrJobNotFound = errors.New("cron job not found")

const defaultLogLimit = 50

type CronService interface {
	ListCronJobs() []CronJob
	ExecuteCronJob(ctx context.Context, name string) (*CronJobLog, error)
	GetCronJobLogs(ctx context.Context, name string, limit int) ([]CronJobLog, error)
	InitializeScheduler(ctx context.Context) error
	StopScheduler() error
}

// job is a built-in housekeeping task. run reports how many records it touched.
type job struct {
	name        string
	description string
	schedule    string
	run         func(ctx context.Context) (int64, error)

	lastRun *time.Time
	entryID cron.EntryID
}

type CronServiceImpl struct {
	repo   CronRepository
	logger *zap.Logger

	scheduler *cron.Cron
	jobs      map[string]*job
	mu        sync.RWMutex
}

func NewCronService(
	repo CronRepository,
	layoutService layout.LayoutService,
	notificationService notification.NotificationService,
	cfg *config.Config,
	logger *zap.Logger,
) CronService {
	s := &CronServiceImpl{
		repo:   repo,
		logger: logger,
		jobs:   make(map[string]*job),
	}

	s.addJob(&job{
		name:        JobLayoutEvict,
		description: "Drops in-memory dashboard layout sessions idle for longer than the session TTL",
		schedule:    cfg.LayoutEvictSchedule,
		run: func(ctx context.Context) (int64, error) {
			return int64(layoutService.EvictIdle(cfg.LayoutSessionTTL)), nil
		},
	})
	retention := time.Duration(cfg.NotificationRetentionDays) * 24 * time.Hour
	s.addJob(&job{
		name:        JobNotificationPurge,
		description: fmt.Sprintf("Deletes read notifications older than %d days", cfg.NotificationRetentionDays),
		schedule:    cfg.NotificationPurgeSchedule,
		run: func(ctx context.Context) (int64, error) {
			return notificationService.PurgeRead(ctx, retention)
		},
	})
	return s
}

func (s *CronServiceImpl) addJob(j *job) {
	s.jobs[j.name] = j
}

func (s *CronServiceImpl) ListCronJobs() []CronJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]CronJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		cj := CronJob{
			Name:        j.name,
			Description: j.description,
			Schedule:    j.schedule,
			LastRun:     j.lastRun,
		}
		if s.scheduler != nil && j.entryID != 0 {
			if next := s.scheduler.Entry(j.entryID).Next; !next.IsZero() {
				cj.NextRun = &next
			}
		}
		jobs = append(jobs, cj)
	}
	sort.Slice(jobs, func(a, b int) bool { return jobs[a].Name < jobs[b].Name })
	return jobs
}

func (s *CronServiceImpl) ExecuteCronJob(ctx context.Context, name string) (*CronJobLog, error) {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrJobNotFound
	}
	return s.execute(ctx, j, true), nil
}

// execute runs j and records the run. Failures end up in the log entry.
func (s *CronServiceImpl) execute(ctx context.Context, j *job, manual bool) *CronJobLog {
	startTime := time.Now()
	logEntry := &CronJobLog{
		JobName:   j.name,
		StartTime: startTime,
		Status:    StatusRunning,
		Manual:    manual,
	}
	if err := s.repo.CreateLog(ctx, logEntry); err != nil {
		s.logger.Warn("Failed to create cron job log", zap.String("job", j.name), zap.Error(err))
	}

	affected, execErr := j.run(ctx)

	endTime := time.Now()
	logEntry.EndTime = &endTime
	logEntry.RecordsAffected = affected
	if execErr != nil {
		logEntry.Status = StatusFailed
		logEntry.Error = execErr.Error()
		s.logger.Error("Cron job failed", zap.String("job", j.name), zap.Error(execErr))
	} else {
		logEntry.Status = StatusSuccess
		s.logger.Info("Cron job finished",
			zap.String("job", j.name),
			zap.Int64("records_affected", affected),
			zap.Duration("took", endTime.Sub(startTime)))
	}

	if err := s.repo.UpdateLog(ctx, logEntry); err != nil {
		s.logger.Warn("Failed to update cron job log", zap.String("job", j.name), zap.Error(err))
	}

	s.mu.Lock()
	j.lastRun = &startTime
	s.mu.Unlock()
	return logEntry
}

func (s *CronServiceImpl) GetCronJobLogs(ctx context.Context, name string, limit int) ([]CronJobLog, error) {
	if name != "" {
		s.mu.RLock()
		_, ok := s.jobs[name]
		s.mu.RUnlock()
		if !ok {
			return nil, ErrJobNotFound
		}
	}
	if limit <= 0 {
		limit = defaultLogLimit
	}
	return s.repo.GetLogs(ctx, name, limit)
}

// InitializeScheduler registers every job with a schedule and starts the scheduler. An
// empty schedule disables a job; it can still be run by hand.
func (s *CronServiceImpl) InitializeScheduler(ctx context.Context) error {
	s.logger.Info("Initializing cron scheduler")

	s.mu.Lock()
	defer s.mu.Unlock()

	s.scheduler = cron.New()
	for _, j := range s.jobs {
		if j.schedule == "" {
			continue
		}
		j := j
		entryID, err := s.scheduler.AddFunc(j.schedule, func() {
			s.execute(context.Background(), j, false)
		})
		if err != nil {
			return fmt.Errorf("invalid schedule %q for %s: %w", j.schedule, j.name, err)
		}
		j.entryID = entryID
	}

	s.scheduler.Start()
	return nil
}

func (s *CronServiceImpl) StopScheduler() error {
	s.mu.RLock()
	scheduler := s.scheduler
	s.mu.RUnlock()

	if scheduler != nil {
		ctx := scheduler.Stop()
		<-ctx.Done()
	}
	return nil
}
