package cron_feature

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-hse/internal/config"
	"go-hse/internal/features/layout"
	"go-hse/internal/features/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryLogs struct {
	logs []*CronJobLog
}

func (m *memoryLogs) CreateLog(ctx context.Context, log *CronJobLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func (m *memoryLogs) UpdateLog(ctx context.Context, log *CronJobLog) error { return nil }

func (m *memoryLogs) GetLogs(ctx context.Context, jobName string, limit int) ([]CronJobLog, error) {
	var out []CronJobLog
	for i := len(m.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if jobName == "" || m.logs[i].JobName == jobName {
			out = append(out, *m.logs[i])
		}
	}
	return out, nil
}

type stubLayouts struct {
	layout.LayoutService
	evicted  int
	lastIdle time.Duration
}

func (s *stubLayouts) EvictIdle(maxIdle time.Duration) int {
	s.lastIdle = maxIdle
	return s.evicted
}

type stubNotifications struct {
	notification.NotificationService
	olderThan time.Duration
	err       error
}

func (s *stubNotifications) PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.olderThan = olderThan
	if s.err != nil {
		return 0, s.err
	}
	return 7, nil
}

func newTestService(schedule string) (*CronServiceImpl, *memoryLogs, *stubLayouts, *stubNotifications) {
	repo := &memoryLogs{}
	layouts := &stubLayouts{evicted: 3}
	notifications := &stubNotifications{}
	cfg := &config.Config{
		LayoutSessionTTL:          30 * time.Minute,
		LayoutEvictSchedule:       schedule,
		NotificationRetentionDays: 90,
		NotificationPurgeSchedule: "",
	}
	svc := NewCronService(repo, layouts, notifications, cfg, zap.NewNop()).(*CronServiceImpl)
	return svc, repo, layouts, notifications
}

func TestExecuteLayoutEvict(t *testing.T) {
	svc, repo, layouts, _ := newTestService("@every 10m")

	entry, err := svc.ExecuteCronJob(context.Background(), JobLayoutEvict)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, entry.Status)
	assert.Equal(t, int64(3), entry.RecordsAffected)
	assert.True(t, entry.Manual)
	assert.NotNil(t, entry.EndTime)
	assert.Equal(t, 30*time.Minute, layouts.lastIdle)
	assert.Len(t, repo.logs, 1)
}

func TestExecuteNotificationPurgeUsesRetention(t *testing.T) {
	svc, _, _, notifications := newTestService("")

	entry, err := svc.ExecuteCronJob(context.Background(), JobNotificationPurge)
	require.NoError(t, err)
	assert.Equal(t, int64(7), entry.RecordsAffected)
	assert.Equal(t, 90*24*time.Hour, notifications.olderThan)
}

func TestExecuteRecordsFailure(t *testing.T) {
	svc, _, _, notifications := newTestService("")
	notifications.err = errors.New("mongo down")

	entry, err := svc.ExecuteCronJob(context.Background(), JobNotificationPurge)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, entry.Status)
	assert.Equal(t, "mongo down", entry.Error)
}

func TestExecuteUnknownJob(t *testing.T) {
	svc, _, _, _ := newTestService("")
	_, err := svc.ExecuteCronJob(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = svc.GetCronJobLogs(context.Background(), "nope", 0)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestListCronJobsAfterScheduling(t *testing.T) {
	svc, _, _, _ := newTestService("@every 10m")
	require.NoError(t, svc.InitializeScheduler(context.Background()))
	defer svc.StopScheduler()

	jobs := svc.ListCronJobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, JobLayoutEvict, jobs[0].Name)
	assert.NotNil(t, jobs[0].NextRun)
	// no schedule, never registered
	assert.Equal(t, JobNotificationPurge, jobs[1].Name)
	assert.Nil(t, jobs[1].NextRun)
}

func TestInitializeSchedulerRejectsBadSchedule(t *testing.T) {
	svc, _, _, _ := newTestService("every now and then")
	err := svc.InitializeScheduler(context.Background())
	assert.Error(t, err)
}

func TestGetCronJobLogsNewestFirst(t *testing.T) {
	svc, _, _, _ := newTestService("")
	ctx := context.Background()
	_, _ = svc.ExecuteCronJob(ctx, JobLayoutEvict)
	_, _ = svc.ExecuteCronJob(ctx, JobNotificationPurge)
	_, _ = svc.ExecuteCronJob(ctx, JobLayoutEvict)

	logs, err := svc.GetCronJobLogs(ctx, JobLayoutEvict, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	all, err := svc.GetCronJobLogs(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, JobLayoutEvict, all[0].JobName)
}
