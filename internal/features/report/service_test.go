package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	common_models "go-hse/internal/common/models"
	"go-hse/internal/features/layout"
	"go-hse/internal/features/task"
	"go-hse/internal/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memoryRepo struct {
	reports []CustomReport
}

func (m *memoryRepo) Create(ctx context.Context, report *CustomReport) error {
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	report.CreatedAt = time.Now()
	// newest first
	m.reports = append([]CustomReport{*report}, m.reports...)
	return nil
}

func (m *memoryRepo) find(companyID, userID, id string) int {
	for i, r := range m.reports {
		if r.ID.Hex() == id && r.CompanyID == companyID && r.UserID == userID {
			return i
		}
	}
	return -1
}

func (m *memoryRepo) Get(ctx context.Context, companyID, userID, id string) (*CustomReport, error) {
	i := m.find(companyID, userID, id)
	if i < 0 {
		return nil, ErrReportNotFound
	}
	r := m.reports[i]
	return &r, nil
}

func (m *memoryRepo) List(ctx context.Context, companyID, userID string) ([]CustomReport, error) {
	var out []CustomReport
	for _, r := range m.reports {
		if r.CompanyID == companyID && r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRepo) Update(ctx context.Context, companyID, userID, id string, input ReportInput) error {
	i := m.find(companyID, userID, id)
	if i < 0 {
		return ErrReportNotFound
	}
	m.reports[i].Name = input.Name
	m.reports[i].Columns = input.Columns
	m.reports[i].Filters = input.Filters
	return nil
}

func (m *memoryRepo) Delete(ctx context.Context, companyID, userID, id string) error {
	i := m.find(companyID, userID, id)
	if i < 0 {
		return ErrReportNotFound
	}
	m.reports = append(m.reports[:i], m.reports[i+1:]...)
	return nil
}

type stubTasks struct {
	task.TaskRepository
	tasks  []common_models.Task
	filter string
}

func (s *stubTasks) List(ctx context.Context, companyID, filter string, limit int64) ([]common_models.Task, error) {
	s.filter = filter
	return s.tasks, nil
}

type recordingListener struct {
	calls int
}

func (l *recordingListener) ReportsChanged(ctx context.Context, companyID, userID string) {
	l.calls++
}

var owner = common_models.Identity{UserID: "u1", CompanyID: "c1"}

func TestCreateNotifiesListener(t *testing.T) {
	repo := &memoryRepo{}
	listener := &recordingListener{}
	svc := NewReportService(repo, &stubTasks{}, nil, nil, listener, zap.NewNop())
	ctx := context.Background()

	r, err := svc.CreateReport(ctx, owner, ReportInput{Name: " Open tasks "})
	require.NoError(t, err)
	assert.Equal(t, "Open tasks", r.Name)
	assert.Equal(t, DataSourceTasks, r.DataSource)
	assert.Equal(t, 1, listener.calls)

	_, err = svc.UpdateReport(ctx, owner, r.ID.Hex(), ReportInput{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, 1, listener.calls)

	require.NoError(t, svc.DeleteReport(ctx, owner, r.ID.Hex()))
	assert.Equal(t, 2, listener.calls)
	assert.Empty(t, repo.reports)
}

func TestCreateValidation(t *testing.T) {
	svc := NewReportService(&memoryRepo{}, &stubTasks{}, nil, nil, nil, zap.NewNop())

	_, err := svc.CreateReport(context.Background(), owner, ReportInput{Name: ""})
	assert.ErrorIs(t, err, ErrNameMissing)
	_, err = svc.CreateReport(context.Background(), owner, ReportInput{Name: "x", DataSource: "invoices"})
	assert.ErrorIs(t, err, ErrUnsupportedDataSource)
}

func TestDuplicateReport(t *testing.T) {
	repo := &memoryRepo{}
	listener := &recordingListener{}
	svc := NewReportService(repo, &stubTasks{}, nil, nil, listener, zap.NewNop())
	ctx := context.Background()

	src, err := svc.CreateReport(ctx, owner, ReportInput{
		Name:    "Weekly",
		Columns: []string{"title"},
		Filters: map[string]any{"status": "completed"},
	})
	require.NoError(t, err)

	dup, err := svc.DuplicateReport(ctx, owner, src.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Weekly (Copy)", dup.Name)
	assert.NotEqual(t, src.ID, dup.ID)
	assert.Equal(t, src.Columns, dup.Columns)
	assert.Equal(t, 2, listener.calls)

	dup.Filters["status"] = "all"
	assert.Equal(t, "completed", src.Filters["status"])

	list, err := svc.ListReports(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, dup.ID, list[0].ID)
}

func TestReportsAreOwnerScoped(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewReportService(repo, &stubTasks{}, nil, nil, nil, zap.NewNop())
	ctx := context.Background()

	r, err := svc.CreateReport(ctx, owner, ReportInput{Name: "Mine"})
	require.NoError(t, err)

	other := common_models.Identity{UserID: "u2", CompanyID: "c1"}
	_, err = svc.GetReport(ctx, other, r.ID.Hex())
	assert.ErrorIs(t, err, ErrReportNotFound)
	assert.ErrorIs(t, svc.DeleteReport(ctx, other, r.ID.Hex()), ErrReportNotFound)
}

func TestExportReport(t *testing.T) {
	due := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	tasks := &stubTasks{tasks: []common_models.Task{
		{ID: "t1", Title: "Inspect rails", Status: "pending", DueDate: &due},
		{ID: "t2", Title: "Fire drill", Status: "completed"},
	}}
	svc := NewReportService(&memoryRepo{}, tasks, nil, nil, nil, zap.NewNop())
	ctx := context.Background()

	r, err := svc.CreateReport(ctx, owner, ReportInput{
		Name:    "Q2 Safety / Tasks",
		Columns: []string{"title", "status", "due_date"},
		Filters: map[string]any{"status": task.FilterUpcoming},
	})
	require.NoError(t, err)

	data, filename, err := svc.ExportReport(ctx, owner, r.ID.Hex())
	require.NoError(t, err)
	assert.Regexp(t, `^q2-safety-tasks_\d{8}_\d{6}\.xlsx$`, filename)
	assert.Equal(t, task.FilterUpcoming, tasks.filter)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"title", "status", "due_date"}, rows[0])
	assert.Equal(t, []string{"Inspect rails", "pending", "2024-06-01 08:00:00"}, rows[1])
	assert.Equal(t, []string{"Fire drill", "completed"}, rows[2])
}

func TestWidgetSourceFeedsLayout(t *testing.T) {
	repo := &memoryRepo{}
	layouts := layout.NewLayoutService(kvstore.NewMemoryStore(), NewWidgetSource(repo), nil, nil, zap.NewNop())
	svc := NewReportService(repo, &stubTasks{}, nil, nil, layouts, zap.NewNop())
	ctx := context.Background()

	engine := layouts.Session(ctx, layout.SessionRef{CompanyID: "c1", UserID: "u1"})
	before := len(engine.Widgets())

	r, err := svc.CreateReport(ctx, owner, ReportInput{Name: "Incidents by site"})
	require.NoError(t, err)

	widgets := engine.Widgets()
	require.Len(t, widgets, before+1)
	last := widgets[len(widgets)-1]
	assert.Equal(t, "report-"+r.ID.Hex(), last.ID)
	assert.Equal(t, "Incidents by site", last.Label)

	require.NoError(t, svc.DeleteReport(ctx, owner, r.ID.Hex()))
	assert.Len(t, engine.Widgets(), before)
}
