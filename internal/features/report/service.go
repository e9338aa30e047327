package report

import (
	"context"
	"errors"
	"strings"
	"time"

	common_models "go-hse/internal/common/models"
	"go-hse/internal/features/audit"
	"go-hse/internal/features/task"
	"go-hse/pkg/utils"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	exportRowLimit = 10000
	copySuffix     = " (Copy)"
)

var (
	ErrReportNotFound        = errors.New("report not found")
	ErrNameMissing           = errors.New("name is required")
	ErrUnsupportedDataSource = errors.New("unsupported data source")
)

var defaultTaskColumns = []string{"title", "status", "priority", "assigned_to", "due_date", "created_at"}

// WidgetListener is told when the set of a user's reports changes.
type WidgetListener interface {
	ReportsChanged(ctx context.Context, companyID, userID string)
}

type ReportService interface {
	CreateReport(ctx context.Context, identity common_models.Identity, input ReportInput) (*CustomReport, error)
	GetReport(ctx context.Context, identity common_models.Identity, id string) (*CustomReport, error)
	ListReports(ctx context.Context, identity common_models.Identity) ([]CustomReport, error)
	UpdateReport(ctx context.Context, identity common_models.Identity, id string, input ReportInput) (*CustomReport, error)
	DeleteReport(ctx context.Context, identity common_models.Identity, id string) error
	DuplicateReport(ctx context.Context, identity common_models.Identity, id string) (*CustomReport, error)
	ExportReport(ctx context.Context, identity common_models.Identity, id string) ([]byte, string, error)
	ReportData(ctx context.Context, identity common_models.Identity, id string) ([]DataPoint, error)
}

type ReportServiceImpl struct {
	ReportRepo   ReportRepository
	Tasks        task.TaskRepository
	Records      RecordSource
	AuditService audit.AuditService
	Listener     WidgetListener
	logger       *zap.Logger
}

func NewReportService(reportRepo ReportRepository, tasks task.TaskRepository, records RecordSource, auditService audit.AuditService, listener WidgetListener, logger *zap.Logger) ReportService {
	return &ReportServiceImpl{
		ReportRepo:   reportRepo,
		Tasks:        tasks,
		Records:      records,
		AuditService: auditService,
		Listener:     listener,
		logger:       logger,
	}
}

func validate(input *ReportInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return ErrNameMissing
	}
	if input.DataSource == "" {
		input.DataSource = DataSourceTasks
	}
	if !knownSource(input.DataSource) {
		return ErrUnsupportedDataSource
	}
	return nil
}

func (s *ReportServiceImpl) widgetsChanged(ctx context.Context, identity common_models.Identity) {
	if s.Listener != nil {
		s.Listener.ReportsChanged(ctx, identity.CompanyID, identity.UserID)
	}
}

func (s *ReportServiceImpl) audit(ctx context.Context, id string, old, new interface{}) {
	if s.AuditService == nil {
		return
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionReport, "custom_reports", id, map[string]common_models.Change{
		"report": {Old: old, New: new},
	})
}

func (s *ReportServiceImpl) CreateReport(ctx context.Context, identity common_models.Identity, input ReportInput) (*CustomReport, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}
	report := &CustomReport{
		CompanyID:   identity.CompanyID,
		UserID:      identity.UserID,
		Name:        input.Name,
		Description: input.Description,
		DataSource:  input.DataSource,
		ChartType:   input.ChartType,
		Columns:     input.Columns,
		Filters:     input.Filters,
		GroupBy:     input.GroupBy,
		DateRange:   input.DateRange,
	}
	if err := s.ReportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	s.audit(ctx, report.ID.Hex(), nil, report)
	s.widgetsChanged(ctx, identity)
	return report, nil
}

func (s *ReportServiceImpl) GetReport(ctx context.Context, identity common_models.Identity, id string) (*CustomReport, error) {
	return s.ReportRepo.Get(ctx, identity.CompanyID, identity.UserID, id)
}

func (s *ReportServiceImpl) ListReports(ctx context.Context, identity common_models.Identity) ([]CustomReport, error) {
	return s.ReportRepo.List(ctx, identity.CompanyID, identity.UserID)
}

// UpdateReport edits a report in place; the widget set is unchanged.
func (s *ReportServiceImpl) UpdateReport(ctx context.Context, identity common_models.Identity, id string, input ReportInput) (*CustomReport, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}
	old, err := s.GetReport(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if err := s.ReportRepo.Update(ctx, identity.CompanyID, identity.UserID, id, input); err != nil {
		return nil, err
	}

	updated := *old
	updated.Name = input.Name
	updated.Description = input.Description
	updated.DataSource = input.DataSource
	updated.ChartType = input.ChartType
	updated.Columns = input.Columns
	updated.Filters = input.Filters
	updated.GroupBy = input.GroupBy
	updated.DateRange = input.DateRange
	updated.UpdatedAt = time.Now()

	s.audit(ctx, id, old, &updated)
	return &updated, nil
}

func (s *ReportServiceImpl) DeleteReport(ctx context.Context, identity common_models.Identity, id string) error {
	old, err := s.GetReport(ctx, identity, id)
	if err != nil {
		return err
	}
	if err := s.ReportRepo.Delete(ctx, identity.CompanyID, identity.UserID, id); err != nil {
		return err
	}
	s.audit(ctx, id, old, "DELETED")
	s.widgetsChanged(ctx, identity)
	return nil
}

// DuplicateReport copies a report under the name "<name> (Copy)".
func (s *ReportServiceImpl) DuplicateReport(ctx context.Context, identity common_models.Identity, id string) (*CustomReport, error) {
	src, err := s.GetReport(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	copied := &CustomReport{
		CompanyID:   identity.CompanyID,
		UserID:      identity.UserID,
		Name:        src.Name + copySuffix,
		Description: src.Description,
		DataSource:  src.DataSource,
		ChartType:   src.ChartType,
		Columns:     append([]string(nil), src.Columns...),
		Filters:     make(map[string]any, len(src.Filters)),
		GroupBy:     src.GroupBy,
		DateRange:   src.DateRange,
	}
	for k, v := range src.Filters {
		copied.Filters[k] = v
	}
	if err := s.ReportRepo.Create(ctx, copied); err != nil {
		return nil, err
	}
	s.audit(ctx, copied.ID.Hex(), nil, copied)
	s.widgetsChanged(ctx, identity)
	return copied, nil
}

// ExportReport renders the report rows as an xlsx workbook.
func (s *ReportServiceImpl) ExportReport(ctx context.Context, identity common_models.Identity, id string) ([]byte, string, error) {
	report, err := s.GetReport(ctx, identity, id)
	if err != nil {
		return nil, "", err
	}
	if report.DataSource != DataSourceTasks {
		return s.exportRecords(ctx, identity, report)
	}

	filter := task.FilterAll
	if v, ok := report.Filters["status"].(string); ok && v != "" {
		filter = v
	}
	tasks, err := s.Tasks.List(ctx, identity.CompanyID, filter, exportRowLimit)
	if err != nil {
		return nil, "", err
	}

	columns := report.Columns
	if len(columns) == 0 {
		columns = defaultTaskColumns
	}
	rows := make([]map[string]any, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, taskRow(t))
	}

	filename := utils.ExportFilename(report.Name, "report", "xlsx", time.Now())
	data, err := exportToExcel(rows, columns)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("Report exported", zap.String("report_id", id), zap.Int("rows", len(rows)))
	return data, filename, nil
}

// exportRecords writes the raw rows of an HSE collection.
func (s *ReportServiceImpl) exportRecords(ctx context.Context, identity common_models.Identity, report *CustomReport) ([]byte, string, error) {
	collection, ok := collections[report.DataSource]
	if !ok || s.Records == nil {
		return nil, "", ErrUnsupportedDataSource
	}
	rows, err := s.Records.Find(ctx, RecordQuery{Collection: collection, CompanyID: identity.CompanyID, Limit: exportRowLimit})
	if err != nil {
		return nil, "", err
	}
	columns := report.Columns
	if len(columns) == 0 {
		columns = defaultColumns[report.DataSource]
	}

	data, err := exportToExcel(rows, columns)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("Report exported",
		zap.String("report_id", report.ID.Hex()),
		zap.String("data_source", report.DataSource),
		zap.Int("rows", len(rows)))
	return data, utils.ExportFilename(report.Name, "report", "xlsx", time.Now()), nil
}

// ReportData returns the chart series of one of the caller's reports.
func (s *ReportServiceImpl) ReportData(ctx context.Context, identity common_models.Identity, id string) ([]DataPoint, error) {
	report, err := s.GetReport(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	return s.chartData(ctx, identity.CompanyID, report, time.Now())
}

func taskRow(t common_models.Task) map[string]any {
	row := map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"status":      t.Status,
		"priority":    t.Priority,
		"assigned_to": t.AssignedTo,
		"created_by":  t.CreatedBy,
		"created_at":  t.CreatedAt,
		"updated_at":  t.UpdatedAt,
	}
	if t.DueDate != nil {
		row["due_date"] = *t.DueDate
	}
	return row
}

func exportToExcel(data []map[string]any, columns []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Report"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, record := range data {
		for colIdx, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			switch v := record[col].(type) {
			case nil:
			case time.Time:
				f.SetCellValue(sheetName, cell, v.Format("2006-01-02 15:04:05"))
			default:
				f.SetCellValue(sheetName, cell, v)
			}
		}
	}

	for i := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
