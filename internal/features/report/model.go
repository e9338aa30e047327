package report

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Data sources a custom report can read from.
const (
	DataSourceTasks     = "tasks"
	DataSourceEmployees = "employees"
	DataSourceRisks     = "risks"
	DataSourceMeasures  = "measures"
	DataSourceIncidents = "incidents"
	DataSourceAudits    = "audits"
	DataSourceTrainings = "trainings"
	DataSourceCheckups  = "checkups"
)

// Date ranges for time-bounded groupings; anything else reaches back ten years.
const (
	RangeLast7Days  = "last_7_days"
	RangeLast30Days = "last_30_days"
	RangeLast90Days = "last_90_days"
	RangeLastYear   = "last_year"
	RangeAllTime    = "all_time"
)

// CustomReport is a user-defined report. Each one is shown as a widget on the
// overview dashboard of its owner.
type CustomReport struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CompanyID   string             `json:"company_id" bson:"company_id"`
	UserID      string             `json:"user_id" bson:"user_id"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	DataSource  string             `json:"data_source" bson:"data_source"`
	ChartType   string             `json:"chart_type,omitempty" bson:"chart_type,omitempty"` // bar, line, pie, table
	Columns     []string           `json:"columns" bson:"columns"`                           // field names to export
	Filters     map[string]any     `json:"filters" bson:"filters"`
	GroupBy     string             `json:"group_by,omitempty" bson:"group_by,omitempty"`
	DateRange   string             `json:"date_range,omitempty" bson:"date_range,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// ReportInput is the editable part of a report.
type ReportInput struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	DataSource  string         `json:"data_source"`
	ChartType   string         `json:"chart_type"`
	Columns     []string       `json:"columns"`
	Filters     map[string]any `json:"filters"`
	GroupBy     string         `json:"group_by"`
	DateRange   string         `json:"date_range"`
}

// DataPoint is one bar or slice of a report chart.
type DataPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}
