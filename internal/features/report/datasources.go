package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	common_models "go-hse/internal/common/models"
	"go-hse/internal/features/task"
)

const (
	unknownKey    = "Unknown"
	unassignedKey = "Unassigned"
)

// collections maps each data source to the collection its rows live in.
var collections = map[string]string{
	DataSourceEmployees: "employees",
	DataSourceRisks:     "risk_assessments",
	DataSourceMeasures:  "measures",
	DataSourceIncidents: "incidents",
	DataSourceAudits:    "audits",
	DataSourceTrainings: "training_records",
	DataSourceCheckups:  "health_checkups",
}

var defaultColumns = map[string][]string{
	DataSourceEmployees: {"full_name", "email", "department_id", "created_at"},
	DataSourceRisks:     {"title", "risk_level", "approval_status", "department_id", "created_at"},
	DataSourceMeasures:  {"title", "status", "responsible_person_id", "due_date", "created_at"},
	DataSourceIncidents: {"title", "incident_type", "location", "investigation_status", "created_at"},
	DataSourceAudits:    {"title", "iso_code", "audit_type", "status", "created_at"},
	DataSourceTrainings: {"employee_id", "course_name", "status", "created_at"},
	DataSourceCheckups:  {"employee_id", "checkup_type", "status", "created_at"},
}

func knownSource(source string) bool {
	if source == DataSourceTasks {
		return true
	}
	_, ok := collections[source]
	return ok
}

// dateBounds resolves a named range to [from, to] ending at now.
func dateBounds(rangeType string, now time.Time) (time.Time, time.Time) {
	switch rangeType {
	case RangeLast7Days:
		return now.AddDate(0, 0, -7), now
	case RangeLast30Days:
		return now.AddDate(0, 0, -30), now
	case RangeLast90Days:
		return now.AddDate(0, 0, -90), now
	case RangeLastYear:
		return now.AddDate(-1, 0, 0), now
	default:
		return now.AddDate(-10, 0, 0), now
	}
}

// tally counts keys and remembers the order they were first seen in.
type tally struct {
	keys   []string
	counts map[string]float64
}

func newTally() *tally {
	return &tally{counts: map[string]float64{}}
}

func (t *tally) add(key string, n float64) {
	if _, ok := t.counts[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.counts[key] += n
}

func (t *tally) points() []DataPoint {
	out := make([]DataPoint, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, DataPoint{Name: k, Value: t.counts[k]})
	}
	return out
}

func (t *tally) sortedPoints() []DataPoint {
	out := t.points()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func keyOf(v any, fallback string) string {
	switch t := v.(type) {
	case nil:
		return fallback
	case string:
		if t == "" {
			return fallback
		}
		return t
	default:
		return fmt.Sprint(t)
	}
}

func timeOf(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		return parsed, err == nil
	}
	return time.Time{}, false
}

func monthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// aggregator reads one company's rows for a report chart.
type aggregator struct {
	source    RecordSource
	companyID string
	from, to  time.Time
}

func (a *aggregator) find(ctx context.Context, collection string, bounded bool, fields ...string) ([]Record, error) {
	q := RecordQuery{Collection: collection, CompanyID: a.companyID, Fields: fields}
	if bounded {
		q.From, q.To = &a.from, &a.to
	}
	return a.source.Find(ctx, q)
}

func (a *aggregator) countBy(ctx context.Context, collection, field string, bounded bool) ([]DataPoint, error) {
	rows, err := a.find(ctx, collection, bounded, field)
	if err != nil {
		return nil, err
	}
	t := newTally()
	for _, r := range rows {
		t.add(keyOf(r[field], unknownKey), 1)
	}
	return t.points(), nil
}

// monthly buckets rows created inside the range by YYYY-MM.
func (a *aggregator) monthly(ctx context.Context, collection string) ([]DataPoint, error) {
	rows, err := a.find(ctx, collection, true, "created_at")
	if err != nil {
		return nil, err
	}
	t := newTally()
	for _, r := range rows {
		if ts, ok := timeOf(r["created_at"]); ok {
			t.add(monthKey(ts), 1)
		}
	}
	return t.sortedPoints(), nil
}

func (a *aggregator) departmentNames(ctx context.Context) (map[string]string, error) {
	rows, err := a.find(ctx, "departments", false, "_id", "name")
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(rows))
	for _, r := range rows {
		names[keyOf(r["_id"], "")] = keyOf(r["name"], "")
	}
	return names, nil
}

func (a *aggregator) employees(ctx context.Context) (map[string]Record, error) {
	rows, err := a.find(ctx, "employees", false, "_id", "full_name", "department_id")
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Record, len(rows))
	for _, r := range rows {
		byID[keyOf(r["_id"], "")] = r
	}
	return byID, nil
}

// byDepartment counts rows by the name of the department they point at.
func (a *aggregator) byDepartment(ctx context.Context, collection string) ([]DataPoint, error) {
	names, err := a.departmentNames(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := a.find(ctx, collection, false, "department_id")
	if err != nil {
		return nil, err
	}
	t := newTally()
	for _, r := range rows {
		t.add(keyOf(names[keyOf(r["department_id"], "")], unassignedKey), 1)
	}
	return t.points(), nil
}

// measuresByDepartment counts both measure collections by the department of
// the responsible employee.
func (a *aggregator) measuresByDepartment(ctx context.Context) ([]DataPoint, error) {
	names, err := a.departmentNames(ctx)
	if err != nil {
		return nil, err
	}
	emps, err := a.employees(ctx)
	if err != nil {
		return nil, err
	}
	t := newTally()
	for _, src := range [][2]string{
		{"measures", "responsible_person_id"},
		{"risk_assessment_measures", "responsible_person"},
	} {
		field := src[1]
		rows, err := a.find(ctx, src[0], false, field)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			dept := ""
			if emp, ok := emps[keyOf(r[field], "")]; ok {
				dept = names[keyOf(emp["department_id"], "")]
			}
			t.add(keyOf(dept, unassignedKey), 1)
		}
	}
	return t.points(), nil
}

// measureStatuses merges measure statuses with risk assessment progress,
// mapping not_started to planned and blocked to cancelled.
func (a *aggregator) measureStatuses(ctx context.Context) ([]DataPoint, error) {
	t := newTally()
	rows, err := a.find(ctx, "measures", true, "status")
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		t.add(keyOf(r["status"], unknownKey), 1)
	}
	rows, err = a.find(ctx, "risk_assessment_measures", true, "progress_status")
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		key := keyOf(r["progress_status"], unknownKey)
		switch key {
		case "not_started":
			key = "planned"
		case "blocked":
			key = "cancelled"
		}
		t.add(key, 1)
	}
	return t.points(), nil
}

// trainingCompletion gives each employee's share of completed trainings in percent.
func (a *aggregator) trainingCompletion(ctx context.Context) ([]DataPoint, error) {
	emps, err := a.employees(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := a.find(ctx, "training_records", false, "employee_id", "status")
	if err != nil {
		return nil, err
	}
	total, completed := newTally(), newTally()
	for _, r := range rows {
		name := unassignedKey
		if emp, ok := emps[keyOf(r["employee_id"], "")]; ok {
			name = keyOf(emp["full_name"], unassignedKey)
		}
		total.add(name, 1)
		if r["status"] == "completed" {
			completed.add(name, 1)
		} else {
			completed.add(name, 0)
		}
	}
	out := make([]DataPoint, 0, len(total.keys))
	for _, name := range total.keys {
		out = append(out, DataPoint{Name: name, Value: math.Round(completed.counts[name] / total.counts[name] * 100)})
	}
	return out, nil
}

func (a *aggregator) aggregate(ctx context.Context, source, groupBy string) ([]DataPoint, error) {
	switch source {
	case DataSourceEmployees:
		switch groupBy {
		case "department":
			return a.byDepartment(ctx, "employees")
		case "location":
			return []DataPoint{{Name: "No Location Data", Value: 0}}, nil
		case "created_at":
			return a.monthly(ctx, "employees")
		}
	case DataSourceRisks:
		if groupBy == "department" {
			return a.byDepartment(ctx, "risk_assessments")
		}
		if groupBy == "" {
			groupBy = "risk_level"
		}
		return a.countBy(ctx, "risk_assessments", groupBy, false)
	case DataSourceMeasures:
		if groupBy == "department" {
			return a.measuresByDepartment(ctx)
		}
		return a.measureStatuses(ctx)
	case DataSourceIncidents:
		switch groupBy {
		case "category", "incident_type":
			groupBy = "incident_type"
		case "status", "investigation_status", "":
			groupBy = "investigation_status"
		case "created_at":
			return a.monthly(ctx, "incidents")
		}
		return a.countBy(ctx, "incidents", groupBy, false)
	case DataSourceAudits:
		switch groupBy {
		case "created_at":
			return a.monthly(ctx, "audits")
		case "category":
			groupBy = "audit_type"
		case "":
			groupBy = "status"
		}
		return a.countBy(ctx, "audits", groupBy, true)
	case DataSourceTrainings:
		switch groupBy {
		case "employee_id":
			return a.trainingCompletion(ctx)
		case "status":
			return a.countBy(ctx, "training_records", "status", false)
		case "created_at":
			return a.monthly(ctx, "training_records")
		}
	case DataSourceCheckups:
		switch groupBy {
		case "status":
			return a.countBy(ctx, "health_checkups", "status", false)
		case "created_at":
			return a.monthly(ctx, "health_checkups")
		}
	}
	return []DataPoint{}, nil
}

// taskPoints counts tasks by status, priority, assignee or creation month.
func taskPoints(tasks []common_models.Task, groupBy string) []DataPoint {
	t := newTally()
	for _, tk := range tasks {
		switch groupBy {
		case "priority":
			t.add(keyOf(tk.Priority, unknownKey), 1)
		case "assigned_to":
			t.add(keyOf(tk.AssignedTo, unassignedKey), 1)
		case "created_at":
			t.add(monthKey(tk.CreatedAt), 1)
		default:
			t.add(keyOf(tk.Status, unknownKey), 1)
		}
	}
	if groupBy == "created_at" {
		return t.sortedPoints()
	}
	return t.points()
}

func (s *ReportServiceImpl) chartData(ctx context.Context, companyID string, report *CustomReport, now time.Time) ([]DataPoint, error) {
	if report.DataSource == DataSourceTasks {
		tasks, err := s.Tasks.List(ctx, companyID, task.FilterAll, exportRowLimit)
		if err != nil {
			return nil, err
		}
		return taskPoints(tasks, report.GroupBy), nil
	}
	if s.Records == nil {
		return nil, ErrUnsupportedDataSource
	}
	from, to := dateBounds(report.DateRange, now)
	a := &aggregator{source: s.Records, companyID: companyID, from: from, to: to}
	return a.aggregate(ctx, report.DataSource, report.GroupBy)
}
