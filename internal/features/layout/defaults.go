package layout

import "strings"

const customReportPrefix = "report-"

// Custom report widgets are packed below the standard widgets with these sizes.
const (
	customHeight    = 3
	customMinWidth  = 3
	customMinHeight = 2
)

var standardWidgets = []WidgetSpec{
	{ID: "risk-assessments", Kind: KindStandardKPI, Label: "Risk Assessments", MinWidth: 2, MinHeight: 2},
	{ID: "safety-audits", Kind: KindStandardKPI, Label: "Safety Audits", MinWidth: 2, MinHeight: 2},
	{ID: "incidents", Kind: KindStandardKPI, Label: "Incidents", MinWidth: 2, MinHeight: 2},
	{ID: "training-compliance", Kind: KindStandardKPI, Label: "Training Compliance", MinWidth: 2, MinHeight: 2},
	{ID: "incident-trends", Kind: KindChartCard, Label: "Incident Trends", MinWidth: 4, MinHeight: 3},
	{ID: "audit-completion", Kind: KindChartCard, Label: "Audit Completion", MinWidth: 3, MinHeight: 2},
	{ID: "task-completion", Kind: KindChartCard, Label: "Task Completion", MinWidth: 3, MinHeight: 2},
}

// Hand-tuned positions of the standard widgets, in catalog order.
var standardPositions = map[Breakpoint][]LayoutEntry{
	BreakpointWide: {
		{WidgetID: "risk-assessments", X: 0, Y: 0, Width: 3, Height: 2, MinWidth: 2, MinHeight: 2},
		{WidgetID: "safety-audits", X: 3, Y: 0, Width: 3, Height: 2, MinWidth: 2, MinHeight: 2},
		{WidgetID: "incidents", X: 6, Y: 0, Width: 3, Height: 2, MinWidth: 2, MinHeight: 2},
		{WidgetID: "training-compliance", X: 9, Y: 0, Width: 3, Height: 2, MinWidth: 2, MinHeight: 2},
		{WidgetID: "incident-trends", X: 0, Y: 2, Width: 12, Height: 4, MinWidth: 6, MinHeight: 3},
		{WidgetID: "audit-completion", X: 0, Y: 6, Width: 6, Height: 3, MinWidth: 4, MinHeight: 2},
		{WidgetID: "task-completion", X: 6, Y: 6, Width: 6, Height: 3, MinWidth: 4, MinHeight: 2},
	},
	BreakpointMedium: {
		{WidgetID: "risk-assessments", X: 0, Y: 0, Width: 5, Height: 2, MinWidth: 2, MinHeight: 2},
		{WidgetID: "safety-audits", X: 5, Y: 0, Width: 5, Height: 2, MinWidth: 2, MinHeight: 2},
		{WidgetID: "incidents", X: 0, Y: 2, Width: 5, Height: 2, MinWidth: 2, MinHeight: 2},
		{WidgetID: "training-compliance", X: 5, Y: 2, Width: 5, Height: 2, MinWidth: 2, MinHeight: 2},
		{WidgetID: "incident-trends", X: 0, Y: 4, Width: 10, Height: 4, MinWidth: 6, MinHeight: 3},
		{WidgetID: "audit-completion", X: 0, Y: 8, Width: 5, Height: 3, MinWidth: 4, MinHeight: 2},
		{WidgetID: "task-completion", X: 5, Y: 8, Width: 5, Height: 3, MinWidth: 4, MinHeight: 2},
	},
	BreakpointNarrow: {
		{WidgetID: "risk-assessments", X: 0, Y: 0, Width: 3, Height: 2, MinWidth: 2, MinHeight: 2},
		{WidgetID: "safety-audits", X: 3, Y: 0, Width: 3, Height: 2, MinWidth: 2, MinHeight: 2},
		{WidgetID: "incidents", X: 0, Y: 2, Width: 3, Height: 2, MinWidth: 2, MinHeight: 2},
		{WidgetID: "training-compliance", X: 3, Y: 2, Width: 3, Height: 2, MinWidth: 2, MinHeight: 2},
		{WidgetID: "incident-trends", X: 0, Y: 4, Width: 6, Height: 4, MinWidth: 4, MinHeight: 3},
		{WidgetID: "audit-completion", X: 0, Y: 8, Width: 6, Height: 3, MinWidth: 3, MinHeight: 2},
		{WidgetID: "task-completion", X: 0, Y: 11, Width: 6, Height: 3, MinWidth: 3, MinHeight: 2},
	},
}

// StandardWidgets returns the compile-time catalog in display order.
func StandardWidgets() []WidgetSpec {
	return append([]WidgetSpec(nil), standardWidgets...)
}

func IsStandardWidget(id string) bool {
	_, ok := standardPosition(BreakpointWide, id)
	return ok
}

// CustomReportWidgetID derives the widget id of a user-defined report.
func CustomReportWidgetID(reportID string) string {
	return customReportPrefix + reportID
}

func IsCustomReportWidget(id string) bool {
	return strings.HasPrefix(id, customReportPrefix) && len(id) > len(customReportPrefix)
}

func CustomReportSpec(widgetID, label string) WidgetSpec {
	return WidgetSpec{
		ID:        widgetID,
		Kind:      KindCustomReport,
		Label:     label,
		MinWidth:  customMinWidth,
		MinHeight: customMinHeight,
	}
}

func standardPosition(bp Breakpoint, id string) (LayoutEntry, bool) {
	for _, e := range standardPositions[bp] {
		if e.WidgetID == id {
			return e, true
		}
	}
	return LayoutEntry{}, false
}

// normalizeCustomIDs keeps the first occurrence of each custom report widget id.
func normalizeCustomIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !IsCustomReportWidget(id) || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// packCustom places custom widgets starting at startY: two per row at half width,
// except on the narrow breakpoint where each gets a full-width row.
func packCustom(bp Breakpoint, ids []string, startY int) []LayoutEntry {
	cols := bp.Columns()
	perRow, itemW := 2, cols/2
	if bp == BreakpointNarrow {
		perRow, itemW = 1, cols
	}

	entries := make([]LayoutEntry, 0, len(ids))
	for idx, id := range ids {
		entries = append(entries, LayoutEntry{
			WidgetID:  id,
			X:         (idx % perRow) * itemW,
			Y:         startY + (idx/perRow)*customHeight,
			Width:     itemW,
			Height:    customHeight,
			MinWidth:  min(customMinWidth, cols),
			MinHeight: customMinHeight,
		})
	}
	return entries
}

// DefaultLayouts builds the layout for a standard catalog plus the given custom widget
// ids. The result depends only on its input.
func DefaultLayouts(customIDs []string) Layouts {
	customIDs = normalizeCustomIDs(customIDs)
	out := make(Layouts, len(Breakpoints))
	for _, bp := range Breakpoints {
		standard := standardPositions[bp]
		entries := make([]LayoutEntry, 0, len(standard)+len(customIDs))
		entries = append(entries, standard...)
		entries = append(entries, packCustom(bp, customIDs, maxBottom(standard))...)
		out[bp] = entries
	}
	return out
}

func DefaultDocument(customIDs []string) LayoutDocument {
	return LayoutDocument{Layouts: DefaultLayouts(customIDs)}
}
