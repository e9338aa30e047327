package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileIdempotentOnDefault(t *testing.T) {
	ids := []string{"report-1", "report-2"}
	doc := DefaultDocument(ids)

	next, changed := Reconcile(doc, ids)
	assert.False(t, changed)

	a, _ := doc.Encode()
	b, _ := next.Encode()
	assert.Equal(t, a, b)
}

func TestReconcileAddsNewReportWithoutMovingExisting(t *testing.T) {
	doc := DefaultDocument([]string{"report-C1"})

	// user moved C1 on the wide grid
	for i, e := range doc.Layouts[BreakpointWide] {
		if e.WidgetID == "report-C1" {
			doc.Layouts[BreakpointWide][i].X = 6
			doc.Layouts[BreakpointWide][i].Y = 12
		}
	}

	next, changed := Reconcile(doc, []string{"report-C1", "report-C2"})
	require.True(t, changed)

	c1, ok := entryByID(next.Layouts[BreakpointWide], "report-C1")
	require.True(t, ok)
	assert.Equal(t, 6, c1.X)
	assert.Equal(t, 12, c1.Y)

	for _, bp := range Breakpoints {
		c2, ok := entryByID(next.Layouts[bp], "report-C2")
		require.True(t, ok, bp)
		assert.GreaterOrEqual(t, c2.Y, doc.Layouts.MaxY(bp), bp)
	}
	assertNoOverlap(t, next.Layouts)
}

func TestReconcileRemovesStaleWidgetsEverywhere(t *testing.T) {
	doc := DefaultDocument([]string{"report-1", "report-2"})
	doc.Hidden = []string{"report-2", "incidents"}

	next, changed := Reconcile(doc, []string{"report-1"})
	require.True(t, changed)

	for _, bp := range Breakpoints {
		_, ok := entryByID(next.Layouts[bp], "report-2")
		assert.False(t, ok, bp)
	}
	assert.Equal(t, []string{"incidents"}, next.Hidden)
}

func TestReconcileRepairsMissingStandardWidget(t *testing.T) {
	doc := DefaultDocument(nil)
	var kept []LayoutEntry
	for _, e := range doc.Layouts[BreakpointMedium] {
		if e.WidgetID != "incident-trends" {
			kept = append(kept, e)
		}
	}
	doc.Layouts[BreakpointMedium] = kept

	next, changed := Reconcile(doc, nil)
	require.True(t, changed)

	trends, ok := entryByID(next.Layouts[BreakpointMedium], "incident-trends")
	require.True(t, ok)
	assert.Equal(t, 0, trends.X)
	assert.Equal(t, 11, trends.Y)
	assert.Equal(t, 10, trends.Width)
	assertNoOverlap(t, next.Layouts)
}

func TestReconcileDropsMalformedEntries(t *testing.T) {
	doc := DefaultDocument(nil)
	doc.Layouts[BreakpointNarrow][0].Width = 0
	doc.Layouts["xl"] = []LayoutEntry{{WidgetID: "incidents", Width: 1, Height: 1}}

	next, changed := Reconcile(doc, nil)
	require.True(t, changed)
	assert.NotContains(t, next.Layouts, Breakpoint("xl"))

	e, ok := entryByID(next.Layouts[BreakpointNarrow], "risk-assessments")
	require.True(t, ok)
	assert.Equal(t, 3, e.Width)
	assertNoOverlap(t, next.Layouts)
}

func TestReconcileEmptyDocumentYieldsDefault(t *testing.T) {
	ids := []string{"report-x"}
	next, changed := Reconcile(LayoutDocument{}, ids)
	require.True(t, changed)

	want, _ := DefaultDocument(ids).Encode()
	got, _ := next.Encode()
	assert.Equal(t, want, got)
}
