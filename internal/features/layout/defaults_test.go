package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryByID(entries []LayoutEntry, id string) (LayoutEntry, bool) {
	for _, e := range entries {
		if e.WidgetID == id {
			return e, true
		}
	}
	return LayoutEntry{}, false
}

func assertNoOverlap(t *testing.T, l Layouts) {
	t.Helper()
	for bp, entries := range l {
		for i := range entries {
			for j := i + 1; j < len(entries); j++ {
				assert.Falsef(t, entries[i].Overlaps(entries[j]), "%s: %s overlaps %s", bp, entries[i].WidgetID, entries[j].WidgetID)
			}
		}
	}
}

func TestDefaultLayoutsStandardOnly(t *testing.T) {
	l := DefaultLayouts(nil)

	for _, bp := range Breakpoints {
		assert.Len(t, l[bp], len(standardWidgets), bp)
	}

	trends, ok := entryByID(l[BreakpointWide], "incident-trends")
	require.True(t, ok)
	assert.Equal(t, LayoutEntry{WidgetID: "incident-trends", X: 0, Y: 2, Width: 12, Height: 4, MinWidth: 6, MinHeight: 3}, trends)

	task, ok := entryByID(l[BreakpointNarrow], "task-completion")
	require.True(t, ok)
	assert.Equal(t, 11, task.Y)

	assertNoOverlap(t, l)
}

func TestDefaultLayoutsPacksCustomReports(t *testing.T) {
	ids := []string{"report-a", "report-b", "report-c"}
	l := DefaultLayouts(ids)

	tests := []struct {
		bp    Breakpoint
		id    string
		wantX int
		wantY int
		wantW int
	}{
		{BreakpointWide, "report-a", 0, 9, 6},
		{BreakpointWide, "report-b", 6, 9, 6},
		{BreakpointWide, "report-c", 0, 12, 6},
		{BreakpointMedium, "report-b", 5, 11, 5},
		{BreakpointNarrow, "report-a", 0, 14, 6},
		{BreakpointNarrow, "report-b", 0, 17, 6},
		{BreakpointNarrow, "report-c", 0, 20, 6},
	}

	for _, tt := range tests {
		t.Run(string(tt.bp)+"/"+tt.id, func(t *testing.T) {
			e, ok := entryByID(l[tt.bp], tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.wantX, e.X)
			assert.Equal(t, tt.wantY, e.Y)
			assert.Equal(t, tt.wantW, e.Width)
			assert.Equal(t, 3, e.Height)
			assert.Equal(t, 2, e.MinHeight)
		})
	}
	assertNoOverlap(t, l)
}

func TestDefaultLayoutsIsDeterministic(t *testing.T) {
	ids := []string{"report-1", "report-2"}
	a, err := DefaultLayouts(ids).Serialize()
	require.NoError(t, err)
	b, err := DefaultLayouts(ids).Serialize()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDefaultLayoutsIgnoresDuplicateAndForeignIDs(t *testing.T) {
	l := DefaultLayouts([]string{"report-1", "report-1", "incidents", "report-"})
	assert.Len(t, l[BreakpointWide], len(standardWidgets)+1)
}

func TestCustomReportWidgetID(t *testing.T) {
	assert.Equal(t, "report-42", CustomReportWidgetID("42"))
	assert.True(t, IsCustomReportWidget("report-42"))
	assert.False(t, IsCustomReportWidget("incidents"))
	assert.True(t, IsStandardWidget("incidents"))
}
