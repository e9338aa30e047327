package layout

import (
	"context"
	"errors"
	"testing"

	"go-hse/internal/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore counts writes and can be switched to fail.
type recordingStore struct {
	*kvstore.MemoryStore
	writes  int
	failSet bool
	failGet bool
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: kvstore.NewMemoryStore()}
}

func (s *recordingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.failGet {
		return "", false, errors.New("storage unavailable")
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *recordingStore) Set(ctx context.Context, key, value string) error {
	if s.failSet {
		return errors.New("quota exceeded")
	}
	s.writes++
	return s.MemoryStore.Set(ctx, key, value)
}

const testKey = "hse_unified_dashboard_layout_v5:c1:u1:overview"

func newTestEngine(t *testing.T, kv kvstore.Store, custom ...string) *Engine {
	t.Helper()
	widgets := make([]CustomWidget, 0, len(custom))
	for _, id := range custom {
		widgets = append(widgets, CustomWidget{ID: id, Label: id})
	}
	return NewEngine(context.Background(), NewLayoutStore(kv, testKey), widgets, nil, nil)
}

// moved returns the visible layout with one widget moved on the wide breakpoint.
func moved(e *Engine, id string, x, y int) Layouts {
	l := e.VisibleLayouts()
	for i, entry := range l[BreakpointWide] {
		if entry.WidgetID == id {
			l[BreakpointWide][i].X = x
			l[BreakpointWide][i].Y = y
		}
	}
	return l
}

func TestEngineNoWriteDuringDrag(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	e := newTestEngine(t, store)

	e.DragStart()
	assert.Equal(t, GestureDragging, e.State())
	for y := 10; y < 20; y++ {
		assert.False(t, e.LayoutChange(ctx, moved(e, "incidents", 0, y)))
	}
	assert.Equal(t, 0, store.writes)

	assert.True(t, e.DragStop(ctx, nil))
	assert.Equal(t, 1, store.writes)
	assert.Equal(t, GestureIdle, e.State())

	inc, ok := entryByID(e.VisibleLayouts()[BreakpointWide], "incidents")
	require.True(t, ok)
	assert.Equal(t, 19, inc.Y)
}

func TestEngineStopWithoutPendingDoesNothing(t *testing.T) {
	store := newRecordingStore()
	e := newTestEngine(t, store)

	e.ResizeStart()
	assert.False(t, e.ResizeStop(context.Background(), nil))
	assert.Equal(t, 0, store.writes)
}

func TestEngineDedupsIdenticalLayouts(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	e := newTestEngine(t, store)

	layout := moved(e, "incidents", 0, 12)
	e.DragStart()
	e.LayoutChange(ctx, layout)
	require.True(t, e.DragStop(ctx, nil))

	e.DragStart()
	e.LayoutChange(ctx, layout)
	assert.False(t, e.DragStop(ctx, nil))
	assert.Equal(t, 1, store.writes)
}

func TestEngineHiddenEntriesSurviveGestures(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	e := newTestEngine(t, store, "report-1")

	before, ok := entryByID(e.Document().Layouts[BreakpointWide], "report-1")
	require.True(t, ok)

	require.NoError(t, e.Hide(ctx, "report-1"))
	_, visible := entryByID(e.VisibleLayouts()[BreakpointWide], "report-1")
	assert.False(t, visible)

	// the grid may even report the hidden widget; it is ignored
	l := moved(e, "incidents", 0, 20)
	l[BreakpointWide] = append(l[BreakpointWide], LayoutEntry{WidgetID: "report-1", X: 0, Y: 40, Width: 3, Height: 3})
	e.DragStart()
	e.LayoutChange(ctx, l)
	e.DragStop(ctx, nil)

	after, ok := entryByID(e.Document().Layouts[BreakpointWide], "report-1")
	require.True(t, ok)
	assert.Equal(t, before, after)

	require.NoError(t, e.Show(ctx, "report-1"))
	shown, ok := entryByID(e.VisibleLayouts()[BreakpointWide], "report-1")
	require.True(t, ok)
	assert.Equal(t, before, shown)
}

func TestEngineToggleDoesNotReconcile(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, newRecordingStore(), "report-1")
	layoutsBefore := e.Document().Layouts

	hidden, err := e.Toggle(ctx, "incidents")
	require.NoError(t, err)
	assert.True(t, hidden)
	hidden, err = e.Toggle(ctx, "incidents")
	require.NoError(t, err)
	assert.False(t, hidden)

	assert.Equal(t, layoutsBefore, e.Document().Layouts)
	assert.Empty(t, e.HiddenWidgets())
}

func TestEngineUnknownWidget(t *testing.T) {
	e := newTestEngine(t, newRecordingStore())
	assert.ErrorIs(t, e.Hide(context.Background(), "report-nope"), ErrUnknownWidget)
}

func TestEngineClampsToMinimumSize(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, newRecordingStore())

	l := e.VisibleLayouts()
	for i, entry := range l[BreakpointWide] {
		if entry.WidgetID == "incident-trends" {
			l[BreakpointWide][i].Width = 1
			l[BreakpointWide][i].Height = 1
		}
	}
	e.ResizeStart()
	e.ResizeStop(ctx, l)

	trends, ok := entryByID(e.VisibleLayouts()[BreakpointWide], "incident-trends")
	require.True(t, ok)
	assert.Equal(t, 6, trends.Width)
	assert.Equal(t, 3, trends.Height)
}

func TestEngineWriteFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	e := newTestEngine(t, store)
	store.failSet = true

	layout := moved(e, "incidents", 0, 30)
	e.DragStart()
	e.LayoutChange(ctx, layout)
	assert.False(t, e.DragStop(ctx, nil))

	inc, _ := entryByID(e.VisibleLayouts()[BreakpointWide], "incidents")
	assert.Equal(t, 30, inc.Y)

	// the next gesture retries the same content
	store.failSet = false
	e.DragStart()
	e.LayoutChange(ctx, layout)
	assert.True(t, e.DragStop(ctx, nil))
	assert.Equal(t, 1, store.writes)
}

func TestEngineLoadsPersistedDocument(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	e := newTestEngine(t, store)

	e.DragStart()
	e.LayoutChange(ctx, moved(e, "safety-audits", 0, 25))
	e.DragStop(ctx, nil)
	require.NoError(t, e.Hide(ctx, "incidents"))

	reloaded := newTestEngine(t, store)
	assert.Equal(t, e.Document(), reloaded.Document())
	assert.Equal(t, []string{"incidents"}, reloaded.HiddenWidgets())
}

func TestEngineCorruptDocumentFallsBackToDefault(t *testing.T) {
	store := newRecordingStore()
	require.NoError(t, store.MemoryStore.Set(context.Background(), testKey, "{not json"))

	e := newTestEngine(t, store, "report-1")
	assert.Equal(t, DefaultDocument([]string{"report-1"}), e.Document())
	assert.Equal(t, 1, store.writes)
}

func TestEngineUnreachableStorageUsesDefaultWithoutWriting(t *testing.T) {
	store := newRecordingStore()
	store.failGet = true

	e := newTestEngine(t, store)
	assert.Equal(t, DefaultDocument(nil), e.Document())
	assert.Equal(t, 0, store.writes)
}

func TestEngineSetCustomWidgetsReconcilesAndPersists(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	e := newTestEngine(t, store, "report-1")

	assert.True(t, e.SetCustomWidgets(ctx, []CustomWidget{{ID: "report-1"}, {ID: "report-2"}}))
	assert.Equal(t, 1, store.writes)
	_, ok := entryByID(e.VisibleLayouts()[BreakpointNarrow], "report-2")
	assert.True(t, ok)

	assert.False(t, e.SetCustomWidgets(ctx, []CustomWidget{{ID: "report-1"}, {ID: "report-2"}}))
	assert.Equal(t, 1, store.writes)
}

func TestEngineResetClearsHiddenAndPositions(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, newRecordingStore(), "report-1")

	require.NoError(t, e.Hide(ctx, "report-1"))
	e.DragStart()
	e.LayoutChange(ctx, moved(e, "incidents", 0, 18))
	e.Reset(ctx)

	assert.Equal(t, GestureIdle, e.State())
	assert.Equal(t, DefaultDocument([]string{"report-1"}), e.Document())
	assert.Empty(t, e.HiddenWidgets())
}

func TestEngineMissingBreakpointKeepsCurrentEntries(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, newRecordingStore())
	narrowBefore := e.Document().Layouts[BreakpointNarrow]

	l := moved(e, "incidents", 0, 14)
	delete(l, BreakpointNarrow)
	e.LayoutChange(ctx, l)

	assert.Equal(t, narrowBefore, e.Document().Layouts[BreakpointNarrow])
}

func TestEngineEmptyChangeKeepsPendingLayout(t *testing.T) {
	ctx := context.Background()
	kv := newRecordingStore()
	e := newTestEngine(t, kv)

	e.DragStart()
	e.LayoutChange(ctx, moved(e, "incidents", 0, 20))
	assert.False(t, e.LayoutChange(ctx, nil))
	assert.Equal(t, GestureDragging, e.State())

	require.True(t, e.DragStop(ctx, nil))
	incidents, ok := entryByID(e.VisibleLayouts()[BreakpointWide], "incidents")
	require.True(t, ok)
	assert.Equal(t, 20, incidents.Y)
	assert.Equal(t, 1, kv.writes)
}

func TestEngineStaticEntriesIgnoreReportedGeometry(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, newRecordingStore())

	e.mu.Lock()
	for i, entry := range e.doc.Layouts[BreakpointWide] {
		if entry.WidgetID == "incidents" {
			e.doc.Layouts[BreakpointWide][i].Static = true
		}
	}
	e.mu.Unlock()
	before, ok := entryByID(e.VisibleLayouts()[BreakpointWide], "incidents")
	require.True(t, ok)

	e.DragStart()
	e.DragStop(ctx, moved(e, "incidents", 7, 30))

	after, ok := entryByID(e.VisibleLayouts()[BreakpointWide], "incidents")
	require.True(t, ok)
	assert.Equal(t, before, after)
}
