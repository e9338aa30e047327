package layout

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-hse/internal/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockWidgetSource struct {
	widgets []CustomWidget
	err     error
	calls   int
}

func (m *mockWidgetSource) ListCustomWidgets(ctx context.Context, companyID, userID string) ([]CustomWidget, error) {
	m.calls++
	return m.widgets, m.err
}

func TestLayoutServiceReusesSessions(t *testing.T) {
	src := &mockWidgetSource{widgets: []CustomWidget{{ID: "report-1", Label: "Monthly"}}}
	svc := NewLayoutService(kvstore.NewMemoryStore(), src, nil, nil, zap.NewNop())
	ctx := context.Background()

	ref := SessionRef{CompanyID: "c1", UserID: "u1"}
	a := svc.Session(ctx, ref)
	b := svc.Session(ctx, SessionRef{CompanyID: "c1", UserID: "u1", Dashboard: DefaultDashboard})

	assert.Same(t, a, b)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 1, svc.SessionCount())

	widgets := a.Widgets()
	assert.Equal(t, "report-1", widgets[len(widgets)-1].ID)
	assert.Equal(t, KindCustomReport, widgets[len(widgets)-1].Kind)
}

func TestLayoutServiceOtherDashboardsHaveNoCustomWidgets(t *testing.T) {
	src := &mockWidgetSource{widgets: []CustomWidget{{ID: "report-1"}}}
	svc := NewLayoutService(kvstore.NewMemoryStore(), src, nil, nil, zap.NewNop())

	e := svc.Session(context.Background(), SessionRef{CompanyID: "c1", UserID: "u1", Dashboard: "incidents"})
	assert.Len(t, e.Widgets(), len(StandardWidgets()))
	assert.Equal(t, 0, src.calls)
}

func TestLayoutServiceReportsChanged(t *testing.T) {
	src := &mockWidgetSource{}
	svc := NewLayoutService(kvstore.NewMemoryStore(), src, nil, nil, zap.NewNop())
	ctx := context.Background()

	e := svc.Session(ctx, SessionRef{CompanyID: "c1", UserID: "u1"})
	src.widgets = []CustomWidget{{ID: "report-new"}}
	svc.ReportsChanged(ctx, "c1", "u1")

	_, ok := entryByID(e.VisibleLayouts()[BreakpointWide], "report-new")
	assert.True(t, ok)
}

func TestLayoutServiceWidgetSourceFailure(t *testing.T) {
	src := &mockWidgetSource{err: errors.New("db down")}
	svc := NewLayoutService(kvstore.NewMemoryStore(), src, nil, nil, zap.NewNop())

	e := svc.Session(context.Background(), SessionRef{CompanyID: "c1", UserID: "u1"})
	require.NotNil(t, e)
	assert.Equal(t, DefaultDocument(nil), e.Document())
}

func TestLayoutServiceEvictIdle(t *testing.T) {
	svc := NewLayoutService(kvstore.NewMemoryStore(), &mockWidgetSource{}, nil, nil, zap.NewNop())
	ctx := context.Background()

	idle := svc.Session(ctx, SessionRef{CompanyID: "c1", UserID: "idle"})
	dragging := svc.Session(ctx, SessionRef{CompanyID: "c1", UserID: "dragging"})
	dragging.DragStart()

	idle.mu.Lock()
	idle.lastUsed = time.Now().Add(-time.Hour)
	idle.mu.Unlock()

	assert.Equal(t, 1, svc.EvictIdle(30*time.Minute))
	assert.Equal(t, 1, svc.SessionCount())
}

func TestLayoutServiceResetLayout(t *testing.T) {
	svc := NewLayoutService(kvstore.NewMemoryStore(), &mockWidgetSource{}, nil, nil, zap.NewNop())
	ctx := context.Background()
	ref := SessionRef{CompanyID: "c1", UserID: "u1"}

	e := svc.Session(ctx, ref)
	require.NoError(t, e.Hide(ctx, "incidents"))

	reset := svc.ResetLayout(ctx, ref)
	assert.Same(t, e, reset)
	assert.Empty(t, reset.HiddenWidgets())
}

func TestLayoutServiceKeepsAttachedSessions(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	svc := NewLayoutService(kv, &mockWidgetSource{}, nil, nil, zap.NewNop())
	ctx := context.Background()
	ref := SessionRef{CompanyID: "c1", UserID: "u1", Dashboard: DefaultDashboard}

	socket, release := svc.Attach(ctx, ref)
	socket.mu.Lock()
	socket.lastUsed = time.Now().Add(-time.Hour)
	socket.mu.Unlock()

	assert.Equal(t, 0, svc.EvictIdle(time.Millisecond))

	// a request served while the socket is open shares its engine
	require.NoError(t, svc.Session(ctx, ref).Hide(ctx, "incidents"))
	socket.DragStart()
	socket.DragStop(ctx, socket.VisibleLayouts())

	stored, err := NewLayoutStore(kv, ref.key()).Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, []string{"incidents"}, stored.Hidden)

	release()
	release()
	socket.mu.Lock()
	socket.lastUsed = time.Now().Add(-time.Hour)
	socket.mu.Unlock()
	assert.Equal(t, 1, svc.EvictIdle(time.Millisecond))
}
