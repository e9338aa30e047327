package layout

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-hse/internal/metrics"

	"go.uber.org/zap"
)

var ErrUnknownWidget = errors.New("unknown widget")

type GestureState int

const (
	GestureIdle GestureState = iota
	GestureDragging
	GestureResizing
)

func (s GestureState) String() string {
	switch s {
	case GestureDragging:
		return "dragging"
	case GestureResizing:
		return "resizing"
	default:
		return "idle"
	}
}

// WriteObserver receives persistence outcomes. *metrics.Metrics implements it.
type WriteObserver interface {
	ObserveLayoutWrite(result string)
	ObserveReconcile()
}

type nopObserver struct{}

func (nopObserver) ObserveLayoutWrite(string) {}
func (nopObserver) ObserveReconcile()         {}

// Engine owns the layout of one dashboard for one user. Layout updates reported while a
// drag or resize is in progress only replace the pending slot; the pending layout is
// merged with hidden widget positions and persisted once, when the gesture stops.
//
// Storage failures are logged and never returned: the in-memory document stays
// authoritative and the next write attempt acts as the retry.
type Engine struct {
	mu       sync.Mutex
	store    *LayoutStore
	observer WriteObserver
	logger   *zap.Logger

	customIDs []string
	labels    map[string]string
	doc       LayoutDocument
	state     GestureState
	pending   Layouts
	lastSaved string
	lastUsed  time.Time
}

// CustomWidget describes a custom report widget the engine must place.
type CustomWidget struct {
	ID    string
	Label string
}

// NewEngine loads the stored document, falling back to the default layout when the key is
// missing or unreadable, and reconciles it against the given custom widgets.
func NewEngine(ctx context.Context, store *LayoutStore, custom []CustomWidget, observer WriteObserver, logger *zap.Logger) *Engine {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		store:    store,
		observer: observer,
		logger:   logger.With(zap.String("layout_key", store.Key())),
		lastUsed: time.Now(),
	}
	e.setCustom(custom)
	e.load(ctx)
	return e
}

func (e *Engine) load(ctx context.Context) {
	stored, err := e.store.Load(ctx)
	switch {
	case errors.Is(err, ErrCorruptLayout):
		e.logger.Warn("Discarding undecodable layout", zap.Error(err))
		e.doc = DefaultDocument(e.customIDs)
		e.persist(ctx, e.doc)
	case err != nil:
		// Storage unreachable: do not overwrite what may still be there.
		e.logger.Warn("Failed to load layout, using default", zap.Error(err))
		e.doc = DefaultDocument(e.customIDs)
	case stored == nil:
		e.doc = DefaultDocument(e.customIDs)
	default:
		doc, changed := Reconcile(*stored, e.customIDs)
		e.doc = doc
		if changed {
			e.observer.ObserveReconcile()
			e.persist(ctx, doc)
		} else if encoded, err := doc.Encode(); err == nil {
			e.lastSaved = encoded
		}
	}
}

func (e *Engine) setCustom(custom []CustomWidget) {
	ids := make([]string, 0, len(custom))
	labels := make(map[string]string, len(custom))
	for _, w := range custom {
		ids = append(ids, w.ID)
		labels[w.ID] = w.Label
	}
	e.customIDs = normalizeCustomIDs(ids)
	e.labels = labels
}

// persist writes doc unless its encoding equals the last successful write.
func (e *Engine) persist(ctx context.Context, doc LayoutDocument) bool {
	encoded, err := doc.Encode()
	if err != nil {
		e.logger.Error("Failed to encode layout", zap.Error(err))
		e.observer.ObserveLayoutWrite(metrics.LayoutWriteFailed)
		return false
	}
	if encoded == e.lastSaved {
		e.observer.ObserveLayoutWrite(metrics.LayoutWriteUnchanged)
		return false
	}
	if err := e.store.Save(ctx, encoded); err != nil {
		e.logger.Warn("Failed to save layout", zap.Error(err))
		e.observer.ObserveLayoutWrite(metrics.LayoutWriteFailed)
		return false
	}
	e.lastSaved = encoded
	e.observer.ObserveLayoutWrite(metrics.LayoutWriteWritten)
	return true
}

func (e *Engine) touch() {
	e.lastUsed = time.Now()
}

func (e *Engine) DragStart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	e.state = GestureDragging
}

func (e *Engine) ResizeStart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()
	e.state = GestureResizing
}

// LayoutChange handles a layout reported by the grid. During a gesture it only replaces
// the pending layout. Outside a gesture the layout is merged and persisted right away.
// It returns whether a write happened. A nil report is ignored.
func (e *Engine) LayoutChange(ctx context.Context, reported Layouts) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()

	if reported == nil {
		return false
	}
	if e.state != GestureIdle {
		e.pending = reported.Clone()
		return false
	}

	next := LayoutDocument{Layouts: e.merge(reported), Hidden: e.doc.Hidden}
	written := e.persist(ctx, next)
	e.doc = next
	return written
}

// DragStop ends a drag. A non-nil final layout replaces the pending one.
func (e *Engine) DragStop(ctx context.Context, final Layouts) bool {
	return e.stop(ctx, final)
}

// ResizeStop ends a resize. A non-nil final layout replaces the pending one.
func (e *Engine) ResizeStop(ctx context.Context, final Layouts) bool {
	return e.stop(ctx, final)
}

// CancelGesture ends a gesture the grid abandoned; whatever is pending is committed.
func (e *Engine) CancelGesture(ctx context.Context) bool {
	return e.stop(ctx, nil)
}

func (e *Engine) stop(ctx context.Context, final Layouts) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()

	e.state = GestureIdle
	if final != nil {
		e.pending = final.Clone()
	}
	if e.pending == nil {
		return false
	}

	next := LayoutDocument{Layouts: e.merge(e.pending), Hidden: e.doc.Hidden}
	e.pending = nil
	written := e.persist(ctx, next)
	e.doc = next
	return written
}

// merge combines a reported layout, which only covers visible widgets, with the current
// document. Reported entries of unknown or hidden widgets are ignored and sizes are
// clamped to the widget minimums. Visible widgets missing from the report and all hidden
// widgets keep their current entries. Breakpoints absent from the report are unchanged.
func (e *Engine) merge(reported Layouts) Layouts {
	out := make(Layouts, len(Breakpoints))
	for _, bp := range Breakpoints {
		current := e.doc.Layouts[bp]
		rep, ok := reported[bp]
		if !ok {
			out[bp] = append([]LayoutEntry(nil), current...)
			continue
		}

		cols := bp.Columns()
		byID := make(map[string]LayoutEntry, len(current))
		for _, c := range current {
			byID[c.WidgetID] = c
		}

		seen := make(map[string]bool, len(current))
		merged := make([]LayoutEntry, 0, len(current))
		for _, r := range rep {
			cur, known := byID[r.WidgetID]
			if !known || seen[r.WidgetID] || e.doc.IsHidden(r.WidgetID) {
				continue
			}
			seen[r.WidgetID] = true
			merged = append(merged, clampEntry(r, cur, cols))
		}
		for _, c := range current {
			if !seen[c.WidgetID] && !e.doc.IsHidden(c.WidgetID) {
				merged = append(merged, c)
			}
		}
		for _, c := range current {
			if e.doc.IsHidden(c.WidgetID) {
				merged = append(merged, c)
			}
		}
		out[bp] = merged
	}
	return out
}

// clampEntry keeps the reported position within the grid and at least the minimum size.
// Minimums and the static flag come from the current entry. Static entries never move.
func clampEntry(r, cur LayoutEntry, cols int) LayoutEntry {
	if cur.Static {
		return cur
	}
	minW := min(max(cur.MinWidth, 1), cols)
	minH := max(cur.MinHeight, 1)

	out := LayoutEntry{
		WidgetID:  r.WidgetID,
		X:         max(r.X, 0),
		Y:         max(r.Y, 0),
		Width:     min(max(r.Width, minW), cols),
		Height:    max(r.Height, minH),
		MinWidth:  cur.MinWidth,
		MinHeight: cur.MinHeight,
		Static:    cur.Static,
	}
	if out.X+out.Width > cols {
		out.X = cols - out.Width
	}
	return out
}

func (e *Engine) knownWidget(id string) bool {
	if IsStandardWidget(id) {
		return true
	}
	for _, c := range e.customIDs {
		if c == id {
			return true
		}
	}
	return false
}

// Hide removes a widget from the visible layout. Its entries stay in the document.
func (e *Engine) Hide(ctx context.Context, widgetID string) error {
	_, err := e.setHidden(ctx, widgetID, func(bool) bool { return true })
	return err
}

// Show restores a hidden widget at its preserved position.
func (e *Engine) Show(ctx context.Context, widgetID string) error {
	_, err := e.setHidden(ctx, widgetID, func(bool) bool { return false })
	return err
}

// Toggle flips the visibility of a widget and returns whether it is now hidden.
func (e *Engine) Toggle(ctx context.Context, widgetID string) (bool, error) {
	return e.setHidden(ctx, widgetID, func(hidden bool) bool { return !hidden })
}

// setHidden only touches the hidden set; visibility changes never reconcile.
func (e *Engine) setHidden(ctx context.Context, widgetID string, decide func(hidden bool) bool) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()

	if !e.knownWidget(widgetID) {
		return false, ErrUnknownWidget
	}

	hide := decide(e.doc.IsHidden(widgetID))
	ids := make([]string, 0, len(e.doc.Hidden)+1)
	for _, id := range e.doc.Hidden {
		if id != widgetID {
			ids = append(ids, id)
		}
	}
	if hide {
		ids = append(ids, widgetID)
	}

	next := LayoutDocument{
		Layouts: e.doc.Layouts,
		Hidden:  normalizeHidden(ids, func(string) bool { return true }),
	}
	e.persist(ctx, next)
	e.doc = next
	return hide, nil
}

// SetCustomWidgets reconciles the document with a changed custom widget set and persists
// the result immediately. It returns whether the document changed.
func (e *Engine) SetCustomWidgets(ctx context.Context, custom []CustomWidget) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()

	e.setCustom(custom)
	next, changed := Reconcile(e.doc, e.customIDs)
	if !changed {
		return false
	}
	e.observer.ObserveReconcile()
	e.persist(ctx, next)
	e.doc = next
	return true
}

// Reset replaces the document with the default layout for the current widget set and
// clears the hidden set. Any gesture in progress is abandoned.
func (e *Engine) Reset(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touch()

	e.state = GestureIdle
	e.pending = nil
	e.doc = DefaultDocument(e.customIDs)
	e.persist(ctx, e.doc)
}

// VisibleLayouts returns the layouts the grid should render.
func (e *Engine) VisibleLayouts() Layouts {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Visible()
}

func (e *Engine) HiddenWidgets() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string{}, e.doc.Hidden...)
}

func (e *Engine) Document() LayoutDocument {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

func (e *Engine) State() GestureState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Widgets lists every widget of the dashboard, standard first.
func (e *Engine) Widgets() []WidgetSpec {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := StandardWidgets()
	for _, id := range e.customIDs {
		out = append(out, CustomReportSpec(id, e.labels[id]))
	}
	return out
}

// IdleSince returns when the engine was last used, or zero while a gesture is active.
func (e *Engine) IdleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != GestureIdle {
		return time.Time{}
	}
	return e.lastUsed
}
