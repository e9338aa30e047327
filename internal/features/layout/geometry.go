// Package layout keeps per-user dashboard grid layouts: default generation, reconciliation
// against the current widget set, and gesture-aware persistence.
package layout

import (
	"encoding/json"
	"sort"
)

type Breakpoint string

const (
	BreakpointWide   Breakpoint = "lg"
	BreakpointMedium Breakpoint = "md"
	BreakpointNarrow Breakpoint = "sm"
)

// Breakpoints lists every supported breakpoint, widest first.
var Breakpoints = []Breakpoint{BreakpointWide, BreakpointMedium, BreakpointNarrow}

// Columns returns the grid width of the breakpoint, or 0 for an unknown breakpoint.
func (b Breakpoint) Columns() int {
	switch b {
	case BreakpointWide:
		return 12
	case BreakpointMedium:
		return 10
	case BreakpointNarrow:
		return 6
	}
	return 0
}

func (b Breakpoint) Valid() bool {
	return b.Columns() > 0
}

type WidgetKind string

const (
	KindStandardKPI  WidgetKind = "standard-kpi"
	KindChartCard    WidgetKind = "chart-card"
	KindCustomReport WidgetKind = "custom-report"
)

type WidgetSpec struct {
	ID        string     `json:"id"`
	Kind      WidgetKind `json:"kind"`
	Label     string     `json:"label,omitempty"`
	MinWidth  int        `json:"min_width"`
	MinHeight int        `json:"min_height"`
}

// LayoutEntry is one widget placement on one breakpoint's grid. The breakpoint is the
// key the entry is stored under in Layouts.
type LayoutEntry struct {
	WidgetID  string `json:"i"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"w"`
	Height    int    `json:"h"`
	MinWidth  int    `json:"minW,omitempty"`
	MinHeight int    `json:"minH,omitempty"`
	Static    bool   `json:"static,omitempty"`
}

func (e LayoutEntry) Bottom() int {
	return e.Y + e.Height
}

// Overlaps reports whether two entries share at least one grid cell.
func (e LayoutEntry) Overlaps(o LayoutEntry) bool {
	return e.X < o.X+o.Width && o.X < e.X+e.Width &&
		e.Y < o.Y+o.Height && o.Y < e.Y+e.Height
}

// fits reports whether the entry is well formed for a grid of the given width.
func (e LayoutEntry) fits(cols int) bool {
	return e.WidgetID != "" && e.X >= 0 && e.Y >= 0 &&
		e.Width >= 1 && e.Height >= 1 && e.X+e.Width <= cols
}

type Layouts map[Breakpoint][]LayoutEntry

func (l Layouts) Clone() Layouts {
	if l == nil {
		return nil
	}
	out := make(Layouts, len(l))
	for bp, entries := range l {
		out[bp] = append([]LayoutEntry(nil), entries...)
	}
	return out
}

// MaxY is the lowest occupied row boundary on a breakpoint.
func (l Layouts) MaxY(bp Breakpoint) int {
	return maxBottom(l[bp])
}

// Serialize is the canonical encoding used for persistence and change detection.
// encoding/json sorts map keys, so equal layouts always encode to equal bytes.
func (l Layouts) Serialize() (string, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LayoutDocument is the persisted unit: positions for every widget, hidden or not.
type LayoutDocument struct {
	Layouts Layouts  `json:"layouts"`
	Hidden  []string `json:"hidden,omitempty"`
}

func (d LayoutDocument) Clone() LayoutDocument {
	return LayoutDocument{
		Layouts: d.Layouts.Clone(),
		Hidden:  append([]string(nil), d.Hidden...),
	}
}

func (d LayoutDocument) IsHidden(widgetID string) bool {
	for _, id := range d.Hidden {
		if id == widgetID {
			return true
		}
	}
	return false
}

// Visible filters hidden widgets out of every breakpoint.
func (d LayoutDocument) Visible() Layouts {
	out := make(Layouts, len(d.Layouts))
	for bp, entries := range d.Layouts {
		visible := make([]LayoutEntry, 0, len(entries))
		for _, e := range entries {
			if !d.IsHidden(e.WidgetID) {
				visible = append(visible, e)
			}
		}
		out[bp] = visible
	}
	return out
}

func (d LayoutDocument) Encode() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func DecodeDocument(raw string) (LayoutDocument, error) {
	var doc LayoutDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return LayoutDocument{}, err
	}
	return doc, nil
}

func maxBottom(entries []LayoutEntry) int {
	maxY := 0
	for _, e := range entries {
		if b := e.Bottom(); b > maxY {
			maxY = b
		}
	}
	return maxY
}

// normalizeHidden dedups and sorts, keeping only ids accepted by keep.
func normalizeHidden(ids []string, keep func(string) bool) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] || !keep(id) {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
