package layout

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func reportIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = CustomReportWidgetID(fmt.Sprintf("r%d", i))
	}
	return ids
}

func overlapFree(l Layouts) bool {
	for _, entries := range l {
		for i := range entries {
			for j := i + 1; j < len(entries); j++ {
				if entries[i].Overlaps(entries[j]) {
					return false
				}
			}
		}
	}
	return true
}

// For any custom widget set, reconciling the default layout is a no-op.
func TestProperty_DefaultIsReconcileFixedPoint(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Reconcile(Default(S), S) leaves the document unchanged", prop.ForAll(
		func(n int) bool {
			ids := reportIDs(n)
			_, changed := Reconcile(DefaultDocument(ids), ids)
			return !changed
		},
		gen.IntRange(0, 40),
	))

	properties.Property("default layouts never overlap", prop.ForAll(
		func(n int) bool {
			return overlapFree(DefaultLayouts(reportIDs(n)))
		},
		gen.IntRange(0, 40),
	))

	properties.TestingRun(t)
}

// Growing or shrinking the widget set keeps layouts overlap free and leaves surviving
// widgets where they were.
func TestProperty_ReconcileKeepsSurvivors(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("reconciliation is overlap free and stable for survivors", prop.ForAll(
		func(from, to int) bool {
			before := DefaultDocument(reportIDs(from))
			after, _ := Reconcile(before, reportIDs(to))
			if !overlapFree(after.Layouts) {
				return false
			}
			for _, bp := range Breakpoints {
				for _, e := range before.Layouts[bp] {
					got, ok := entryByID(after.Layouts[bp], e.WidgetID)
					survives := IsStandardWidget(e.WidgetID) || indexOf(reportIDs(to), e.WidgetID) >= 0
					if survives && (!ok || got != e) {
						return false
					}
					if !survives && ok {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(0, 20),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}

// Hidden widget entries are untouched by any sequence of gestures.
func TestProperty_HiddenEntriesPreserved(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("gesture completions never move hidden widgets", prop.ForAll(
		func(ys []int) bool {
			ctx := context.Background()
			e := NewEngine(ctx, NewLayoutStore(newRecordingStore(), testKey), []CustomWidget{{ID: "report-r0"}}, nil, nil)
			if err := e.Hide(ctx, "incident-trends"); err != nil {
				return false
			}
			before := e.Document()

			for i, y := range ys {
				if i%2 == 0 {
					e.DragStart()
				} else {
					e.ResizeStart()
				}
				e.LayoutChange(ctx, moved(e, "report-r0", 0, y))
				e.DragStop(ctx, nil)
			}

			after := e.Document()
			for _, bp := range Breakpoints {
				want, _ := entryByID(before.Layouts[bp], "incident-trends")
				got, ok := entryByID(after.Layouts[bp], "incident-trends")
				if !ok || got != want {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 60)),
	))

	properties.TestingRun(t)
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
