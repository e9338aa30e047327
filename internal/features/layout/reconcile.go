package layout

// Reconcile brings a document in line with the current widget set: standard widgets plus
// the given custom report widgets. Entries of widgets that are no longer present are
// dropped, malformed entries are discarded, and missing widgets are appended below the
// current content of each breakpoint. Entries of widgets that stay are not moved.
// The second result reports whether the document changed.
func Reconcile(doc LayoutDocument, customIDs []string) (LayoutDocument, bool) {
	customIDs = normalizeCustomIDs(customIDs)

	required := make(map[string]bool, len(standardWidgets)+len(customIDs))
	for _, w := range standardWidgets {
		required[w.ID] = true
	}
	for _, id := range customIDs {
		required[id] = true
	}

	next := LayoutDocument{
		Layouts: make(Layouts, len(Breakpoints)),
		Hidden:  normalizeHidden(doc.Hidden, func(id string) bool { return required[id] }),
	}

	for _, bp := range Breakpoints {
		next.Layouts[bp] = reconcileBreakpoint(bp, doc.Layouts[bp], required, customIDs)
	}

	before, errBefore := doc.Encode()
	after, errAfter := next.Encode()
	changed := errBefore != nil || errAfter != nil || before != after
	if !changed {
		return doc, false
	}
	return next, true
}

func reconcileBreakpoint(bp Breakpoint, current []LayoutEntry, required map[string]bool, customIDs []string) []LayoutEntry {
	cols := bp.Columns()
	present := make(map[string]bool, len(current))
	kept := make([]LayoutEntry, 0, len(current)+len(customIDs))
	for _, e := range current {
		if !required[e.WidgetID] || present[e.WidgetID] || !e.fits(cols) {
			continue
		}
		present[e.WidgetID] = true
		kept = append(kept, e)
	}

	if len(kept) == 0 {
		return DefaultLayouts(customIDs)[bp]
	}

	y := maxBottom(kept)

	// Missing standard widgets get their own row at catalog size.
	for _, w := range standardWidgets {
		if present[w.ID] {
			continue
		}
		pos, _ := standardPosition(bp, w.ID)
		pos.X = 0
		pos.Y = y
		pos.Width = min(pos.Width, cols)
		kept = append(kept, pos)
		y += pos.Height
	}

	var missing []string
	for _, id := range customIDs {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return append(kept, packCustom(bp, missing, y)...)
}
