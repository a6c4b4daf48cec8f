package touch

import "github.com/dshills/touchemu/internal/dom"

// classifier decides the mode of a new session.
type classifier struct {
	doc      dom.Document
	registry *DraggableRegistry
}

// classify returns the session mode for widget w (may be nil). The order of
// the checks is the precedence of the modes.
func (c *classifier) classify(w dom.Widget, nativeScroll bool) Mode {
	if w == nil {
		return ClickMode{}
	}
	if c.isDraggable(w) {
		return DragMode{}
	}
	if row, ok := w.(dom.VirtualRow); ok {
		return &VirtualScrollMode{
			Outer: nativeScroll && enclosingScrollable(row) != nil,
		}
	}
	if nativeScroll && dom.FindScrollable(w) != nil {
		return ScrollMode{}
	}
	if t, ok := w.(dom.TextInput); ok && t.AcceptsTextInput() {
		return FocusMode{}
	}
	return ClickMode{}
}

// isDraggable looks up the kind of the nearest control (w itself when there
// is none) and the appearance of w.
func (c *classifier) isDraggable(w dom.Widget) bool {
	control := c.doc.ControlOf(w)
	if control == nil {
		control = w
	}
	return c.registry.Matches(control.Kind(), w.Appearance())
}

// windowedList returns the scrollable whose bars a virtual scroll drives.
func windowedList(w dom.Widget) dom.Scrollable {
	if row, ok := w.(dom.VirtualRow); ok {
		if owner := row.Owner(); owner != nil {
			return owner
		}
	}
	return dom.FindScrollable(w)
}

// enclosingScrollable returns the nearest scrollable strictly above the
// windowed list w belongs to.
func enclosingScrollable(w dom.Widget) dom.Scrollable {
	list := windowedList(w)
	if list == nil || dom.IsRoot(list) {
		return nil
	}
	parent := list.Parent()
	if parent == nil {
		return nil
	}
	return dom.FindScrollable(parent)
}
