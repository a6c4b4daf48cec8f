package memdom

import "github.com/dshills/touchemu/internal/dom"

// Widget is a plain widget.
type Widget struct {
	kind       string
	appearance string
	parent     dom.Widget
	control    bool
}

// NewWidget creates a widget of the given kind under parent (may be nil).
func NewWidget(kind string, parent dom.Widget) *Widget {
	return &Widget{kind: kind, parent: parent}
}

// Kind implements dom.Widget.
func (w *Widget) Kind() string { return w.kind }

// Appearance implements dom.Widget.
func (w *Widget) Appearance() string { return w.appearance }

// SetAppearance changes the appearance identifier.
func (w *Widget) SetAppearance(a string) *Widget {
	w.appearance = a
	return w
}

// Parent implements dom.Widget.
func (w *Widget) Parent() dom.Widget { return w.parent }

// IsControl reports whether the widget is a control.
func (w *Widget) IsControl() bool { return w.control }

// SetControl marks the widget as a control.
func (w *Widget) SetControl(v bool) *Widget {
	w.control = v
	return w
}

// RootWidget is the document root.
type RootWidget struct {
	*Widget
}

// IsDocumentRoot implements dom.Root.
func (r *RootWidget) IsDocumentRoot() bool { return true }

// ScrollPane is a widget owning a vertical and a horizontal scroll bar.
type ScrollPane struct {
	*Widget
	V *ScrollBar
	H *ScrollBar
}

// NewScrollPane creates a scrollable control.
func NewScrollPane(kind string, parent dom.Widget, v, h *ScrollBar) *ScrollPane {
	return &ScrollPane{Widget: NewWidget(kind, parent).SetControl(true), V: v, H: h}
}

// VerticalScrollBar implements dom.Scrollable.
func (s *ScrollPane) VerticalScrollBar() dom.ScrollBar {
	if s.V == nil {
		return nil
	}
	return s.V
}

// HorizontalScrollBar implements dom.Scrollable.
func (s *ScrollPane) HorizontalScrollBar() dom.ScrollBar {
	if s.H == nil {
		return nil
	}
	return s.H
}

// Row is a realized row of a windowed list.
type Row struct {
	*Widget
	owner dom.Scrollable
}

// NewRow creates a row of owner. The row's parent is the owner's row
// container, which is the owner itself unless container is given.
func NewRow(kind string, owner dom.Scrollable, container dom.Widget) *Row {
	if container == nil {
		container = owner
	}
	return &Row{Widget: NewWidget(kind, container), owner: owner}
}

// Owner implements dom.VirtualRow.
func (r *Row) Owner() dom.Scrollable { return r.owner }

// TextField is a focusable text input.
type TextField struct {
	*Widget
}

// NewTextField creates a text input control.
func NewTextField(kind string, parent dom.Widget) *TextField {
	return &TextField{Widget: NewWidget(kind, parent).SetControl(true)}
}

// AcceptsTextInput implements dom.TextInput.
func (t *TextField) AcceptsTextInput() bool { return true }

// ScrollBar is a scroll bar that remembers the last requested ("ideal")
// value. Relayout re-applies the ideal value against the current range,
// the way toolkit scroll bars do after a resize.
type ScrollBar struct {
	value   int
	ideal   int
	max     int
	thumb   int
	changes int
}

// NewScrollBar creates a scroll bar with the given maximum and thumb length.
func NewScrollBar(max, thumb int) *ScrollBar {
	return &ScrollBar{max: max, thumb: thumb}
}

// Value implements dom.ScrollBar.
func (b *ScrollBar) Value() int { return b.value }

// Maximum implements dom.ScrollBar.
func (b *ScrollBar) Maximum() int { return b.max }

// ThumbLength implements dom.ScrollBar.
func (b *ScrollBar) ThumbLength() int { return b.thumb }

// Ideal returns the last requested value before clamping.
func (b *ScrollBar) Ideal() int { return b.ideal }

// Changes returns how many times SetValue changed the value.
func (b *ScrollBar) Changes() int { return b.changes }

// SetValue implements dom.ScrollBar. Out-of-range values are clamped.
func (b *ScrollBar) SetValue(v int) {
	b.ideal = v
	b.apply(v)
}

// Resize changes the range and re-applies the ideal value.
func (b *ScrollBar) Resize(max, thumb int) {
	b.max = max
	b.thumb = thumb
	b.apply(b.ideal)
}

func (b *ScrollBar) apply(v int) {
	limit := b.max - b.thumb
	if v > limit {
		v = limit
	}
	if v < 0 {
		v = 0
	}
	if v != b.value {
		b.value = v
		b.changes++
	}
}
