// Package dom defines the widget tree, element and scroll bar contracts the
// touch emulation engine consumes, together with the native and synthesized
// input event types that flow through it.
//
// The engine never owns any of these objects. A host toolkit (or the
// in-memory implementation in package memdom) provides them.
package dom

// Element is a node events are dispatched against.
type Element interface {
	// TagName returns the upper-case tag of the element (e.g. "DIV", "INPUT").
	TagName() string

	// DispatchEvent delivers a synthesized mouse event to the element.
	DispatchEvent(ev *MouseEvent)
}

// Widget is the logical widget an element belongs to.
type Widget interface {
	// Kind identifies the widget class (e.g. "org.eclipse.swt.widgets.Shell").
	Kind() string

	// Appearance returns the current appearance identifier.
	Appearance() string

	// Parent returns the parent widget, or nil at the top of the tree.
	Parent() Widget
}

// ScrollBar is a scroll bar the engine reads and drives.
// SetValue is responsible for clamping out-of-range values.
type ScrollBar interface {
	Value() int
	SetValue(v int)
	Maximum() int
	ThumbLength() int
}

// Scrollable is implemented by widgets that own scroll bars.
type Scrollable interface {
	Widget
	VerticalScrollBar() ScrollBar
	HorizontalScrollBar() ScrollBar
}

// VirtualRow is implemented by realized rows of a windowed list or tree.
type VirtualRow interface {
	Widget
	// Owner returns the windowed list the row belongs to.
	Owner() Scrollable
}

// TextInput is implemented by focusable text-input-like widgets.
type TextInput interface {
	Widget
	AcceptsTextInput() bool
}

// Root marks the document root. Ancestor walks stop there.
type Root interface {
	Widget
	IsDocumentRoot() bool
}

// Document resolves widgets for elements and exposes global input state.
type Document interface {
	// WidgetOf returns the widget owning el, or nil.
	WidgetOf(el Element) Widget

	// ControlOf returns the nearest enclosing control of w, or nil.
	ControlOf(w Widget) Widget

	// NeutralTarget returns an element that can receive a release without
	// side effects.
	NeutralTarget() Element

	// Suspended reports whether external code holds exclusive control of
	// the input pipeline.
	Suspended() bool
}

// Surface is an input surface the engine attaches to.
type Surface interface {
	SetTouchHandler(fn func(*TouchEvent))
	SetGestureHandler(fn func(*GestureEvent))
	SetOrientationHandler(fn func(*OrientationEvent))
	SetMouseEventFilter(fn func(*MouseEvent) bool)
}

// Alerter is the blocking user-visible channel used for fatal handler errors.
type Alerter interface {
	Alert(msg string)
}

// AlerterFunc adapts a function to Alerter.
type AlerterFunc func(msg string)

// Alert calls f(msg).
func (f AlerterFunc) Alert(msg string) { f(msg) }

// IsRoot reports whether w marks the document root.
func IsRoot(w Widget) bool {
	r, ok := w.(Root)
	return ok && r.IsDocumentRoot()
}

// FindScrollable walks parent links from w (inclusive) and returns the
// nearest Scrollable, stopping at the document root.
func FindScrollable(w Widget) Scrollable {
	for cur := w; cur != nil; cur = cur.Parent() {
		if s, ok := cur.(Scrollable); ok {
			return s
		}
		if IsRoot(cur) {
			return nil
		}
	}
	return nil
}

// ScrollRange returns the largest value bar can take.
func ScrollRange(bar ScrollBar) int {
	return bar.Maximum() - bar.ThumbLength()
}
