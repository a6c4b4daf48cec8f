// Package memdom is an in-memory implementation of the dom contracts.
//
// It backs the playground, the remote bridge, trace replay and the tests:
// elements form a tree with absolute bounds for hit testing, widgets are
// bound to elements, synthesized and native mouse events bubble through
// element listeners and are recorded in dispatch order.
package memdom

import (
	"fmt"
	"strings"

	"github.com/dshills/touchemu/internal/dom"
)

// RootKind is the widget kind of the document root.
const RootKind = "qx.ui.core.ClientDocument"

// Rect is an axis-aligned rectangle in client coordinates.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

// Record is one delivered mouse event.
type Record struct {
	Type        dom.MouseType
	Target      *Element
	X, Y        int
	Synthesized bool
}

// String formats the record as "type target (x,y)".
func (r Record) String() string {
	return fmt.Sprintf("%s %s (%d,%d)", r.Type, r.Target, r.X, r.Y)
}

// Document is an in-memory document and input surface.
type Document struct {
	root    *RootWidget
	body    *Element
	widgets map[*Element]dom.Widget

	suspended bool

	touchHandler       func(*dom.TouchEvent)
	gestureHandler     func(*dom.GestureEvent)
	orientationHandler func(*dom.OrientationEvent)
	mouseFilter        func(*dom.MouseEvent) bool

	records   []Record
	observers []func(Record)
}

// New creates a document with a root widget bound to a BODY element
// covering the given size.
func New(width, height int) *Document {
	d := &Document{widgets: make(map[*Element]dom.Widget)}
	d.root = &RootWidget{Widget: NewWidget(RootKind, nil)}
	d.body = d.CreateElement("BODY", "body", Rect{W: width, H: height})
	d.Bind(d.body, d.root)
	return d
}

// Root returns the document root widget.
func (d *Document) Root() *RootWidget { return d.root }

// Body returns the BODY element.
func (d *Document) Body() *Element { return d.body }

// CreateElement creates a detached element owned by d.
func (d *Document) CreateElement(tag, id string, bounds Rect) *Element {
	return &Element{doc: d, tag: tag, id: id, bounds: bounds}
}

// Bind associates el with widget w.
func (d *Document) Bind(el *Element, w dom.Widget) {
	d.widgets[el] = w
}

// SetSuspended toggles the global suspended flag.
func (d *Document) SetSuspended(v bool) { d.suspended = v }

// HitTest returns the deepest element containing (x, y). Later siblings are
// on top. Points outside the body resolve to the body.
func (d *Document) HitTest(x, y int) *Element {
	hit := d.body
	for {
		var next *Element
		for i := len(hit.children) - 1; i >= 0; i-- {
			if hit.children[i].bounds.Contains(x, y) {
				next = hit.children[i]
				break
			}
		}
		if next == nil {
			return hit
		}
		hit = next
	}
}

// Find returns the element with the given id, or nil.
func (d *Document) Find(id string) *Element {
	var walk func(e *Element) *Element
	walk = func(e *Element) *Element {
		if e.id == id {
			return e
		}
		for _, c := range e.children {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(d.body)
}

// Walk visits every element depth first, parents before children.
func (d *Document) Walk(fn func(e *Element, depth int)) {
	var walk func(e *Element, depth int)
	walk = func(e *Element, depth int) {
		fn(e, depth)
		for _, c := range e.children {
			walk(c, depth+1)
		}
	}
	walk(d.body, 0)
}

// WidgetOf returns the widget bound to el or to its nearest bound ancestor.
func (d *Document) WidgetOf(el dom.Element) dom.Widget {
	e, ok := el.(*Element)
	if !ok {
		return nil
	}
	for ; e != nil; e = e.parent {
		if w, ok := d.widgets[e]; ok {
			return w
		}
	}
	return nil
}

// ControlOf returns the nearest ancestor-or-self marked as a control.
func (d *Document) ControlOf(w dom.Widget) dom.Widget {
	for cur := w; cur != nil; cur = cur.Parent() {
		if c, ok := cur.(interface{ IsControl() bool }); ok && c.IsControl() {
			return cur
		}
		if dom.IsRoot(cur) {
			return nil
		}
	}
	return nil
}

// NeutralTarget returns the body.
func (d *Document) NeutralTarget() dom.Element { return d.body }

// Suspended reports the global suspended flag.
func (d *Document) Suspended() bool { return d.suspended }

// SetTouchHandler implements dom.Surface.
func (d *Document) SetTouchHandler(fn func(*dom.TouchEvent)) { d.touchHandler = fn }

// SetGestureHandler implements dom.Surface.
func (d *Document) SetGestureHandler(fn func(*dom.GestureEvent)) { d.gestureHandler = fn }

// SetOrientationHandler implements dom.Surface.
func (d *Document) SetOrientationHandler(fn func(*dom.OrientationEvent)) {
	d.orientationHandler = fn
}

// SetMouseEventFilter implements dom.Surface.
func (d *Document) SetMouseEventFilter(fn func(*dom.MouseEvent) bool) { d.mouseFilter = fn }

// Attached reports whether a touch handler is installed.
func (d *Document) Attached() bool { return d.touchHandler != nil }

// DispatchTouch delivers a native touch event to the installed handler.
func (d *Document) DispatchTouch(ev *dom.TouchEvent) {
	if d.touchHandler != nil {
		d.touchHandler(ev)
	}
}

// DispatchGesture delivers a native gesture event to the installed handler.
func (d *Document) DispatchGesture(ev *dom.GestureEvent) {
	if d.gestureHandler != nil {
		d.gestureHandler(ev)
	}
}

// DispatchOrientation delivers an orientation change to the installed handler.
func (d *Document) DispatchOrientation(ev *dom.OrientationEvent) {
	if d.orientationHandler != nil {
		d.orientationHandler(ev)
	}
}

// DispatchNativeMouse runs a genuine mouse event through the installed
// filter and delivers it when allowed. It reports whether it was delivered.
func (d *Document) DispatchNativeMouse(ev *dom.MouseEvent) bool {
	if d.mouseFilter != nil && !d.mouseFilter(ev) {
		return false
	}
	if el, ok := ev.Target.(*Element); ok {
		d.deliver(el, ev)
		return true
	}
	return false
}

// Observe registers fn to be called for every delivered mouse event.
func (d *Document) Observe(fn func(Record)) {
	d.observers = append(d.observers, fn)
}

// Records returns the delivered mouse events in order.
func (d *Document) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// ResetRecords clears the recorded events.
func (d *Document) ResetRecords() { d.records = d.records[:0] }

func (d *Document) deliver(target *Element, ev *dom.MouseEvent) {
	rec := Record{
		Type:        ev.Type,
		Target:      target,
		X:           ev.ClientX,
		Y:           ev.ClientY,
		Synthesized: ev.Synthesized(),
	}
	d.records = append(d.records, rec)
	for _, fn := range d.observers {
		fn(rec)
	}
	for cur := target; cur != nil; cur = cur.parent {
		for _, fn := range cur.listeners[ev.Type] {
			fn(ev)
		}
		if !ev.Bubbles {
			return
		}
	}
}

// Element is an in-memory element.
type Element struct {
	doc      *Document
	tag      string
	id       string
	bounds   Rect
	parent   *Element
	children []*Element

	listeners map[dom.MouseType][]func(*dom.MouseEvent)
}

// TagName implements dom.Element.
func (e *Element) TagName() string { return e.tag }

// ID returns the element id.
func (e *Element) ID() string { return e.id }

// Bounds returns the element bounds.
func (e *Element) Bounds() Rect { return e.bounds }

// SetBounds moves or resizes e. Children keep their own bounds.
func (e *Element) SetBounds(r Rect) { e.bounds = r }

// Parent returns the parent element.
func (e *Element) Parent() *Element { return e.parent }

// Children returns the child elements.
func (e *Element) Children() []*Element { return e.children }

// String formats the element as "tag#id" in lower case tag form.
func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s#%s", strings.ToLower(e.tag), e.id)
}

// Append adds child under e and returns child.
func (e *Element) Append(child *Element) *Element {
	child.parent = e
	e.children = append(e.children, child)
	return child
}

// AddListener registers fn for events of type t reaching e.
func (e *Element) AddListener(t dom.MouseType, fn func(*dom.MouseEvent)) {
	if e.listeners == nil {
		e.listeners = make(map[dom.MouseType][]func(*dom.MouseEvent))
	}
	e.listeners[t] = append(e.listeners[t], fn)
}

// DispatchEvent implements dom.Element.
func (e *Element) DispatchEvent(ev *dom.MouseEvent) {
	e.doc.deliver(e, ev)
}
