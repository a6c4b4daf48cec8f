// Package scene builds the demo document driven by the terminal playground,
// the websocket bridge and trace replay.
//
// The scene is laid out on an 80x24 grid so one unit is one terminal cell:
//
//	ok, cancel   buttons (click)
//	name         INPUT text field (focus)
//	window       Shell (drag), sash below it (drag)
//	outer        ScrolledComposite (native scroll)
//	├── list     Grid with realized rows (virtual scroll)
//	├── scale    Scale with a draggable thumb
//	└── info     plain panel (native scroll)
//
// Scene also plays the part of the browser: it applies the native default
// of touch events the engine did not prevent (scrolling the outer pane,
// focusing text inputs) and moves dragged widgets on synthesized mouse
// events.
package scene

import (
	"fmt"

	"github.com/dshills/touchemu/internal/dom"
	"github.com/dshills/touchemu/internal/dom/memdom"
	"github.com/dshills/touchemu/internal/touch"
)

// Scene dimensions.
const (
	Width  = 80
	Height = 24

	// RowCount is the number of items in the windowed list.
	RowCount = 100
)

// Widget kinds used by the scene.
const (
	KindButton    = "org.eclipse.swt.widgets.Button"
	KindText      = "org.eclipse.swt.widgets.Text"
	KindShell     = "org.eclipse.swt.widgets.Shell"
	KindSash      = "org.eclipse.swt.widgets.Sash"
	KindScrolled  = "org.eclipse.swt.custom.ScrolledComposite"
	KindGrid      = "org.eclipse.rwt.widgets.Grid"
	KindGridRow   = "org.eclipse.rwt.widgets.GridRow"
	KindScale     = "org.eclipse.swt.widgets.Scale"
	KindComposite = "org.eclipse.swt.widgets.Composite"
	KindLabel     = "org.eclipse.swt.widgets.Label"
)

// Role classifies an item for drawing.
type Role uint8

const (
	RoleButton Role = iota
	RoleInput
	RoleShell
	RoleSash
	RolePane
	RoleList
	RoleRow
	RoleTrack
	RoleThumb
	RolePanel
)

var roleColors = [...]string{
	RoleButton: "#3a6ea5",
	RoleInput:  "#e8e8e8",
	RoleShell:  "#5c4d7d",
	RoleSash:   "#9a9a9a",
	RolePane:   "#1f2a33",
	RoleList:   "#26323d",
	RoleRow:    "#2f3e4b",
	RoleTrack:  "#44505c",
	RoleThumb:  "#d08c2b",
	RolePanel:  "#33443a",
}

// Color returns the display color of r as "#rrggbb".
func (r Role) Color() string {
	if int(r) < len(roleColors) {
		return roleColors[r]
	}
	return "#808080"
}

// Item is one element of the scene.
type Item struct {
	ID     string
	Role   Role
	El     *memdom.Element
	Widget dom.Widget

	label string
}

// Scene is the demo document with its simulated browser.
type Scene struct {
	Doc     *memdom.Document
	ToolTip *memdom.ToolTip
	Finger  *memdom.Finger

	ListV  *memdom.ScrollBar
	ListH  *memdom.ScrollBar
	OuterV *memdom.ScrollBar

	items []*Item
	byID  map[string]*Item
	rows  []*Item

	focused *Item
	clicks  map[string]int
	drag    *dragState

	// lastY is the finger position the native scroll default last saw.
	lastY int
}

// New builds the scene.
func New() *Scene {
	s := &Scene{
		Doc:     memdom.New(Width, Height),
		ToolTip: &memdom.ToolTip{},
		ListV:   memdom.NewScrollBar(RowCount, 12),
		ListH:   memdom.NewScrollBar(60, 40),
		OuterV:  memdom.NewScrollBar(45, 15),
		byID:    make(map[string]*Item),
		clicks:  make(map[string]int),
	}
	s.Finger = s.Doc.Finger(0)
	root := s.Doc.Root()
	body := s.Doc.Body()

	s.add(body, RoleButton, "DIV", "ok", "OK", memdom.Rect{X: 2, Y: 1, W: 10, H: 3},
		memdom.NewWidget(KindButton, root).SetControl(true))
	s.add(body, RoleButton, "DIV", "cancel", "Cancel", memdom.Rect{X: 14, Y: 1, W: 10, H: 3},
		memdom.NewWidget(KindButton, root).SetControl(true))
	s.add(body, RoleInput, "INPUT", "name", "Name", memdom.Rect{X: 26, Y: 1, W: 20, H: 3},
		memdom.NewTextField(KindText, root))
	s.add(body, RoleShell, "DIV", "window", "Shell", memdom.Rect{X: 48, Y: 1, W: 30, H: 5},
		memdom.NewWidget(KindShell, root).SetControl(true))
	s.add(body, RoleSash, "DIV", "sash", "", memdom.Rect{X: 48, Y: 7, W: 30, H: 1},
		memdom.NewWidget(KindSash, root).SetControl(true))

	outer := memdom.NewScrollPane(KindScrolled, root, s.OuterV, nil)
	outerEl := s.add(body, RolePane, "DIV", "outer", "", memdom.Rect{X: 0, Y: 9, W: Width, H: 15}, outer).El

	list := memdom.NewScrollPane(KindGrid, outer, s.ListV, s.ListH)
	listEl := s.add(outerEl, RoleList, "DIV", "list", "", memdom.Rect{X: 2, Y: 10, W: 40, H: 12}, list).El
	for i := 0; i < s.ListV.ThumbLength(); i++ {
		row := memdom.NewRow(KindGridRow, list, nil)
		row.SetAppearance("tree-row")
		it := s.add(listEl, RoleRow, "DIV", fmt.Sprintf("row%d", i), "",
			memdom.Rect{X: 2, Y: 10 + i, W: 40, H: 1}, row)
		s.rows = append(s.rows, it)
	}

	scale := memdom.NewWidget(KindScale, outer).SetControl(true)
	scaleEl := s.add(outerEl, RoleTrack, "DIV", "scale", "", memdom.Rect{X: 46, Y: 11, W: 30, H: 3}, scale).El
	s.add(scaleEl, RoleThumb, "DIV", "thumb", "", memdom.Rect{X: 46, Y: 11, W: 4, H: 3},
		memdom.NewWidget(KindLabel, scale).SetAppearance("scale-thumb"))

	s.add(outerEl, RolePanel, "DIV", "info", "Panel", memdom.Rect{X: 46, Y: 16, W: 30, H: 6},
		memdom.NewWidget(KindComposite, outer))

	body.AddListener(dom.Click, s.onClick)
	body.AddListener(dom.MouseDown, s.onMouseDown)
	body.AddListener(dom.MouseMove, s.onMouseMove)
	body.AddListener(dom.MouseUp, s.onMouseUp)
	return s
}

func (s *Scene) add(parent *memdom.Element, role Role, tag, id, label string, r memdom.Rect, w dom.Widget) *Item {
	el := parent.Append(s.Doc.CreateElement(tag, id, r))
	s.Doc.Bind(el, w)
	it := &Item{ID: id, Role: role, El: el, Widget: w, label: label}
	s.items = append(s.items, it)
	s.byID[id] = it
	return it
}

// Attach creates an engine for the scene and attaches it to the document.
// The scene tooltip is coupled to the engine.
func (s *Scene) Attach(cfg touch.Config, opts ...touch.Option) (*touch.Engine, error) {
	opts = append([]touch.Option{touch.WithToolTip(s.ToolTip)}, opts...)
	e := touch.New(s.Doc, cfg, opts...)
	if err := e.Attach(s.Doc); err != nil {
		return nil, err
	}
	return e, nil
}

// Items returns the items in drawing order, parents first.
func (s *Scene) Items() []*Item { return s.items }

// Item returns the item with the given id, or nil.
func (s *Scene) Item(id string) *Item { return s.byID[id] }

// ItemAt returns the item under (x, y), or nil for the bare body.
func (s *Scene) ItemAt(x, y int) *Item {
	return s.itemOf(s.Doc.HitTest(x, y))
}

func (s *Scene) itemOf(el dom.Element) *Item {
	e, ok := el.(*memdom.Element)
	if !ok || e == nil {
		return nil
	}
	return s.byID[e.ID()]
}

// Label returns the text shown for it. Row labels follow the list scroll
// position.
func (s *Scene) Label(it *Item) string {
	switch it.Role {
	case RoleRow:
		for i, r := range s.rows {
			if r == it {
				return fmt.Sprintf("Item %02d", s.ListV.Value()+i)
			}
		}
	case RoleShell:
		b := it.El.Bounds()
		return fmt.Sprintf("%s @%d,%d", it.label, b.X, b.Y)
	case RoleButton:
		if n := s.clicks[it.ID]; n > 0 {
			return fmt.Sprintf("%s (%d)", it.label, n)
		}
	}
	return it.label
}

// Clicks returns how many click events reached the item with the given id.
func (s *Scene) Clicks(id string) int { return s.clicks[id] }

// Focused returns the focused text input, or nil.
func (s *Scene) Focused() *Item { return s.focused }

// ScaleValue returns the scale thumb position from 0 to the track length.
func (s *Scene) ScaleValue() int {
	return s.byID["thumb"].El.Bounds().X - s.byID["scale"].El.Bounds().X
}

// Down touches the scene at (x, y).
func (s *Scene) Down(x, y int) *dom.TouchEvent {
	ev := s.Finger.Down(x, y)
	s.lastY = y
	if ev != nil && !ev.DefaultPrevented() {
		if it := s.itemOf(ev.Target); it != nil && it.Role == RoleInput {
			s.focused = it
		}
	}
	return ev
}

// Move drags the finger to (x, y).
func (s *Scene) Move(x, y int) *dom.TouchEvent {
	ev := s.Finger.Move(x, y)
	if ev != nil && !ev.DefaultPrevented() {
		s.nativeScroll(y)
	}
	s.lastY = y
	return ev
}

// Up lifts the finger at (x, y).
func (s *Scene) Up(x, y int) *dom.TouchEvent {
	return s.Finger.Up(x, y)
}

// Cancel aborts the touch.
func (s *Scene) Cancel() *dom.TouchEvent {
	return s.Finger.Cancel()
}

// Tap touches and releases at (x, y).
func (s *Scene) Tap(x, y int) {
	s.Down(x, y)
	s.Up(x, y)
}

// Gesture dispatches a gesture at (x, y).
func (s *Scene) Gesture(t dom.GestureType, x, y int, scale, rotation float64) *dom.GestureEvent {
	return s.Doc.Gesture(t, x, y, scale, rotation)
}

// nativeScroll scrolls the outer pane the way a browser would when a move
// inside it is not prevented.
func (s *Scene) nativeScroll(y int) {
	target, ok := s.Finger.Target(), s.Finger.IsDown()
	if !ok || target == nil || !s.inside(target, s.byID["outer"].El) {
		return
	}
	s.OuterV.SetValue(s.OuterV.Value() + s.lastY - y)
}

func (s *Scene) inside(el, ancestor *memdom.Element) bool {
	for cur := el; cur != nil; cur = cur.Parent() {
		if cur == ancestor {
			return true
		}
	}
	return false
}
