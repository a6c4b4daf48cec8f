package memdom

import (
	"testing"

	"github.com/dshills/touchemu/internal/dom"
)

func TestHitTest(t *testing.T) {
	d := New(100, 100)
	panel := d.Body().Append(d.CreateElement("DIV", "panel", Rect{X: 10, Y: 10, W: 50, H: 50}))
	button := panel.Append(d.CreateElement("DIV", "button", Rect{X: 20, Y: 20, W: 10, H: 10}))
	overlay := d.Body().Append(d.CreateElement("DIV", "overlay", Rect{X: 50, Y: 50, W: 20, H: 20}))

	tests := []struct {
		x, y int
		want *Element
	}{
		{0, 0, d.Body()},
		{15, 15, panel},
		{25, 25, button},
		{55, 55, overlay},
		{500, 500, d.Body()},
	}
	for _, tt := range tests {
		if got := d.HitTest(tt.x, tt.y); got != tt.want {
			t.Errorf("HitTest(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestWidgetOfWalksUp(t *testing.T) {
	d := New(100, 100)
	pane := d.Body().Append(d.CreateElement("DIV", "pane", Rect{W: 50, H: 50}))
	label := pane.Append(d.CreateElement("SPAN", "label", Rect{W: 10, H: 10}))
	w := NewWidget("pane", d.Root())
	d.Bind(pane, w)

	if got := d.WidgetOf(label); got != w {
		t.Errorf("WidgetOf(label) = %v, want pane widget", got)
	}
	if got := d.WidgetOf(d.Body()); got != d.Root() {
		t.Errorf("WidgetOf(body) = %v, want root", got)
	}
}

func TestControlOf(t *testing.T) {
	d := New(100, 100)
	control := NewWidget("control", d.Root()).SetControl(true)
	inner := NewWidget("inner", control)
	orphan := NewWidget("orphan", d.Root())

	if got := d.ControlOf(inner); got != control {
		t.Errorf("ControlOf(inner) = %v, want control", got)
	}
	if got := d.ControlOf(control); got != control {
		t.Errorf("ControlOf(control) = %v, want control", got)
	}
	if got := d.ControlOf(orphan); got != nil {
		t.Errorf("ControlOf(orphan) = %v, want nil", got)
	}
}

func TestDeliverBubbles(t *testing.T) {
	d := New(100, 100)
	panel := d.Body().Append(d.CreateElement("DIV", "panel", Rect{W: 50, H: 50}))
	button := panel.Append(d.CreateElement("DIV", "button", Rect{W: 10, H: 10}))

	var seen []string
	panel.AddListener(dom.Click, func(ev *dom.MouseEvent) { seen = append(seen, "panel") })
	d.Body().AddListener(dom.Click, func(ev *dom.MouseEvent) { seen = append(seen, "body") })

	button.DispatchEvent(&dom.MouseEvent{Type: dom.Click, Target: button, Bubbles: true})
	if len(seen) != 2 || seen[0] != "panel" || seen[1] != "body" {
		t.Errorf("bubbling order = %v, want [panel body]", seen)
	}

	seen = nil
	button.DispatchEvent(&dom.MouseEvent{Type: dom.Click, Target: button})
	if len(seen) != 0 {
		t.Errorf("non-bubbling event reached %v", seen)
	}

	recs := d.Records()
	if len(recs) != 2 {
		t.Fatalf("Records() len = %d, want 2", len(recs))
	}
	if recs[0].String() != "click div#button (0,0)" {
		t.Errorf("Record.String() = %q", recs[0].String())
	}
}

func TestDispatchNativeMouseFilter(t *testing.T) {
	d := New(100, 100)
	d.SetMouseEventFilter(func(ev *dom.MouseEvent) bool { return ev.Type == dom.MouseWheel })

	if d.DispatchNativeMouse(&dom.MouseEvent{Type: dom.MouseDown, Target: d.Body()}) {
		t.Error("filtered mousedown was delivered")
	}
	if !d.DispatchNativeMouse(&dom.MouseEvent{Type: dom.MouseWheel, Target: d.Body()}) {
		t.Error("allowed mousewheel was not delivered")
	}
	if n := len(d.Records()); n != 1 {
		t.Errorf("Records() len = %d, want 1", n)
	}
}

func TestScrollBarClampsAndRemembersIdeal(t *testing.T) {
	b := NewScrollBar(100, 20)

	b.SetValue(120)
	if b.Value() != 80 {
		t.Errorf("Value() = %d, want 80", b.Value())
	}
	if b.Ideal() != 120 {
		t.Errorf("Ideal() = %d, want 120", b.Ideal())
	}

	b.Resize(200, 20)
	if b.Value() != 120 {
		t.Errorf("after Resize Value() = %d, want 120", b.Value())
	}

	b.SetValue(-5)
	if b.Value() != 0 {
		t.Errorf("Value() = %d, want 0", b.Value())
	}
	if b.Changes() != 3 {
		t.Errorf("Changes() = %d, want 3", b.Changes())
	}
}

func TestScrollPaneNilBars(t *testing.T) {
	p := NewScrollPane("pane", nil, nil, nil)
	if p.VerticalScrollBar() != nil {
		t.Error("VerticalScrollBar() != nil for a pane without bar")
	}
	if p.HorizontalScrollBar() != nil {
		t.Error("HorizontalScrollBar() != nil for a pane without bar")
	}
}

func TestFingerKeepsStartTarget(t *testing.T) {
	d := New(100, 100)
	a := d.Body().Append(d.CreateElement("DIV", "a", Rect{W: 10, H: 10}))
	d.Body().Append(d.CreateElement("DIV", "b", Rect{X: 50, W: 10, H: 10}))

	var got []*dom.TouchEvent
	d.SetTouchHandler(func(ev *dom.TouchEvent) { got = append(got, ev) })

	f := d.Finger(3)
	f.Down(5, 5)
	f.Move(55, 5)
	f.Up(55, 5)
	if f.Move(1, 1) != nil {
		t.Error("Move after Up dispatched an event")
	}

	if len(got) != 3 {
		t.Fatalf("dispatched %d events, want 3", len(got))
	}
	for i, ev := range got {
		if ev.Target != dom.Element(a) {
			t.Errorf("event %d target = %v, want a", i, ev.Target)
		}
	}
	if len(got[2].Touches) != 0 || len(got[2].ChangedTouches) != 1 {
		t.Errorf("touchend touches = %v changed = %v", got[2].Touches, got[2].ChangedTouches)
	}
	if tp, _ := got[2].FirstTouch(); tp.Identifier != 3 || tp.ClientX != 55 {
		t.Errorf("FirstTouch() = %+v", tp)
	}
}
