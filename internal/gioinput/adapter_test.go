package gioinput

import (
	"fmt"
	"math"
	"testing"
	"time"

	"gioui.org/f32"
	"gioui.org/io/pointer"

	"github.com/dshills/touchemu/internal/dom"
	"github.com/dshills/touchemu/internal/scene"
	"github.com/dshills/touchemu/internal/touch"
)

func setup(t *testing.T, opts ...Option) (*scene.Scene, *touch.Engine, *Adapter) {
	t.Helper()
	s := scene.New()
	e, err := s.Attach(touch.DefaultConfig())
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	hit := func(x, y int) dom.Element { return s.Doc.HitTest(x, y) }
	return s, e, New(s.Doc, hit, opts...)
}

func ev(typ pointer.Type, id pointer.ID, x, y float32) pointer.Event {
	return pointer.Event{Type: typ, Source: pointer.Touch, PointerID: id, Position: f32.Pt(x, y)}
}

func TestTapBecomesClick(t *testing.T) {
	s, e, a := setup(t)
	a.Feed(ev(pointer.Press, 0, 5, 2))
	if e.Session() == nil {
		t.Fatal("press did not start a session")
	}
	a.Feed(ev(pointer.Release, 0, 5, 2))

	if got := s.Clicks("ok"); got != 1 {
		t.Errorf("Clicks(ok) = %d, want 1", got)
	}
	if a.Active() != 0 {
		t.Errorf("Active() = %d, want 0", a.Active())
	}
}

func TestMouseSourceIgnored(t *testing.T) {
	s, e, a := setup(t)
	mouse := ev(pointer.Press, 0, 5, 2)
	mouse.Source = pointer.Mouse
	if a.Feed(mouse) {
		t.Error("Feed(mouse press) = true")
	}
	if a.Feed(ev(pointer.Scroll, 0, 5, 2)) {
		t.Error("Feed(touch scroll) = true")
	}
	if e.Session() != nil || len(s.Doc.Records()) != 0 {
		t.Error("ignored events reached the engine")
	}
}

func TestScaleAndEpoch(t *testing.T) {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s, _, a := setup(t, WithScale(2), WithEpoch(epoch))

	var got []*dom.TouchEvent
	rec := &recorder{touch: func(ev *dom.TouchEvent) { got = append(got, ev) }}
	a.sink = rec
	p := ev(pointer.Press, 3, 10, 4)
	p.Time = 250 * time.Millisecond
	a.Feed(p)

	if len(got) != 1 {
		t.Fatalf("dispatched %d events, want 1", len(got))
	}
	tp := got[0].Touches[0]
	if tp.ClientX != 5 || tp.ClientY != 2 || tp.Identifier != 3 {
		t.Errorf("touch = %+v, want id 3 at 5,2", tp)
	}
	if want := epoch.Add(250 * time.Millisecond); !got[0].Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", got[0].Timestamp, want)
	}
	if got[0].Target != dom.Element(s.Doc.Find("ok")) {
		t.Errorf("Target = %v, want ok", got[0].Target)
	}
}

type recorder struct {
	touch   func(*dom.TouchEvent)
	gesture func(*dom.GestureEvent)
	names   []string
}

func (r *recorder) DispatchTouch(ev *dom.TouchEvent) {
	r.names = append(r.names, fmt.Sprintf("%s:%d", ev.Type, len(ev.Touches)))
	if r.touch != nil {
		r.touch(ev)
	}
}

func (r *recorder) DispatchGesture(ev *dom.GestureEvent) {
	r.names = append(r.names, ev.Type.String())
	if r.gesture != nil {
		r.gesture(ev)
	}
}

func TestSetScale(t *testing.T) {
	s, _, a := setup(t, WithScale(10))
	a.SetScale(0)
	a.SetScale(20)
	a.Feed(ev(pointer.Press, 0, 100, 40))
	a.Feed(ev(pointer.Release, 0, 100, 40))

	if got := s.Clicks("ok"); got != 1 {
		t.Errorf("Clicks(ok) = %d, want 1 at 20 px per unit", got)
	}
}

func TestPinchSequence(t *testing.T) {
	var gestures []*dom.GestureEvent
	rec := &recorder{gesture: func(ev *dom.GestureEvent) { gestures = append(gestures, ev) }}
	a := New(rec, func(x, y int) dom.Element { return nil })

	a.Feed(ev(pointer.Press, 0, 10, 10))
	a.Feed(ev(pointer.Press, 1, 20, 10))
	a.Feed(ev(pointer.Drag, 1, 30, 10))
	a.Feed(ev(pointer.Release, 1, 30, 10))
	a.Feed(ev(pointer.Release, 0, 10, 10))

	want := []string{
		"touchstart:1",
		"gesturestart", "touchstart:2",
		"gesturechange", "touchmove:2",
		"touchend:1", "gestureend",
		"touchend:0",
	}
	if fmt.Sprint(rec.names) != fmt.Sprint(want) {
		t.Fatalf("events = %v, want %v", rec.names, want)
	}
	if gestures[0].Scale != 1 {
		t.Errorf("gesturestart scale = %v, want 1", gestures[0].Scale)
	}
	if gestures[1].Scale != 2 {
		t.Errorf("gesturechange scale = %v, want 2", gestures[1].Scale)
	}
	if gestures[2].Scale != 2 {
		t.Errorf("gestureend scale = %v, want 2", gestures[2].Scale)
	}
}

func TestRotation(t *testing.T) {
	var last *dom.GestureEvent
	rec := &recorder{gesture: func(ev *dom.GestureEvent) { last = ev }}
	a := New(rec, func(x, y int) dom.Element { return nil })

	a.Feed(ev(pointer.Press, 0, 0, 0))
	a.Feed(ev(pointer.Press, 1, 10, 0))
	a.Feed(ev(pointer.Drag, 1, 0, 10))

	if math.Abs(last.Rotation-90) > 1e-6 {
		t.Errorf("Rotation = %v, want 90", last.Rotation)
	}
	if math.Abs(last.Scale-1) > 1e-6 {
		t.Errorf("Scale = %v, want 1", last.Scale)
	}
}

func TestPinchSuppressesEmulation(t *testing.T) {
	s, e, a := setup(t)
	a.Feed(ev(pointer.Press, 0, 5, 2))
	a.Feed(ev(pointer.Press, 1, 8, 2))
	if e.MouseEnabled() {
		t.Fatal("mouse emulation enabled during gesture")
	}
	if e.Session() != nil {
		t.Error("session survived gesturestart")
	}
	a.Feed(ev(pointer.Drag, 1, 11, 2))
	a.Feed(ev(pointer.Release, 1, 11, 2))
	if !e.MouseEnabled() {
		t.Error("mouse emulation not restored after gestureend")
	}
	a.Feed(ev(pointer.Release, 0, 5, 2))
	if s.Clicks("ok") != 0 {
		t.Error("pinch produced a click")
	}
}

func TestCancel(t *testing.T) {
	rec := &recorder{}
	a := New(rec, func(x, y int) dom.Element { return nil })

	a.Feed(ev(pointer.Press, 0, 1, 1))
	a.Feed(ev(pointer.Press, 1, 5, 1))
	a.Feed(pointer.Event{Type: pointer.Cancel, Source: pointer.Touch})
	a.Feed(pointer.Event{Type: pointer.Cancel, Source: pointer.Touch})

	want := []string{"touchstart:1", "gesturestart", "touchstart:2", "touchcancel:0", "gestureend"}
	if fmt.Sprint(rec.names) != fmt.Sprint(want) {
		t.Errorf("events = %v, want %v", rec.names, want)
	}
	if a.Active() != 0 {
		t.Errorf("Active() = %d, want 0", a.Active())
	}
}

func TestUnknownPointerIgnored(t *testing.T) {
	rec := &recorder{}
	a := New(rec, func(x, y int) dom.Element { return nil })
	a.Feed(ev(pointer.Drag, 7, 1, 1))
	a.Feed(ev(pointer.Release, 7, 1, 1))
	a.Feed(ev(pointer.Press, 0, 1, 1))
	a.Feed(ev(pointer.Press, 0, 1, 1))
	if fmt.Sprint(rec.names) != "[touchstart:1]" {
		t.Errorf("events = %v", rec.names)
	}
}
