package memdom

import (
	"time"

	"github.com/dshills/touchemu/internal/dom"
)

// Finger produces native touch events the way a touch browser does: the
// target of every event is the element hit at touchstart.
type Finger struct {
	doc    *Document
	id     int
	target *Element
	down   bool

	// Now stamps the events. Defaults to time.Now.
	Now func() time.Time
}

// Finger returns a finger with the given touch identifier.
func (d *Document) Finger(id int) *Finger {
	return &Finger{doc: d, id: id, Now: time.Now}
}

// Down touches the surface at (x, y) and dispatches touchstart.
func (f *Finger) Down(x, y int) *dom.TouchEvent {
	f.target = f.doc.HitTest(x, y)
	f.down = true
	pt := f.point(x, y)
	return f.dispatch(dom.TouchStart, []dom.Touch{pt}, []dom.Touch{pt})
}

// Move drags the finger to (x, y). It is a no-op while the finger is up.
func (f *Finger) Move(x, y int) *dom.TouchEvent {
	if !f.down {
		return nil
	}
	pt := f.point(x, y)
	return f.dispatch(dom.TouchMove, []dom.Touch{pt}, []dom.Touch{pt})
}

// Up lifts the finger at (x, y). The released point is only listed in the
// changed touches.
func (f *Finger) Up(x, y int) *dom.TouchEvent {
	if !f.down {
		return nil
	}
	f.down = false
	return f.dispatch(dom.TouchEnd, nil, []dom.Touch{f.point(x, y)})
}

// Cancel aborts the touch.
func (f *Finger) Cancel() *dom.TouchEvent {
	if !f.down {
		return nil
	}
	f.down = false
	return f.dispatch(dom.TouchCancel, nil, nil)
}

// Tap touches and releases at (x, y).
func (f *Finger) Tap(x, y int) {
	f.Down(x, y)
	f.Up(x, y)
}

// IsDown reports whether the finger is on the surface.
func (f *Finger) IsDown() bool { return f.down }

// Target returns the element hit by the last Down.
func (f *Finger) Target() *Element { return f.target }

func (f *Finger) point(x, y int) dom.Touch {
	return dom.Touch{Identifier: f.id, ClientX: x, ClientY: y}
}

func (f *Finger) dispatch(t dom.TouchType, touches, changed []dom.Touch) *dom.TouchEvent {
	ev := &dom.TouchEvent{
		Type:           t,
		Touches:        touches,
		ChangedTouches: changed,
		Timestamp:      f.Now(),
	}
	if f.target != nil {
		ev.Target = f.target
	}
	f.doc.DispatchTouch(ev)
	return ev
}

// Gesture dispatches a gesture event targeted at the element under (x, y).
func (d *Document) Gesture(t dom.GestureType, x, y int, scale, rotation float64) *dom.GestureEvent {
	ev := &dom.GestureEvent{
		Type:      t,
		Scale:     scale,
		Rotation:  rotation,
		Timestamp: time.Now(),
	}
	if el := d.HitTest(x, y); el != nil {
		ev.Target = el
	}
	d.DispatchGesture(ev)
	return ev
}
