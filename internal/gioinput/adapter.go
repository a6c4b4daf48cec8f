// Package gioinput turns Gio touch pointer events into the native touch
// and gesture events the touch engine consumes.
//
// A Gio window reports every finger as a pointer.Event with Source Touch
// and its own PointerID. The adapter rebuilds the browser event stream from
// them: touchstart/touchmove/touchend with the touch lists and a target
// fixed at the first press, and gesturestart/gesturechange/gestureend
// while two or more fingers are down, in the order touch browsers use.
// Mouse pointer events are left to the caller.
package gioinput

import (
	"math"
	"time"

	"gioui.org/f32"
	"gioui.org/io/pointer"

	"github.com/dshills/touchemu/internal/dom"
)

// Sink receives the rebuilt native events. *memdom.Document implements it.
type Sink interface {
	DispatchTouch(ev *dom.TouchEvent)
	DispatchGesture(ev *dom.GestureEvent)
}

// HitFunc returns the element under a client coordinate.
type HitFunc func(x, y int) dom.Element

// Option configures an Adapter.
type Option func(*Adapter)

// WithScale sets how many Gio pixels make one client unit.
func WithScale(pxPerUnit float32) Option {
	return func(a *Adapter) {
		if pxPerUnit > 0 {
			a.scale = pxPerUnit
		}
	}
}

// WithEpoch sets the wall time pointer.Event.Time is relative to.
func WithEpoch(t time.Time) Option {
	return func(a *Adapter) {
		a.epoch = t
	}
}

type finger struct {
	id  pointer.ID
	pos f32.Point
}

// Adapter converts one window's pointer stream. It is not safe for
// concurrent use; feed it from the window's event loop.
type Adapter struct {
	sink  Sink
	hit   HitFunc
	scale float32
	epoch time.Time

	fingers []finger
	target  dom.Element

	gesture     bool
	startDist   float32
	startAngle  float64
	lastScale   float64
	lastRotated float64
}

// New creates an adapter delivering to sink.
func New(sink Sink, hit HitFunc, opts ...Option) *Adapter {
	a := &Adapter{sink: sink, hit: hit, scale: 1, epoch: time.Now()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetScale changes the pixels per client unit, e.g. after a window resize.
// Non-positive values are ignored.
func (a *Adapter) SetScale(pxPerUnit float32) {
	if pxPerUnit > 0 {
		a.scale = pxPerUnit
	}
}

// Active returns the number of fingers down.
func (a *Adapter) Active() int { return len(a.fingers) }

// Feed converts ev. It reports false for events it does not handle
// (non-touch sources, hover and scroll events).
func (a *Adapter) Feed(ev pointer.Event) bool {
	if ev.Source != pointer.Touch {
		return false
	}
	at := a.epoch.Add(ev.Time)

	switch ev.Type {
	case pointer.Press:
		a.press(ev.PointerID, ev.Position, at)
	case pointer.Drag, pointer.Move:
		a.move(ev.PointerID, ev.Position, at)
	case pointer.Release:
		a.release(ev.PointerID, ev.Position, at)
	case pointer.Cancel:
		a.cancel(at)
	default:
		return false
	}
	return true
}

func (a *Adapter) press(id pointer.ID, pos f32.Point, at time.Time) {
	if a.index(id) >= 0 {
		return
	}
	a.fingers = append(a.fingers, finger{id: id, pos: pos})
	if len(a.fingers) == 1 {
		x, y := a.client(pos)
		a.target = a.hit(x, y)
	}
	if len(a.fingers) == 2 && !a.gesture {
		a.gesture = true
		a.startDist = distance(a.fingers[0].pos, a.fingers[1].pos)
		a.startAngle = angle(a.fingers[0].pos, a.fingers[1].pos)
		a.lastScale, a.lastRotated = 1, 0
		a.dispatchGesture(dom.GestureStart, at)
	}
	self := a.touch(finger{id: id, pos: pos})
	a.dispatchTouch(dom.TouchStart, a.touches(), []dom.Touch{self}, at)
}

func (a *Adapter) move(id pointer.ID, pos f32.Point, at time.Time) {
	i := a.index(id)
	if i < 0 {
		return
	}
	a.fingers[i].pos = pos
	if a.gesture && len(a.fingers) >= 2 {
		a.measure()
		a.dispatchGesture(dom.GestureChange, at)
	}
	self := a.touch(a.fingers[i])
	a.dispatchTouch(dom.TouchMove, a.touches(), []dom.Touch{self}, at)
}

func (a *Adapter) release(id pointer.ID, pos f32.Point, at time.Time) {
	i := a.index(id)
	if i < 0 {
		return
	}
	self := a.touch(finger{id: id, pos: pos})
	a.fingers = append(a.fingers[:i], a.fingers[i+1:]...)
	a.dispatchTouch(dom.TouchEnd, a.touches(), []dom.Touch{self}, at)

	if a.gesture && len(a.fingers) < 2 {
		a.gesture = false
		a.dispatchGesture(dom.GestureEnd, at)
	}
	if len(a.fingers) == 0 {
		a.target = nil
	}
}

func (a *Adapter) cancel(at time.Time) {
	if len(a.fingers) == 0 {
		return
	}
	changed := a.touches()
	a.fingers = a.fingers[:0]
	a.dispatchTouch(dom.TouchCancel, nil, changed, at)
	if a.gesture {
		a.gesture = false
		a.dispatchGesture(dom.GestureEnd, at)
	}
	a.target = nil
}

// measure updates scale and rotation from the first two fingers.
func (a *Adapter) measure() {
	p, q := a.fingers[0].pos, a.fingers[1].pos
	if a.startDist > 0 {
		a.lastScale = float64(distance(p, q) / a.startDist)
	}
	a.lastRotated = (angle(p, q) - a.startAngle) * 180 / math.Pi
}

func (a *Adapter) dispatchTouch(t dom.TouchType, touches, changed []dom.Touch, at time.Time) {
	a.sink.DispatchTouch(&dom.TouchEvent{
		Type:           t,
		Target:         a.target,
		Touches:        touches,
		ChangedTouches: changed,
		Timestamp:      at,
	})
}

func (a *Adapter) dispatchGesture(t dom.GestureType, at time.Time) {
	a.sink.DispatchGesture(&dom.GestureEvent{
		Type:      t,
		Target:    a.target,
		Scale:     a.lastScale,
		Rotation:  a.lastRotated,
		Timestamp: at,
	})
}

func (a *Adapter) index(id pointer.ID) int {
	for i, f := range a.fingers {
		if f.id == id {
			return i
		}
	}
	return -1
}

func (a *Adapter) touches() []dom.Touch {
	out := make([]dom.Touch, len(a.fingers))
	for i, f := range a.fingers {
		out[i] = a.touch(f)
	}
	return out
}

func (a *Adapter) touch(f finger) dom.Touch {
	x, y := a.client(f.pos)
	return dom.Touch{Identifier: int(f.id), ClientX: x, ClientY: y}
}

func (a *Adapter) client(p f32.Point) (int, int) {
	return int(math.Round(float64(p.X / a.scale))), int(math.Round(float64(p.Y / a.scale)))
}

func distance(p, q f32.Point) float32 {
	d := q.Sub(p)
	return float32(math.Hypot(float64(d.X), float64(d.Y)))
}

func angle(p, q f32.Point) float64 {
	d := q.Sub(p)
	return math.Atan2(float64(d.Y), float64(d.X))
}
