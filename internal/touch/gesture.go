package touch

import (
	"github.com/dshills/touchemu/internal/dom"
	"github.com/dshills/touchemu/internal/event"
)

// HandleGesture is the entry point for native gesture events. Every gesture
// event is default-prevented and forwarded to the gesture listener.
func (e *Engine) HandleGesture(ev *dom.GestureEvent) {
	if ev == nil {
		return
	}
	defer e.recoverFrom(ev.EventName())

	ev.PreventDefault()
	if e.gestureListener != nil {
		e.gestureListener(ev)
	}
	switch ev.Type {
	case dom.GestureStart:
		e.disableMouse(ev)
	case dom.GestureEnd:
		e.enableMouse(ev)
	}
}

// disableMouse cancels the active session and suppresses emulation until
// the gesture ends.
func (e *Engine) disableMouse(ev *dom.GestureEvent) {
	e.cancelSession(ev)
	if s := e.session; s != nil {
		e.endSession(s, event.TopicSessionCancelled, true)
	}
	e.mouseEnabled = false
	publish(e, event.TopicGestureStarted, gestureInfo(ev))
}

func (e *Engine) enableMouse(ev *dom.GestureEvent) {
	e.mouseEnabled = true
	publish(e, event.TopicGestureEnded, gestureInfo(ev))
}

func gestureInfo(ev *dom.GestureEvent) GestureInfo {
	return GestureInfo{Type: ev.Type, Scale: ev.Scale, Rotation: ev.Rotation}
}
