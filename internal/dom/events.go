package dom

import "time"

// TouchType identifies a native touch event.
type TouchType uint8

const (
	TouchStart TouchType = iota
	TouchMove
	TouchEnd
	TouchCancel
)

// String returns the DOM event name.
func (t TouchType) String() string {
	switch t {
	case TouchStart:
		return "touchstart"
	case TouchMove:
		return "touchmove"
	case TouchEnd:
		return "touchend"
	case TouchCancel:
		return "touchcancel"
	default:
		return "unknown"
	}
}

// ParseTouchType parses a DOM event name.
func ParseTouchType(s string) (TouchType, bool) {
	switch s {
	case "touchstart":
		return TouchStart, true
	case "touchmove":
		return TouchMove, true
	case "touchend":
		return TouchEnd, true
	case "touchcancel":
		return TouchCancel, true
	}
	return 0, false
}

// GestureType identifies a native gesture event.
type GestureType uint8

const (
	GestureStart GestureType = iota
	GestureChange
	GestureEnd
)

// String returns the DOM event name.
func (t GestureType) String() string {
	switch t {
	case GestureStart:
		return "gesturestart"
	case GestureChange:
		return "gesturechange"
	case GestureEnd:
		return "gestureend"
	default:
		return "unknown"
	}
}

// ParseGestureType parses a DOM event name.
func ParseGestureType(s string) (GestureType, bool) {
	switch s {
	case "gesturestart":
		return GestureStart, true
	case "gesturechange":
		return GestureChange, true
	case "gestureend":
		return GestureEnd, true
	}
	return 0, false
}

// MouseType identifies a mouse event.
type MouseType uint8

const (
	MouseOver MouseType = iota
	MouseOut
	MouseDown
	MouseMove
	MouseUp
	Click
	DblClick
	MouseWheel
)

var mouseTypeNames = [...]string{
	MouseOver:  "mouseover",
	MouseOut:   "mouseout",
	MouseDown:  "mousedown",
	MouseMove:  "mousemove",
	MouseUp:    "mouseup",
	Click:      "click",
	DblClick:   "dblclick",
	MouseWheel: "mousewheel",
}

// String returns the DOM event name.
func (t MouseType) String() string {
	if int(t) < len(mouseTypeNames) {
		return mouseTypeNames[t]
	}
	return "unknown"
}

// ParseMouseType parses a DOM event name.
func ParseMouseType(s string) (MouseType, bool) {
	for i, name := range mouseTypeNames {
		if name == s {
			return MouseType(i), true
		}
	}
	return 0, false
}

// Button is a mouse button.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Touch is one touch point.
type Touch struct {
	Identifier int
	ClientX    int
	ClientY    int
}

// InputEvent is implemented by native events that can originate a
// synthesized mouse event.
type InputEvent interface {
	EventName() string
	PreventDefault()
}

// TouchEvent is a native touch event.
type TouchEvent struct {
	Type TouchType

	// Target is the element under the touch point.
	Target Element

	// Touches lists the points currently on the surface.
	Touches []Touch

	// ChangedTouches lists the points that changed in this event.
	ChangedTouches []Touch

	Timestamp time.Time

	defaultPrevented bool
}

// EventName returns the DOM event name.
func (e *TouchEvent) EventName() string { return e.Type.String() }

// PreventDefault suppresses the native default action.
func (e *TouchEvent) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *TouchEvent) DefaultPrevented() bool { return e.defaultPrevented }

// FirstTouch returns the first active touch, falling back to the first
// changed touch (touchend carries no active touches).
func (e *TouchEvent) FirstTouch() (Touch, bool) {
	if len(e.Touches) > 0 {
		return e.Touches[0], true
	}
	if len(e.ChangedTouches) > 0 {
		return e.ChangedTouches[0], true
	}
	return Touch{}, false
}

// GestureEvent is a native multi-touch gesture event.
type GestureEvent struct {
	Type     GestureType
	Target   Element
	Scale    float64
	Rotation float64

	Timestamp time.Time

	defaultPrevented bool
}

// EventName returns the DOM event name.
func (e *GestureEvent) EventName() string { return e.Type.String() }

// PreventDefault suppresses the native default action.
func (e *GestureEvent) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *GestureEvent) DefaultPrevented() bool { return e.defaultPrevented }

// OrientationEvent is a native orientation change.
type OrientationEvent struct {
	// Orientation in degrees (0, 90, -90, 180).
	Orientation int
}

// MouseEvent is a mouse event, genuine or synthesized.
type MouseEvent struct {
	Type       MouseType
	Target     Element
	Bubbles    bool
	Cancelable bool

	ScreenX, ScreenY int
	ClientX, ClientY int

	Button Button

	// Origin references the touch or gesture event this event was
	// synthesized from. Nil for genuine events.
	Origin InputEvent

	// ReturnValue is the legacy return-value flag. False cancels it.
	ReturnValue bool

	defaultPrevented bool
}

// Synthesized reports whether the event was produced by the engine.
func (e *MouseEvent) Synthesized() bool { return e.Origin != nil }

// PreventDefault suppresses the default action.
func (e *MouseEvent) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *MouseEvent) DefaultPrevented() bool { return e.defaultPrevented }

// ToolTip is the tooltip collaborator. It only consumes hints.
type ToolTip interface {
	Configure(settings ToolTipSettings)
	ShowFor(target Element)
	Hide()
}

// ToolTipSettings tunes the tooltip for touch input.
type ToolTipSettings struct {
	ShowInterval time.Duration
	HideInterval time.Duration
	OffsetX      int
	OffsetY      int
}
