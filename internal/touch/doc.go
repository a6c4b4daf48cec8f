// Package touch translates single-finger touch input into the mouse event
// stream a desktop-style widget toolkit expects.
//
// # Engine
//
// Engine is the touch event coordinator. It is attached to one input
// surface and owns all emulation state for it: the active touch session,
// the hover target, the click memory used for double-click detection and
// the gesture suppression flag.
//
//	engine := touch.New(doc, touch.DefaultConfig(),
//	    touch.WithLogger(logger),
//	    touch.WithBus(bus),
//	)
//	if err := engine.Attach(surface); err != nil {
//	    return err
//	}
//	defer engine.Detach()
//
// # Sessions
//
// Every touchstart opens a Session. The session mode is decided once, from
// the widget under the finger, in this order:
//
//   - DragMode: the widget's control kind is a registered draggable type
//     and, when the registration names appearances, the widget's appearance
//     is one of them. Moves become mousemove events.
//   - VirtualScrollMode: the widget is a row of a windowed list. Moves
//     drive the list's scroll bars directly and may escalate to the
//     enclosing scrollable once the list range is exhausted.
//   - ScrollMode: native scrolling is enabled and an enclosing scrollable
//     exists. The native default is left alone.
//   - FocusMode: the widget accepts text input.
//   - ClickMode: everything else.
//
// Every session starts click eligible. A non-drag touch that moves 15 units
// or more from its start point in either axis is cancelled as a click
// candidate: the virtual mouse is released over a neutral target and no
// click follows.
//
// # Gestures
//
// A gesturestart cancels the active session and suppresses mouse emulation
// until gestureend. While suppressed, raw touch events go to the optional
// touch listener.
//
// # Threading
//
// Input handlers (HandleTouch, HandleGesture, HandleOrientation,
// FilterMouseEvent) and listener setters must be called from the goroutine
// that delivers input for the surface. AddDraggableType and
// SetTouchScrolling are safe from any goroutine.
//
// # Errors
//
// A panic raised while handling a touch or gesture event is recovered,
// reported through the Alerter and the logger, and abandons the session.
// It never propagates back into the input source.
package touch
