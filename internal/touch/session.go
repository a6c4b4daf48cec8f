package touch

import (
	"time"

	"github.com/dshills/touchemu/internal/dom"
)

// Position is a client coordinate.
type Position struct {
	X int
	Y int
}

// Exceeds reports whether p is at least threshold away from other in
// either axis.
func (p Position) Exceeds(other Position, threshold int) bool {
	return abs(p.X-other.X) >= threshold || abs(p.Y-other.Y) >= threshold
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Mode is the interaction mode of a session. It is one of ClickMode,
// DragMode, ScrollMode, FocusMode or *VirtualScrollMode.
type Mode interface {
	String() string
	allowsNativeDefault() bool
}

// ClickMode is a plain tap.
type ClickMode struct{}

// DragMode forwards finger movement as mousemove.
type DragMode struct{}

// ScrollMode leaves movement to native scrolling.
type ScrollMode struct{}

// FocusMode leaves the native default alone so text inputs can take focus.
type FocusMode struct{}

// VirtualScrollMode drives the scroll bars of a windowed list.
type VirtualScrollMode struct {
	// Outer reports whether the session may escalate to the enclosing
	// scrollable once the list range is exhausted.
	Outer bool

	scroll *virtualScroll
}

func (ClickMode) String() string          { return "click" }
func (DragMode) String() string           { return "drag" }
func (ScrollMode) String() string         { return "scroll" }
func (FocusMode) String() string          { return "focus" }
func (*VirtualScrollMode) String() string { return "virtual-scroll" }

func (ClickMode) allowsNativeDefault() bool            { return false }
func (DragMode) allowsNativeDefault() bool             { return false }
func (ScrollMode) allowsNativeDefault() bool           { return true }
func (FocusMode) allowsNativeDefault() bool            { return true }
func (m *VirtualScrollMode) allowsNativeDefault() bool { return m.Outer }

// Session tracks one single-finger touch from start to release or cancel.
type Session struct {
	// ID identifies the session in published events.
	ID string

	// Mode is the current interaction mode. A VirtualScrollMode session may
	// become ScrollMode once, never the other way.
	Mode Mode

	// Clickable reports whether release may still produce a click.
	Clickable bool

	// Pressed reports whether the virtual mouse button is down.
	Pressed bool

	// InitialTarget is the element under the initial touch point.
	InitialTarget dom.Element

	// WidgetTarget is the widget resolved from InitialTarget. May be nil.
	WidgetTarget dom.Widget

	// InitialPosition is the touch point at touchstart.
	InitialPosition Position

	// Started is when the session began.
	Started time.Time
}

// IsDrag reports whether the session is a drag.
func (s *Session) IsDrag() bool {
	_, ok := s.Mode.(DragMode)
	return ok
}

// IsScroll reports whether the session is (or escalated to) native scroll.
func (s *Session) IsScroll() bool {
	_, ok := s.Mode.(ScrollMode)
	return ok
}

func (s *Session) virtualScroll() *virtualScroll {
	if m, ok := s.Mode.(*VirtualScrollMode); ok {
		return m.scroll
	}
	return nil
}
