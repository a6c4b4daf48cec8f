package touch

import "github.com/dshills/touchemu/internal/dom"

// synthesizer builds and dispatches synthetic mouse events and keeps the
// hover state.
type synthesizer struct {
	hover dom.Element

	tooltip dom.ToolTip

	// fired is called after each dispatch.
	fired func(ev *dom.MouseEvent)
}

// moveTo moves the virtual pointer to target. A change of target emits
// mouseout at the old target (if any) followed by mouseover at target.
func (s *synthesizer) moveTo(target dom.Element, origin dom.InputEvent) {
	old := s.hover
	if old == target {
		return
	}
	if old != nil {
		s.fire(dom.MouseOut, old, origin, Position{})
	}
	s.hover = target
	s.fire(dom.MouseOver, target, origin, Position{})
}

// fire dispatches a left-button mouse event of type t at target.
func (s *synthesizer) fire(t dom.MouseType, target dom.Element, origin dom.InputEvent, pos Position) {
	if target == nil {
		return
	}
	ev := &dom.MouseEvent{
		Type:        t,
		Target:      target,
		Bubbles:     true,
		Cancelable:  true,
		ScreenX:     pos.X,
		ScreenY:     pos.Y,
		ClientX:     pos.X,
		ClientY:     pos.Y,
		Button:      dom.ButtonLeft,
		Origin:      origin,
		ReturnValue: true,
	}
	target.DispatchEvent(ev)

	if s.tooltip != nil {
		switch t {
		case dom.MouseDown:
			s.tooltip.ShowFor(target)
		case dom.MouseUp:
			s.tooltip.Hide()
		}
	}
	if s.fired != nil {
		s.fired(ev)
	}
}

func (s *synthesizer) reset() {
	s.hover = nil
}
