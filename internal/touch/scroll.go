package touch

import "github.com/dshills/touchemu/internal/dom"

// virtualScroll converts finger movement into scroll bar values for a
// windowed list.
type virtualScroll struct {
	widget dom.Widget

	barV dom.ScrollBar
	barH dom.ScrollBar

	initY, maxY int
	initX, maxX int

	// outer is resolved on first need.
	outer         dom.Scrollable
	outerResolved bool
}

// beginVirtualScroll captures the scroll bars of the list w belongs to.
// It returns nil when there is nothing to drive.
func beginVirtualScroll(w dom.Widget) *virtualScroll {
	list := windowedList(w)
	if list == nil {
		return nil
	}
	s := &virtualScroll{
		widget: w,
		barV:   list.VerticalScrollBar(),
		barH:   list.HorizontalScrollBar(),
	}
	if s.barV == nil && s.barH == nil {
		return nil
	}
	if s.barV != nil {
		s.initY = s.barV.Value()
		s.maxY = s.barV.Maximum()
	}
	if s.barH != nil {
		s.initX = s.barH.Value()
		s.maxX = s.barH.Maximum()
	}
	return s
}

// move applies the displacement from initial to current. Moving the finger
// down scrolls up. It reports whether the session should escalate to the
// enclosing scrollable; the bars are still set on that move and must not be
// driven afterwards.
func (s *virtualScroll) move(initial, current Position, outerEligible bool) bool {
	newX := s.initX + initial.X - current.X
	newY := s.initY + initial.Y - current.Y

	escalate := false
	if outerEligible && s.barV != nil {
		limit := dom.ScrollRange(s.barV)
		if newY < 0 || newY > limit {
			escalate = s.outerHasRoom(newY < 0)
		}
	}

	if s.barH != nil {
		s.barH.SetValue(newX)
	}
	if s.barV != nil {
		s.barV.SetValue(newY)
	}
	return escalate
}

// outerHasRoom reports whether the enclosing scrollable can still scroll
// up (towards 0) or down.
func (s *virtualScroll) outerHasRoom(up bool) bool {
	if !s.outerResolved {
		s.outer = enclosingScrollable(s.widget)
		s.outerResolved = true
	}
	if s.outer == nil {
		return false
	}
	bar := s.outer.VerticalScrollBar()
	if bar == nil {
		return false
	}
	value := bar.Value()
	if up {
		return value > 0
	}
	return value < dom.ScrollRange(bar)
}

// finish writes the vertical value back to itself so a scroll bar caching
// an out-of-range ideal value collapses it to the actual one.
func (s *virtualScroll) finish() {
	if s.barV != nil {
		s.barV.SetValue(s.barV.Value())
	}
}
