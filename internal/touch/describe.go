package touch

import (
	"fmt"

	"github.com/dshills/touchemu/internal/dom"
	"github.com/dshills/touchemu/internal/event"
)

// Describe renders an event published by the engine as one line of text,
// or "" for events it did not publish.
func Describe(ev event.Envelope) string {
	segs := ev.EventTopic().Segments()
	if len(segs) == 0 {
		return ""
	}
	state := segs[len(segs)-1]

	switch e := ev.(type) {
	case event.Event[MouseInfo]:
		p := e.Payload
		return fmt.Sprintf("%-10s %s (%d,%d)", p.Type, elementName(p.Target), p.X, p.Y)
	case event.Event[SessionInfo]:
		p := e.Payload
		s := fmt.Sprintf("session %s %s on %s", state, p.Mode, elementName(p.Target))
		if ev.EventTopic() == event.TopicSessionEnded {
			s += fmt.Sprintf(" after %s clicked=%v", p.Duration, p.Clicked)
		}
		return s
	case event.Event[GestureInfo]:
		p := e.Payload
		return fmt.Sprintf("gesture %s scale=%.2f rotation=%.1f", state, p.Scale, p.Rotation)
	case event.Event[FailureInfo]:
		p := e.Payload
		return fmt.Sprintf("failure in %s: %v", p.Event, p.Err)
	}
	return ""
}

func elementName(el dom.Element) string {
	if el == nil {
		return "-"
	}
	if s, ok := el.(fmt.Stringer); ok {
		return s.String()
	}
	return el.TagName()
}
