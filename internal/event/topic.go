package event

import "strings"

// Topic is a hierarchical event type using dot notation,
// e.g. "touch.session.started" or "mouse.click".
type Topic string

// Wildcards usable in subscription patterns.
const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more trailing segments.
	WildcardMulti = "**"

	// Separator separates topic segments.
	Separator = "."
)

// Topics published by the touch engine.
const (
	TopicSessionStarted   Topic = "touch.session.started"
	TopicSessionEnded     Topic = "touch.session.ended"
	TopicSessionCancelled Topic = "touch.session.cancelled"
	TopicScrollEscalated  Topic = "touch.scroll.escalated"
	TopicGestureStarted   Topic = "touch.gesture.started"
	TopicGestureEnded     Topic = "touch.gesture.ended"
	TopicHandlerFailed    Topic = "touch.handler.failed"
	TopicMousePrefix      Topic = "mouse"
)

// String returns the topic as a string.
func (t Topic) String() string { return string(t) }

// Segments returns the topic split by the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// Child returns a child topic by appending a segment.
func (t Topic) Child(segment string) Topic {
	if t == "" {
		return Topic(segment)
	}
	return Topic(string(t) + Separator + segment)
}

// Valid reports whether the topic has no empty segments.
func (t Topic) Valid() bool {
	if t == "" {
		return false
	}
	for _, s := range t.Segments() {
		if s == "" {
			return false
		}
	}
	return true
}

// Matches reports whether the concrete topic t matches pattern.
// "**" is only meaningful as the last pattern segment.
func (t Topic) Matches(pattern Topic) bool {
	ts := t.Segments()
	ps := pattern.Segments()
	for i, p := range ps {
		if p == WildcardMulti {
			return true
		}
		if i >= len(ts) {
			return false
		}
		if p != WildcardSingle && p != ts[i] {
			return false
		}
	}
	return len(ts) == len(ps)
}
