package touch

import (
	"strings"

	"github.com/dshills/touchemu/internal/dom"
)

// AnyTag is the allow-list key matching every element.
const AnyTag = "*"

// AllowedMouseEvents maps an element tag (or AnyTag) to the genuine mouse
// event types that may reach it.
type AllowedMouseEvents map[string]map[dom.MouseType]bool

// DefaultAllowedMouseEvents lets text inputs see native presses and
// releases and lets wheel events through everywhere.
func DefaultAllowedMouseEvents() AllowedMouseEvents {
	a := make(AllowedMouseEvents)
	a.Allow("INPUT", dom.MouseDown, dom.MouseUp)
	a.Allow("TEXTAREA", dom.MouseDown, dom.MouseUp)
	a.Allow(AnyTag, dom.MouseWheel)
	return a
}

// Allow adds types to the allow-list of tag. Tags are case-insensitive.
func (a AllowedMouseEvents) Allow(tag string, types ...dom.MouseType) {
	tag = strings.ToUpper(tag)
	set, ok := a[tag]
	if !ok {
		set = make(map[dom.MouseType]bool, len(types))
		a[tag] = set
	}
	for _, t := range types {
		set[t] = true
	}
}

// Permits reports whether a genuine event of type t may reach an element
// with the given tag.
func (a AllowedMouseEvents) Permits(tag string, t dom.MouseType) bool {
	if a[AnyTag][t] {
		return true
	}
	return a[strings.ToUpper(tag)][t]
}

// Clone returns a deep copy.
func (a AllowedMouseEvents) Clone() AllowedMouseEvents {
	out := make(AllowedMouseEvents, len(a))
	for tag, set := range a {
		cp := make(map[dom.MouseType]bool, len(set))
		for t, v := range set {
			cp[t] = v
		}
		out[tag] = cp
	}
	return out
}

// mouseFilter gates mouse events reaching the toolkit.
type mouseFilter struct {
	allowed AllowedMouseEvents
}

// allow passes synthesized events and allow-listed genuine ones. A rejected
// event has its default prevented and its legacy return value cleared.
func (f *mouseFilter) allow(ev *dom.MouseEvent) bool {
	if ev.Synthesized() {
		return true
	}
	tag := ""
	if ev.Target != nil {
		tag = ev.Target.TagName()
	}
	if f.allowed.Permits(tag, ev.Type) {
		return true
	}
	ev.PreventDefault()
	ev.ReturnValue = false
	return false
}
