package scene

import (
	"github.com/dshills/touchemu/internal/dom"
	"github.com/dshills/touchemu/internal/dom/memdom"
)

// dragState follows a pressed draggable item.
type dragState struct {
	item   *Item
	start  memdom.Rect
	startX int
	startY int
}

func (s *Scene) onClick(ev *dom.MouseEvent) {
	if it := s.itemOf(ev.Target); it != nil {
		s.clicks[it.ID]++
	}
}

func (s *Scene) onMouseDown(ev *dom.MouseEvent) {
	it := s.itemOf(ev.Target)
	if it == nil {
		return
	}
	switch it.Role {
	case RoleShell, RoleSash, RoleThumb:
		s.drag = &dragState{item: it, start: it.El.Bounds(), startX: ev.ClientX, startY: ev.ClientY}
	}
}

func (s *Scene) onMouseMove(ev *dom.MouseEvent) {
	d := s.drag
	if d == nil || s.itemOf(ev.Target) != d.item {
		return
	}
	r := d.start
	dx, dy := ev.ClientX-d.startX, ev.ClientY-d.startY

	switch d.item.Role {
	case RoleShell:
		r.X = clamp(r.X+dx, 0, Width-r.W)
		r.Y = clamp(r.Y+dy, 0, Height-r.H)
	case RoleSash:
		r.Y = clamp(r.Y+dy, 0, Height-r.H)
	case RoleThumb:
		track := s.byID["scale"].El.Bounds()
		r.X = clamp(r.X+dx, track.X, track.X+track.W-r.W)
	}
	d.item.El.SetBounds(r)
}

func (s *Scene) onMouseUp(*dom.MouseEvent) {
	s.drag = nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
