package touch

import (
	"sort"
	"sync"
)

// DefaultDraggableTypes maps widget kinds to the appearances that make them
// draggable. A nil slice means the kind is always draggable.
var DefaultDraggableTypes = map[string][]string{
	"org.eclipse.swt.widgets.Shell":            nil,
	"org.eclipse.swt.widgets.Sash":             nil,
	"org.eclipse.swt.widgets.Scale":            {"scale-thumb"},
	"org.eclipse.swt.widgets.Slider":           {"slider-thumb"},
	"org.eclipse.rwt.widgets.ScrollBar":        nil,
	"org.eclipse.swt.custom.ScrolledComposite": {"scrollbar-thumb"},
	"org.eclipse.rwt.widgets.BasicButton":      {"scrollbar-thumb"},
	"qx.ui.layout.CanvasLayout":                {"coolitem-handle"},
	"org.eclipse.swt.widgets.List":             {"scrollbar-thumb"},
	"org.eclipse.rwt.widgets.Grid":             {"tree-column", "label", "image", "scrollbar-thumb"},
}

// DraggableType is one draggable registration: a widget kind and the
// appearances that make it draggable (none means always).
type DraggableType struct {
	Kind        string
	Appearances []string
}

// draggableEntry is nil appearances for "always".
type draggableEntry struct {
	appearances map[string]struct{}
}

func (e draggableEntry) always() bool { return e.appearances == nil }

// DraggableRegistry maps widget kinds to draggability. Entries can be added
// at runtime but are never replaced or removed. It is safe for concurrent use.
type DraggableRegistry struct {
	mu      sync.RWMutex
	entries map[string]draggableEntry
}

// NewDraggableRegistry returns a registry seeded with DefaultDraggableTypes.
func NewDraggableRegistry() *DraggableRegistry {
	r := &DraggableRegistry{entries: make(map[string]draggableEntry)}
	for kind, apps := range DefaultDraggableTypes {
		r.Add(kind, apps...)
	}
	return r
}

// Add registers kind. With no appearances the kind is always draggable,
// otherwise the touched widget must have one of them. Add returns false and
// leaves the existing entry alone when kind is already registered.
func (r *DraggableRegistry) Add(kind string, appearances ...string) bool {
	if kind == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[kind]; exists {
		return false
	}

	var entry draggableEntry
	if len(appearances) > 0 {
		entry.appearances = make(map[string]struct{}, len(appearances))
		for _, a := range appearances {
			entry.appearances[a] = struct{}{}
		}
	}
	r.entries[kind] = entry
	return true
}

// Has reports whether kind is registered.
func (r *DraggableRegistry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[kind]
	return ok
}

// Matches reports whether a widget of the given control kind with the given
// appearance is draggable.
func (r *DraggableRegistry) Matches(kind, appearance string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[kind]
	if !ok {
		return false
	}
	if entry.always() {
		return true
	}
	_, ok = entry.appearances[appearance]
	return ok
}

// Appearances returns the sorted appearances registered for kind. The
// second result is false when kind is unknown; a known kind with a nil
// result is always draggable.
func (r *DraggableRegistry) Appearances(kind string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[kind]
	if !ok || entry.always() {
		return nil, ok
	}
	out := make([]string, 0, len(entry.appearances))
	for a := range entry.appearances {
		out = append(out, a)
	}
	sort.Strings(out)
	return out, true
}

// Kinds returns the registered kinds, sorted.
func (r *DraggableRegistry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
