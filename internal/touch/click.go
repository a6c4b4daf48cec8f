package touch

import (
	"time"

	"github.com/dshills/touchemu/internal/dom"
)

// DefaultDoubleClickInterval is the toolkit-wide double-click time.
const DefaultDoubleClickInterval = 500 * time.Millisecond

// clickMemory remembers the last synthesized click for double-click
// detection.
type clickMemory struct {
	interval time.Duration

	target dom.Element
	time   time.Time
}

func newClickMemory(interval time.Duration) *clickMemory {
	return &clickMemory{interval: interval}
}

// isDoubleClick reports whether a click on target at now completes a
// double click. A negative elapsed time (clock skew) never does.
func (m *clickMemory) isDoubleClick(target dom.Element, now time.Time) bool {
	if m.target == nil || m.target != target {
		return false
	}
	elapsed := now.Sub(m.time)
	return elapsed >= 0 && elapsed < m.interval
}

// record makes target the last clicked element.
func (m *clickMemory) record(target dom.Element, now time.Time) {
	m.target = target
	m.time = now
}

// clear forgets the last click so a third tap starts a new sequence.
func (m *clickMemory) clear() {
	m.target = nil
	m.time = time.Time{}
}
