// Package replay runs recorded touch traces against the demo scene.
//
// A trace is a YAML list of native events. Each step may wait a virtual
// amount of time first, so double-click intervals and session durations
// replay deterministically:
//
//	name: double tap
//	steps:
//	  - {type: touchstart, x: 5, y: 2}
//	  - {type: touchend, x: 5, y: 2, after: 40ms}
//	  - {type: tap, x: 5, y: 2, after: 200ms}
//
// Step types are the touch and gesture event names, orientationchange, and
// tap as a shorthand for touchstart followed by touchend.
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/touchemu/internal/config"
	"github.com/dshills/touchemu/internal/dom"
)

// StepTap is the tap shorthand.
const StepTap = "tap"

// StepOrientation is the orientation change step.
const StepOrientation = "orientationchange"

// Trace is a recorded input sequence.
type Trace struct {
	Name string `yaml:"name"`

	// TouchScrolling overrides the engine setting when set.
	TouchScrolling *bool `yaml:"touchScrolling"`

	// Draggable lists extra draggable widget kinds.
	Draggable []config.DraggableType `yaml:"draggable"`

	Steps []Step `yaml:"steps"`
}

// Step is one native event.
type Step struct {
	Type string `yaml:"type"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`

	// After is the virtual delay before the step.
	After config.Duration `yaml:"after"`

	Scale       float64 `yaml:"scale"`
	Rotation    float64 `yaml:"rotation"`
	Orientation int     `yaml:"orientation"`
}

// StepError reports an invalid step.
type StepError struct {
	Index int
	Type  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%q): %v", e.Index+1, e.Type, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Sentinel errors.
var (
	ErrEmptyTrace    = errors.New("trace has no steps")
	ErrUnknownStep   = errors.New("unknown step type")
	ErrNegativeDelay = errors.New("negative delay")
)

// Parse decodes a trace. Unknown fields are rejected.
func Parse(r io.Reader) (*Trace, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var t Trace
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyTrace
		}
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseBytes decodes a trace held in memory.
func ParseBytes(b []byte) (*Trace, error) {
	return Parse(bytes.NewReader(b))
}

// LoadFile reads and decodes a trace file.
func LoadFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if t.Name == "" {
		t.Name = path
	}
	return t, nil
}

// Validate checks every step and fills in defaults.
func (t *Trace) Validate() error {
	if len(t.Steps) == 0 {
		return ErrEmptyTrace
	}
	for i := range t.Steps {
		s := &t.Steps[i]
		if !knownStep(s.Type) {
			return &StepError{Index: i, Type: s.Type, Err: ErrUnknownStep}
		}
		if s.After < 0 {
			return &StepError{Index: i, Type: s.Type, Err: ErrNegativeDelay}
		}
		if _, ok := dom.ParseGestureType(s.Type); ok && s.Scale == 0 {
			s.Scale = 1
		}
	}
	return nil
}

func knownStep(name string) bool {
	if name == StepTap || name == StepOrientation {
		return true
	}
	if _, ok := dom.ParseTouchType(name); ok {
		return true
	}
	_, ok := dom.ParseGestureType(name)
	return ok
}
