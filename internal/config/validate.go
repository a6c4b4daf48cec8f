package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/touchemu/internal/dom"
	"github.com/dshills/touchemu/internal/logging"
)

// Validate checks every section and returns all problems joined.
// Each problem is a *ValidationError matching ErrValidationFailed.
func (c *Config) Validate() error {
	var errs []error
	add := func(path, format string, args ...any) {
		errs = append(errs, &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	e := c.Emulation
	if e.DoubleClickInterval <= 0 {
		add("emulation.doubleClickInterval", "must be positive, got %s", e.DoubleClickInterval)
	}
	if e.MoveThreshold < 1 {
		add("emulation.moveThreshold", "must be at least 1, got %d", e.MoveThreshold)
	}
	switch strings.ToLower(e.Platform) {
	case PlatformDefault, PlatformAndroid, PlatformIOS, PlatformDesktop:
	default:
		add("emulation.platform", "unknown platform %q", e.Platform)
	}
	for i, dt := range e.DraggableTypes {
		if dt.Kind == "" {
			add(fmt.Sprintf("emulation.draggableTypes[%d].kind", i), "must not be empty")
		}
	}
	for tag, names := range e.AllowedMouseEvents {
		for _, name := range names {
			if _, ok := dom.ParseMouseType(name); !ok {
				add("emulation.allowedMouseEvents."+tag, "unknown mouse event %q", name)
			}
		}
	}

	if c.ToolTip.ShowInterval < 0 || c.ToolTip.HideInterval < 0 {
		add("tooltip", "intervals must not be negative")
	}

	if !logging.ValidLevel(c.Logging.Level) {
		add("logging.level", "unknown level %q", c.Logging.Level)
	}

	if c.Plugins.Timeout < 0 {
		add("plugins.timeout", "must not be negative")
	}
	if c.Plugins.MemoryLimit < 0 {
		add("plugins.memoryLimit", "must not be negative")
	}

	if c.Remote.Addr == "" {
		add("remote.addr", "must not be empty")
	}
	if !strings.HasPrefix(c.Remote.Path, "/") {
		add("remote.path", "must start with /, got %q", c.Remote.Path)
	}
	if c.Remote.ReadLimit <= 0 {
		add("remote.readLimit", "must be positive")
	}

	return errors.Join(errs...)
}
