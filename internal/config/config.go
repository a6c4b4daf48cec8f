package config

import (
	"strings"
	"time"

	"github.com/dshills/touchemu/internal/dom"
	"github.com/dshills/touchemu/internal/logging"
	"github.com/dshills/touchemu/internal/touch"
)

// Platform names accepted by emulation.platform.
const (
	PlatformDefault = ""
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
	PlatformDesktop = "desktop"
)

// Config is the complete touchemu configuration.
type Config struct {
	Emulation EmulationConfig `toml:"emulation" yaml:"emulation"`
	ToolTip   ToolTipConfig   `toml:"tooltip" yaml:"tooltip"`
	Logging   LoggingConfig   `toml:"logging" yaml:"logging"`
	Plugins   PluginsConfig   `toml:"plugins" yaml:"plugins"`
	Remote    RemoteConfig    `toml:"remote" yaml:"remote"`

	// Source is the file the configuration was loaded from, if any.
	Source string `toml:"-" yaml:"-"`
}

// EmulationConfig tunes the touch engine.
type EmulationConfig struct {
	// DoubleClickInterval is the double-click time, e.g. "500ms".
	DoubleClickInterval Duration `toml:"doubleClickInterval" yaml:"doubleClickInterval"`

	// MoveThreshold cancels a non-drag touch as a click candidate.
	MoveThreshold int `toml:"moveThreshold" yaml:"moveThreshold"`

	// TouchScrolling enables native scrolling. Ignored on Android.
	TouchScrolling bool `toml:"touchScrolling" yaml:"touchScrolling"`

	// Platform names the browser platform ("", android, ios, desktop).
	Platform string `toml:"platform" yaml:"platform"`

	// DraggableTypes are registered in addition to the built-in table.
	DraggableTypes []DraggableType `toml:"draggableTypes" yaml:"draggableTypes"`

	// AllowedMouseEvents extends the native mouse event allow-list:
	// tag (or "*") to event names.
	AllowedMouseEvents map[string][]string `toml:"allowedMouseEvents" yaml:"allowedMouseEvents"`
}

// DraggableType is one draggable registration.
type DraggableType struct {
	Kind        string   `toml:"kind" yaml:"kind"`
	Appearances []string `toml:"appearances" yaml:"appearances"`
}

// ToolTipConfig holds the tooltip timings used for touch input.
type ToolTipConfig struct {
	ShowInterval Duration `toml:"showInterval" yaml:"showInterval"`
	HideInterval Duration `toml:"hideInterval" yaml:"hideInterval"`
	OffsetX      int      `toml:"offsetX" yaml:"offsetX"`
	OffsetY      int      `toml:"offsetY" yaml:"offsetY"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`

	// File receives log output. Empty means stderr.
	File string `toml:"file" yaml:"file"`
}

// PluginsConfig configures Lua widget extensions.
type PluginsConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`

	// Scripts are loaded in order.
	Scripts []string `toml:"scripts" yaml:"scripts"`

	// Timeout bounds the execution of one script or callback.
	Timeout Duration `toml:"timeout" yaml:"timeout"`

	// MemoryLimit caps the Lua registry size, in slots.
	MemoryLimit int `toml:"memoryLimit" yaml:"memoryLimit"`
}

// RemoteConfig configures the websocket bridge.
type RemoteConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
	Path string `toml:"path" yaml:"path"`

	// AllowedOrigins lists accepted Origin headers. Empty accepts same-host
	// requests only; "*" accepts any origin.
	AllowedOrigins []string `toml:"allowedOrigins" yaml:"allowedOrigins"`

	// ReadLimit caps the size of one client message in bytes.
	ReadLimit int64 `toml:"readLimit" yaml:"readLimit"`

	WriteTimeout Duration `toml:"writeTimeout" yaml:"writeTimeout"`
	PingInterval Duration `toml:"pingInterval" yaml:"pingInterval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	tip := touch.DefaultToolTipSettings()
	return &Config{
		Emulation: EmulationConfig{
			DoubleClickInterval: Duration(touch.DefaultDoubleClickInterval),
			MoveThreshold:       touch.DefaultMoveThreshold,
			TouchScrolling:      true,
		},
		ToolTip: ToolTipConfig{
			ShowInterval: Duration(tip.ShowInterval),
			HideInterval: Duration(tip.HideInterval),
			OffsetX:      tip.OffsetX,
			OffsetY:      tip.OffsetY,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Plugins: PluginsConfig{
			Enabled:     true,
			Timeout:     Duration(time.Second),
			MemoryLimit: 1 << 20,
		},
		Remote: RemoteConfig{
			Addr:         "127.0.0.1:8686",
			Path:         "/touch",
			ReadLimit:    64 << 10,
			WriteTimeout: Duration(5 * time.Second),
			PingInterval: Duration(30 * time.Second),
		},
	}
}

// TouchScrollingEnabled reports whether native scrolling is on for the
// configured platform. Android browsers never scroll natively.
func (c *Config) TouchScrollingEnabled() bool {
	if strings.EqualFold(c.Emulation.Platform, PlatformAndroid) {
		return false
	}
	return c.Emulation.TouchScrolling
}

// EngineConfig converts the emulation and tooltip sections to engine
// settings. The configuration must be valid.
func (c *Config) EngineConfig() touch.Config {
	allowed := touch.DefaultAllowedMouseEvents()
	for tag, names := range c.Emulation.AllowedMouseEvents {
		for _, name := range names {
			if t, ok := dom.ParseMouseType(name); ok {
				allowed.Allow(tag, t)
			}
		}
	}
	var draggable []touch.DraggableType
	for _, dt := range c.Emulation.DraggableTypes {
		draggable = append(draggable, touch.DraggableType{
			Kind:        dt.Kind,
			Appearances: append([]string(nil), dt.Appearances...),
		})
	}
	return touch.Config{
		DoubleClickInterval: c.Emulation.DoubleClickInterval.Std(),
		MoveThreshold:       c.Emulation.MoveThreshold,
		TouchScrolling:      c.TouchScrollingEnabled(),
		AllowedMouseEvents:  allowed,
		DraggableTypes:      draggable,
		ToolTip: dom.ToolTipSettings{
			ShowInterval: c.ToolTip.ShowInterval.Std(),
			HideInterval: c.ToolTip.HideInterval.Std(),
			OffsetX:      c.ToolTip.OffsetX,
			OffsetY:      c.ToolTip.OffsetY,
		},
	}
}

// LoggerConfig converts the logging section.
func (c *Config) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Logging.Level)
	return cfg
}

// Runtime is the part of an engine that accepts configuration changes
// while running. *touch.Engine implements it.
type Runtime interface {
	SetTouchScrolling(enabled bool)
	AddDraggableType(kind string, appearances ...string) bool
}

// Apply pushes the runtime settings to r. Draggable types already known
// to r are left alone. It returns the number of newly registered types.
func (c *Config) Apply(r Runtime) int {
	r.SetTouchScrolling(c.TouchScrollingEnabled())
	added := 0
	for _, dt := range c.Emulation.DraggableTypes {
		if r.AddDraggableType(dt.Kind, dt.Appearances...) {
			added++
		}
	}
	return added
}

// Duration is a time.Duration written as a string ("500ms", "15s").
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String implements fmt.Stringer.
func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
