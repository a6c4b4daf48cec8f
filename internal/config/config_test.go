package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/touchemu/internal/dom"
	"github.com/dshills/touchemu/internal/logging"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}

	ec := cfg.EngineConfig()
	if ec.DoubleClickInterval != 500*time.Millisecond {
		t.Errorf("DoubleClickInterval = %v, want 500ms", ec.DoubleClickInterval)
	}
	if ec.MoveThreshold != 15 {
		t.Errorf("MoveThreshold = %d, want 15", ec.MoveThreshold)
	}
	if !ec.TouchScrolling {
		t.Error("TouchScrolling = false by default")
	}
	if ec.ToolTip.ShowInterval != 600*time.Millisecond || ec.ToolTip.OffsetY != -100 {
		t.Errorf("ToolTip = %+v", ec.ToolTip)
	}
}

func TestLoadFileTOML(t *testing.T) {
	path := writeFile(t, "touchemu.toml", `
[emulation]
doubleClickInterval = "300ms"
moveThreshold = 20
platform = "ios"

[[emulation.draggableTypes]]
kind = "custom.Knob"
appearances = ["knob-thumb"]

[emulation.allowedMouseEvents]
SELECT = ["mousedown", "click"]

[logging]
level = "debug"

[remote]
addr = ":9000"
`)
	cfg := Default()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Emulation.DoubleClickInterval.Std() != 300*time.Millisecond {
		t.Errorf("DoubleClickInterval = %v, want 300ms", cfg.Emulation.DoubleClickInterval)
	}
	if cfg.Emulation.MoveThreshold != 20 {
		t.Errorf("MoveThreshold = %d, want 20", cfg.Emulation.MoveThreshold)
	}
	if len(cfg.Emulation.DraggableTypes) != 1 || cfg.Emulation.DraggableTypes[0].Kind != "custom.Knob" {
		t.Errorf("DraggableTypes = %+v", cfg.Emulation.DraggableTypes)
	}
	if cfg.Remote.Addr != ":9000" {
		t.Errorf("Remote.Addr = %q, want :9000", cfg.Remote.Addr)
	}
	// Untouched settings keep their defaults.
	if cfg.Remote.Path != "/touch" {
		t.Errorf("Remote.Path = %q, want /touch", cfg.Remote.Path)
	}
	if !cfg.Emulation.TouchScrolling {
		t.Error("TouchScrolling lost its default")
	}
	if cfg.Source != path {
		t.Errorf("Source = %q, want %q", cfg.Source, path)
	}
	if cfg.LoggerConfig().Level != logging.LevelDebug {
		t.Errorf("LoggerConfig().Level = %v, want debug", cfg.LoggerConfig().Level)
	}

	allowed := cfg.EngineConfig().AllowedMouseEvents
	if !allowed.Permits("SELECT", dom.Click) {
		t.Error("configured allow-list entry missing")
	}
	if !allowed.Permits("INPUT", dom.MouseDown) {
		t.Error("default allow-list entry lost")
	}
}

func TestLoadFileYAML(t *testing.T) {
	path := writeFile(t, "touchemu.yaml", `
emulation:
  touchScrolling: false
  draggableTypes:
    - kind: custom.Dial
tooltip:
  showInterval: 1s
plugins:
  scripts: [a.lua, b.lua]
`)
	cfg := Default()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Emulation.TouchScrolling {
		t.Error("TouchScrolling = true, want false")
	}
	if cfg.ToolTip.ShowInterval.Std() != time.Second {
		t.Errorf("ShowInterval = %v, want 1s", cfg.ToolTip.ShowInterval)
	}
	if cfg.ToolTip.HideInterval.Std() != 15*time.Second {
		t.Errorf("HideInterval = %v, want default 15s", cfg.ToolTip.HideInterval)
	}
	if len(cfg.Plugins.Scripts) != 2 || cfg.Plugins.Scripts[1] != "b.lua" {
		t.Errorf("Scripts = %v", cfg.Plugins.Scripts)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		target  error
		line    int
	}{
		{"unsupported", "touchemu.ini", "a=1", ErrUnsupportedFormat, 0},
		{"toml syntax", "bad.toml", "[emulation]\nmoveThreshold = = 3\n", nil, 2},
		{"toml unknown key", "unknown.toml", "[emulation]\nmoveTreshold = 3\n", nil, 2},
		{"yaml unknown key", "unknown.yaml", "emulation:\n  moveTreshold: 3\n", nil, 2},
		{"bad duration", "dur.toml", "[emulation]\ndoubleClickInterval = \"soon\"\n", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			err := Default().LoadFile(path)
			if err == nil {
				t.Fatal("LoadFile() error = nil")
			}
			if tt.target != nil {
				if !errors.Is(err, tt.target) {
					t.Errorf("LoadFile() error = %v, want %v", err, tt.target)
				}
				return
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("LoadFile() error = %T %v, want *ParseError", err, err)
			}
			if pe.Path != path {
				t.Errorf("ParseError.Path = %q, want %q", pe.Path, path)
			}
			if tt.line > 0 && pe.Line != tt.line {
				t.Errorf("ParseError.Line = %d, want %d (%v)", pe.Line, tt.line, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want not exist", err)
	}
}

func TestLoadEnv(t *testing.T) {
	l := NewEnvLoader(EnvPrefix)
	l.environ = func() []string {
		return []string{
			"HOME=/root",
			"TOUCHEMU_EMULATION_MOVE_THRESHOLD=25",
			"TOUCHEMU_EMULATION_DOUBLE_CLICK_INTERVAL=250ms",
			"TOUCHEMU_EMULATION_TOUCH_SCROLLING=off",
			"TOUCHEMU_LOG_LEVEL=warn",
			"TOUCHEMU_PLATFORM=android",
			"TOUCHEMU_REMOTE_ALLOWED_ORIGINS=[\"https://a.example\"]",
			"TOUCHEMU_VERBOSE=1",
		}
	}

	cfg := Default()
	if err := cfg.LoadEnv(l); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if cfg.Emulation.MoveThreshold != 25 {
		t.Errorf("MoveThreshold = %d, want 25", cfg.Emulation.MoveThreshold)
	}
	if cfg.Emulation.DoubleClickInterval.Std() != 250*time.Millisecond {
		t.Errorf("DoubleClickInterval = %v, want 250ms", cfg.Emulation.DoubleClickInterval)
	}
	if cfg.Emulation.TouchScrolling {
		t.Error("TouchScrolling = true, want false")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Emulation.Platform != PlatformAndroid {
		t.Errorf("Platform = %q, want android", cfg.Emulation.Platform)
	}
	if len(cfg.Remote.AllowedOrigins) != 1 || cfg.Remote.AllowedOrigins[0] != "https://a.example" {
		t.Errorf("AllowedOrigins = %v", cfg.Remote.AllowedOrigins)
	}
}

func TestEnvToPath(t *testing.T) {
	l := NewEnvLoader(EnvPrefix)
	tests := []struct {
		env  string
		want string
	}{
		{"TOUCHEMU_EMULATION_MOVE_THRESHOLD", "emulation.moveThreshold"},
		{"TOUCHEMU_REMOTE_ADDR", "remote.addr"},
		{"TOUCHEMU_TOOLTIP_OFFSET_X", "tooltip.offsetX"},
		{"TOUCHEMU_PLUGINS", "plugins"},
	}
	for _, tt := range tests {
		if got := l.envToPath(tt.env); got != tt.want {
			t.Errorf("envToPath(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestAndroidDisablesTouchScrolling(t *testing.T) {
	cfg := Default()
	cfg.Emulation.Platform = "Android"
	if cfg.TouchScrollingEnabled() {
		t.Error("TouchScrollingEnabled() = true on android")
	}
	if cfg.EngineConfig().TouchScrolling {
		t.Error("EngineConfig().TouchScrolling = true on android")
	}
	cfg.Emulation.Platform = PlatformIOS
	if !cfg.TouchScrollingEnabled() {
		t.Error("TouchScrollingEnabled() = false on ios")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Emulation.MoveThreshold = 0
	cfg.Emulation.Platform = "symbian"
	cfg.Emulation.DraggableTypes = []DraggableType{{Kind: ""}}
	cfg.Emulation.AllowedMouseEvents = map[string][]string{"DIV": {"tap"}}
	cfg.Logging.Level = "loud"
	cfg.Remote.Path = "touch"

	err := cfg.Validate()
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("Validate() error = %v, want ErrValidationFailed", err)
	}
	for _, path := range []string{
		"emulation.moveThreshold",
		"emulation.platform",
		"emulation.draggableTypes[0].kind",
		"emulation.allowedMouseEvents.DIV",
		"logging.level",
		"remote.path",
	} {
		if !strings.Contains(err.Error(), path) {
			t.Errorf("Validate() error does not mention %s: %v", path, err)
		}
	}
}

type fakeRuntime struct {
	scrolling bool
	kinds     map[string][]string
}

func (r *fakeRuntime) SetTouchScrolling(v bool) { r.scrolling = v }

func (r *fakeRuntime) AddDraggableType(kind string, appearances ...string) bool {
	if _, ok := r.kinds[kind]; ok {
		return false
	}
	r.kinds[kind] = appearances
	return true
}

func TestApply(t *testing.T) {
	r := &fakeRuntime{scrolling: true, kinds: map[string][]string{"existing": nil}}
	cfg := Default()
	cfg.Emulation.Platform = PlatformAndroid
	cfg.Emulation.DraggableTypes = []DraggableType{
		{Kind: "existing", Appearances: []string{"x"}},
		{Kind: "custom.Knob", Appearances: []string{"knob-thumb"}},
	}

	if n := cfg.Apply(r); n != 1 {
		t.Errorf("Apply() = %d, want 1", n)
	}
	if r.scrolling {
		t.Error("touch scrolling still enabled")
	}
	if r.kinds["existing"] != nil {
		t.Error("existing kind was overwritten")
	}
}

func TestEngineConfigCarriesDraggableTypes(t *testing.T) {
	cfg := Default()
	cfg.Emulation.DraggableTypes = []DraggableType{{Kind: "custom.Knob", Appearances: []string{"knob-thumb"}}}

	ec := cfg.EngineConfig()
	if len(ec.DraggableTypes) != 1 || ec.DraggableTypes[0].Kind != "custom.Knob" {
		t.Fatalf("DraggableTypes = %+v", ec.DraggableTypes)
	}
	cfg.Emulation.DraggableTypes[0].Appearances[0] = "changed"
	if ec.DraggableTypes[0].Appearances[0] != "knob-thumb" {
		t.Error("engine config shares appearances with the file config")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Emulation.DraggableTypes = []DraggableType{{Kind: "custom.Knob"}}

	for _, format := range []Format{FormatTOML, FormatYAML} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := cfg.Encode(&buf, format); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if !strings.Contains(buf.String(), "500ms") {
				t.Errorf("encoded config lacks the duration text:\n%s", buf.String())
			}

			got := &Config{}
			if err := got.Decode("buffer", format, &buf); err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got.Emulation.DoubleClickInterval != cfg.Emulation.DoubleClickInterval {
				t.Errorf("DoubleClickInterval = %v, want %v", got.Emulation.DoubleClickInterval, cfg.Emulation.DoubleClickInterval)
			}
			if len(got.Emulation.DraggableTypes) != 1 {
				t.Errorf("DraggableTypes = %+v", got.Emulation.DraggableTypes)
			}
		})
	}
}
