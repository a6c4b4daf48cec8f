package lua

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	glua "github.com/yuin/gopher-lua"

	"github.com/dshills/touchemu/internal/dom"
	"github.com/dshills/touchemu/internal/scene"
	"github.com/dshills/touchemu/internal/touch"
)

func newHost(t *testing.T) (*Host, *scene.Scene, *touch.Engine) {
	t.Helper()
	s := scene.New()
	e, err := s.Attach(touch.DefaultConfig())
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	h := NewHost(e, nil)
	t.Cleanup(func() { h.Close() })
	return h, s, e
}

func TestAddDraggable(t *testing.T) {
	h, s, e := newHost(t)
	err := h.LoadString("init.lua", `
local touch = require("touch")
added_button = touch.add_draggable("org.eclipse.swt.widgets.Button")
added_shell = touch.add_draggable("org.eclipse.swt.widgets.Shell", "ignored")
added_knob = touch.add_draggable("custom.Knob", {"knob-thumb", "knob-ring"})
`)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}

	if h.State().GetGlobal("added_button") != glua.LTrue {
		t.Error("add_draggable(Button) did not return true")
	}
	if h.State().GetGlobal("added_shell") != glua.LFalse {
		t.Error("add_draggable(Shell) overwrote the built-in entry")
	}
	apps, ok := e.Registry().Appearances("custom.Knob")
	if !ok || len(apps) != 2 || apps[0] != "knob-ring" {
		t.Errorf("Appearances(custom.Knob) = %v, %v", apps, ok)
	}
	if apps, _ := e.Registry().Appearances("org.eclipse.swt.widgets.Shell"); apps != nil {
		t.Errorf("Shell appearances = %v, want always draggable", apps)
	}

	// Buttons now drag instead of click.
	s.Down(5, 2)
	if sess := e.Session(); sess == nil || !sess.IsDrag() {
		t.Fatalf("session = %v, want drag", sess)
	}
	s.Move(8, 2)
	s.Up(8, 2)
	if s.Clicks("ok") != 0 {
		t.Error("dragged button was clicked")
	}
}

func TestTouchScrolling(t *testing.T) {
	h, _, e := newHost(t)
	err := h.LoadString("init.lua", `
before = touch.touch_scrolling()
touch.set_touch_scrolling(false)
`)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if h.State().GetGlobal("before") != glua.LTrue {
		t.Error("touch_scrolling() was false before")
	}
	if e.TouchScrolling() {
		t.Error("TouchScrolling() = true after set_touch_scrolling(false)")
	}
}

func TestGestureAndTouchListeners(t *testing.T) {
	h, s, _ := newHost(t)
	err := h.LoadString("init.lua", `
gestures = {}
touches = {}
touch.on_gesture(function(ev)
  table.insert(gestures, ev.type .. ":" .. ev.scale)
end)
touch.on_touch(function(ev)
  table.insert(touches, ev.type .. "@" .. ev.x .. "," .. ev.y)
end)
`)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}

	s.Tap(5, 2)
	s.Gesture(dom.GestureStart, 5, 2, 1, 0)
	s.Down(5, 2)
	s.Move(6, 3)
	s.Gesture(dom.GestureChange, 5, 2, 2, 0)
	s.Up(6, 3)
	s.Gesture(dom.GestureEnd, 5, 2, 2.5, 0)
	s.Tap(5, 2)

	wantGestures := []string{"gesturestart:1", "gesturechange:2", "gestureend:2.5"}
	checkList(t, h, "gestures", wantGestures)

	// Only the touches delivered while the gesture suppressed emulation.
	wantTouches := []string{"touchstart@5,2", "touchmove@6,3", "touchend@6,3"}
	checkList(t, h, "touches", wantTouches)

	if h.Failures() != 0 {
		t.Errorf("Failures() = %d", h.Failures())
	}
}

func TestCallbackErrorsAreContained(t *testing.T) {
	h, s, e := newHost(t)
	err := h.LoadString("init.lua", `
touch.on_gesture(function(ev) error("bad listener") end)
`)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}

	s.Gesture(dom.GestureStart, 5, 2, 1, 0)
	s.Gesture(dom.GestureEnd, 5, 2, 1, 0)
	if got := h.Failures(); got != 2 {
		t.Errorf("Failures() = %d, want 2", got)
	}
	if !e.MouseEnabled() {
		t.Error("engine stuck with emulation disabled")
	}
	s.Tap(5, 2)
	if s.Clicks("ok") != 1 {
		t.Errorf("Clicks(ok) = %d, want 1", s.Clicks("ok"))
	}
}

func TestLoadFilesContinuesAfterError(t *testing.T) {
	h, _, e := newHost(t)
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.lua")
	good := filepath.Join(dir, "good.lua")
	if err := os.WriteFile(bad, []byte("touch.add_draggable(\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(good, []byte(`touch.add_draggable("custom.Dial")`), 0o644); err != nil {
		t.Fatal(err)
	}

	err := h.LoadFiles(bad, good)
	var se *ScriptError
	if !errors.As(err, &se) || se.Script != bad {
		t.Fatalf("LoadFiles() error = %v, want ScriptError for %s", err, bad)
	}
	if !e.Registry().Has("custom.Dial") {
		t.Error("good.lua was not run")
	}
}

func TestCloseRemovesListeners(t *testing.T) {
	h, s, _ := newHost(t)
	if err := h.LoadString("init.lua", `
count = 0
touch.on_gesture(function(ev) count = count + 1 end)
`); err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	// Must not call into the closed state.
	s.Gesture(dom.GestureStart, 5, 2, 1, 0)
	if h.Failures() != 0 {
		t.Errorf("Failures() = %d after Close", h.Failures())
	}
}

func checkList(t *testing.T, h *Host, global string, want []string) {
	t.Helper()
	tbl, ok := h.State().GetGlobal(global).(*glua.LTable)
	if !ok {
		t.Fatalf("%s is not a table", global)
	}
	if tbl.Len() != len(want) {
		t.Fatalf("%s has %d entries, want %v", global, tbl.Len(), want)
	}
	for i, w := range want {
		if got := tbl.RawGetInt(i + 1).String(); got != w {
			t.Errorf("%s[%d] = %q, want %q", global, i+1, got, w)
		}
	}
}
