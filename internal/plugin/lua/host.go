package lua

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/touchemu/internal/dom"
	"github.com/dshills/touchemu/internal/logging"
)

// ModuleName is the global (and require name) of the touch module.
const ModuleName = "touch"

// Engine is the part of the touch engine scripts can reach.
// *touch.Engine implements it.
type Engine interface {
	AddDraggableType(kind string, appearances ...string) bool
	SetTouchScrolling(enabled bool)
	TouchScrolling() bool
	SetTouchListener(fn func(*dom.TouchEvent))
	SetGestureListener(fn func(*dom.GestureEvent))
}

// Host runs widget extension scripts against one engine.
//
// Callbacks registered with touch.on_touch and touch.on_gesture become the
// engine's touch and gesture listeners, so they run on the goroutine that
// delivers input.
type Host struct {
	state  *State
	engine Engine
	logger *logging.Logger

	touchFns   []*lua.LFunction
	gestureFns []*lua.LFunction

	failures atomic.Int64
}

// NewHost creates a host with a fresh sandboxed state and the touch module
// installed.
func NewHost(engine Engine, logger *logging.Logger, opts ...StateOption) *Host {
	if logger == nil {
		logger = logging.Nop()
	}
	h := &Host{
		state:  NewState(opts...),
		engine: engine,
		logger: logger.WithComponent("lua"),
	}
	h.state.RegisterModule(ModuleName, map[string]lua.LGFunction{
		"add_draggable":       h.luaAddDraggable,
		"set_touch_scrolling": h.luaSetTouchScrolling,
		"touch_scrolling":     h.luaTouchScrolling,
		"on_touch":            h.luaOnTouch,
		"on_gesture":          h.luaOnGesture,
		"log":                 h.luaLog,
	})
	h.state.RegisterFunc("print", h.luaLog)
	return h
}

// State returns the underlying state.
func (h *Host) State() *State { return h.state }

// Failures returns how many callbacks failed.
func (h *Host) Failures() int64 { return h.failures.Load() }

// LoadFiles runs the scripts in order. A failing script does not stop the
// others; all errors are returned joined.
func (h *Host) LoadFiles(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if err := h.state.DoFile(p); err != nil {
			h.logger.Error("script %s: %v", p, err)
			errs = append(errs, err)
			continue
		}
		h.logger.Info("script %s loaded", p)
	}
	return errors.Join(errs...)
}

// LoadString runs a chunk of code named name.
func (h *Host) LoadString(name, code string) error {
	return h.state.DoString(name, code)
}

// Close removes the listeners from the engine and closes the state.
func (h *Host) Close() error {
	if len(h.touchFns) > 0 {
		h.engine.SetTouchListener(nil)
	}
	if len(h.gestureFns) > 0 {
		h.engine.SetGestureListener(nil)
	}
	h.touchFns, h.gestureFns = nil, nil
	return h.state.Close()
}

func (h *Host) luaAddDraggable(L *lua.LState) int {
	kind := L.CheckString(1)
	var appearances []string
	if t, ok := L.Get(2).(*lua.LTable); ok {
		t.ForEach(func(_, v lua.LValue) {
			appearances = append(appearances, v.String())
		})
	} else {
		for i := 2; i <= L.GetTop(); i++ {
			appearances = append(appearances, L.CheckString(i))
		}
	}
	L.Push(lua.LBool(h.engine.AddDraggableType(kind, appearances...)))
	return 1
}

func (h *Host) luaSetTouchScrolling(L *lua.LState) int {
	h.engine.SetTouchScrolling(L.CheckBool(1))
	return 0
}

func (h *Host) luaTouchScrolling(L *lua.LState) int {
	L.Push(lua.LBool(h.engine.TouchScrolling()))
	return 1
}

func (h *Host) luaOnTouch(L *lua.LState) int {
	fn := L.CheckFunction(1)
	if len(h.touchFns) == 0 {
		h.engine.SetTouchListener(h.dispatchTouch)
	}
	h.touchFns = append(h.touchFns, fn)
	return 0
}

func (h *Host) luaOnGesture(L *lua.LState) int {
	fn := L.CheckFunction(1)
	if len(h.gestureFns) == 0 {
		h.engine.SetGestureListener(h.dispatchGesture)
	}
	h.gestureFns = append(h.gestureFns, fn)
	return 0
}

func (h *Host) luaLog(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	h.logger.Info("%s", strings.Join(parts, " "))
	return 0
}

func (h *Host) dispatchTouch(ev *dom.TouchEvent) {
	for _, fn := range h.touchFns {
		h.invoke("on_touch", fn, func(L *lua.LState) []lua.LValue {
			return []lua.LValue{touchTable(L, ev)}
		})
	}
}

func (h *Host) dispatchGesture(ev *dom.GestureEvent) {
	for _, fn := range h.gestureFns {
		h.invoke("on_gesture", fn, func(L *lua.LState) []lua.LValue {
			return []lua.LValue{gestureTable(L, ev)}
		})
	}
}

func (h *Host) invoke(name string, fn *lua.LFunction, args func(L *lua.LState) []lua.LValue) {
	if err := h.state.Invoke(name, fn, args); err != nil {
		h.failures.Add(1)
		h.logger.Warn("%s callback: %v", name, err)
	}
}

// touchTable converts ev to {type, target, x, y, touches}.
func touchTable(L *lua.LState, ev *dom.TouchEvent) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("type", lua.LString(ev.Type.String()))
	t.RawSetString("target", lua.LString(elementName(ev.Target)))
	if pt, ok := ev.FirstTouch(); ok {
		t.RawSetString("x", lua.LNumber(pt.ClientX))
		t.RawSetString("y", lua.LNumber(pt.ClientY))
	}
	t.RawSetString("touches", lua.LNumber(len(ev.Touches)))
	return t
}

// gestureTable converts ev to {type, target, scale, rotation}.
func gestureTable(L *lua.LState, ev *dom.GestureEvent) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("type", lua.LString(ev.Type.String()))
	t.RawSetString("target", lua.LString(elementName(ev.Target)))
	t.RawSetString("scale", lua.LNumber(ev.Scale))
	t.RawSetString("rotation", lua.LNumber(ev.Rotation))
	return t
}

func elementName(el dom.Element) string {
	switch v := el.(type) {
	case nil:
		return ""
	case fmt.Stringer:
		return v.String()
	default:
		return strings.ToLower(v.TagName())
	}
}
