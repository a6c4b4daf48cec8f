// Package lua runs widget extension scripts for the touch engine.
//
// Toolkits that add draggable widget kinds, or that want the raw touch and
// gesture stream while a pinch is in progress, do so from Lua instead of
// recompiling the engine:
//
//	local touch = require("touch")
//
//	touch.add_draggable("custom.Knob", "knob-thumb")
//	touch.add_draggable("custom.Splitter")
//
//	touch.on_gesture(function(ev)
//	    touch.log(ev.type, ev.scale)
//	end)
//
// The touch module:
//   - add_draggable(kind, appearance...) registers a draggable kind and
//     returns false if the kind is already known. Appearances may also be
//     passed as one table.
//   - set_touch_scrolling(bool) and touch_scrolling() toggle native scrolling.
//   - on_touch(fn) receives raw touch events while mouse emulation is
//     suppressed by a gesture.
//   - on_gesture(fn) receives every gesture event.
//   - log(...) writes an info line to the engine log; print does the same.
//
// # State
//
// State wraps gopher-lua with a sandbox: io, os, debug and package are not
// opened, dofile/loadfile/load are removed and require only returns the
// string, table, math and registered modules. Every chunk and callback runs
// under a deadline (WithExecutionTimeout) and the registry is capped
// (WithRegistryLimit). Errors raised by scripts are *ScriptError values.
package lua
