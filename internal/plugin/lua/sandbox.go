package lua

import (
	lua "github.com/yuin/gopher-lua"
)

// modulesKey names the registry table of modules require may return.
const modulesKey = "touchemu.modules"

// installSandbox removes the loaders that reach the file system or compile
// arbitrary strings and replaces require with a lookup of registered
// modules.
func installSandbox(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "module"} {
		L.SetGlobal(name, lua.LNil)
	}

	mods := L.NewTable()
	for _, name := range []string{"string", "table", "math"} {
		mods.RawSetString(name, L.GetGlobal(name))
	}
	L.SetField(L.Get(lua.RegistryIndex), modulesKey, mods)

	L.SetGlobal("require", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		mod := mods.RawGetString(name)
		if mod == lua.LNil {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(mod)
		return 1
	}))
}

// allowModule makes mod loadable as require(name).
func allowModule(L *lua.LState, name string, mod lua.LValue) {
	if mods, ok := L.GetField(L.Get(lua.RegistryIndex), modulesKey).(*lua.LTable); ok {
		mods.RawSetString(name, mod)
	}
}
