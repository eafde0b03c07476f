package config

import (
	lua "github.com/yuin/gopher-lua"
)

// sandboxLuaVM strips every global that reaches outside the VM: os and io,
// module loading, and the debug library. string, table and math stay.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range []string{"os", "io", "require", "dofile", "loadfile", "load", "loadstring", "debug", "module", "package"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// newSandboxedVM creates a new Lua VM with sandboxing applied.
func newSandboxedVM() *lua.LState {
	L := lua.NewState()
	sandboxLuaVM(L)
	return L
}
