package lua

import (
	"fmt"
	"io"
	"slices"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// builtinModules are the opened libraries require may return.
var builtinModules = []string{"string", "table", "math"}

// Sandbox restricts what a script can reach.
type Sandbox struct {
	L       *lua.LState
	output  io.Writer
	allowed map[string]bool
}

// NewSandbox creates a sandbox permitting the built-in modules plus the
// given preloaded ones.
func NewSandbox(L *lua.LState, output io.Writer, modules []string) *Sandbox {
	allowed := make(map[string]bool, len(builtinModules)+len(modules))
	for _, name := range builtinModules {
		allowed[name] = true
	}
	for _, name := range modules {
		allowed[name] = true
	}
	return &Sandbox{L: L, output: output, allowed: allowed}
}

// Install applies the restrictions.
func (s *Sandbox) Install() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.installPrint()
	s.installRequire()
}

// Allowed returns the sorted module names require accepts.
func (s *Sandbox) Allowed() []string {
	names := make([]string, 0, len(s.allowed))
	for name := range s.allowed {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s *Sandbox) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		fmt.Fprintln(s.output, strings.Join(parts, "\t"))
		return 0
	}))
}

// installRequire empties the search paths and wraps require so only
// whitelisted modules load.
func (s *Sandbox) installRequire() {
	if pkg, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkg, "path", lua.LString(""))
		s.L.SetField(pkg, "cpath", lua.LString(""))
	}

	original := s.L.GetGlobal("require")
	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !s.allowed[name] {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(original)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}
