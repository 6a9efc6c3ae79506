package api

import (
	"fmt"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Version is reported to plugins as richfind.version.
const Version = "1.0.0"

// LoaderName is the name plugins pass to require.
const LoaderName = "richfind"

// Module represents a Lua API module that can be registered with the plugin system.
type Module interface {
	// Name returns the module name (e.g., "search").
	Name() string

	// Register registers the module functions into the Lua state.
	// The module should register itself under the _rf_<name> global.
	Register(L *lua.LState) error
}

// Registry manages API modules and their registration.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewRegistry creates a new API registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]Module),
	}
}

// Register adds a module to the registry.
func (r *Registry) Register(mod Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[mod.Name()]; exists {
		return fmt.Errorf("module %q already registered", mod.Name())
	}
	r.modules[mod.Name()] = mod
	return nil
}

// Get returns a module by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mod, ok := r.modules[name]
	return mod, ok
}

// List returns all registered module names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InjectAll registers the modules accepted by allow into the Lua state and
// installs the richfind loader. A nil allow injects every module.
func (r *Registry) InjectAll(L *lua.LState, allow func(name string) bool) error {
	names := r.List()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var injected []string
	for _, name := range names {
		if allow != nil && !allow(name) {
			continue
		}
		if err := r.modules[name].Register(L); err != nil {
			return fmt.Errorf("failed to register module %q: %w", name, err)
		}
		injected = append(injected, name)
	}

	installLoader(L, injected)
	return nil
}

// installLoader gathers the _rf_* globals into the table returned by
// require("richfind").
func installLoader(L *lua.LState, names []string) {
	root := L.NewTable()
	for _, name := range names {
		global := "_rf_" + name
		if val := L.GetGlobal(global); val != lua.LNil {
			L.SetField(root, name, val)
			L.SetGlobal(global, lua.LNil)
		}
	}
	L.SetField(root, "version", lua.LString(Version))

	L.PreloadModule(LoaderName, func(L *lua.LState) int {
		L.Push(root)
		return 1
	})
}

// Context provides access to editor state for API modules.
type Context struct {
	// Search provides find/replace operations.
	Search SearchProvider
}

// DefaultRegistry creates a registry with all standard modules registered.
func DefaultRegistry(ctx *Context) (*Registry, error) {
	r := NewRegistry()

	modules := []Module{
		NewSearchModule(ctx),
	}
	for _, mod := range modules {
		if err := r.Register(mod); err != nil {
			return nil, fmt.Errorf("failed to register module %q: %w", mod.Name(), err)
		}
	}
	return r, nil
}
