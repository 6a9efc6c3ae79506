package api

import (
	"context"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/richfind/internal/session"
)

// DefaultCallTimeout bounds a single search call made from Lua.
const DefaultCallTimeout = 5 * time.Second

// SearchProvider defines the interface for find/replace operations.
// *session.SyncAPI implements it.
type SearchProvider interface {
	// Count returns the number of matches of query.
	Count(ctx context.Context, query string) (int, error)

	// Select moves the selection to the next or previous match.
	Select(ctx context.Context, query string, forward bool) (session.SelectResult, error)

	// Replace replaces the selected or first match.
	Replace(ctx context.Context, query, replacement string) (session.ReplaceResult, error)
}

// SearchModule implements the richfind.search API module.
type SearchModule struct {
	ctx     *Context
	timeout time.Duration
}

// SearchOption configures a SearchModule.
type SearchOption func(*SearchModule)

// WithCallTimeout sets how long one call may wait for the session.
func WithCallTimeout(d time.Duration) SearchOption {
	return func(m *SearchModule) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// NewSearchModule creates a new search module.
func NewSearchModule(ctx *Context, opts ...SearchOption) *SearchModule {
	m := &SearchModule{ctx: ctx, timeout: DefaultCallTimeout}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the module name.
func (m *SearchModule) Name() string {
	return "search"
}

// Register registers the module into the Lua state.
func (m *SearchModule) Register(L *lua.LState) error {
	mod := L.NewTable()

	L.SetField(mod, "count", L.NewFunction(m.count))
	L.SetField(mod, "next", L.NewFunction(m.next))
	L.SetField(mod, "prev", L.NewFunction(m.prev))
	L.SetField(mod, "replace", L.NewFunction(m.replace))

	L.SetGlobal("_rf_search", mod)
	return nil
}

func (m *SearchModule) callContext(L *lua.LState) (context.Context, context.CancelFunc) {
	parent := L.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, m.timeout)
}

// count(query) -> number
func (m *SearchModule) count(L *lua.LState) int {
	query := L.CheckString(1)

	if m.ctx.Search == nil {
		L.Push(lua.LNumber(0))
		return 1
	}

	ctx, cancel := m.callContext(L)
	defer cancel()
	n, err := m.ctx.Search.Count(ctx, query)
	if err != nil {
		L.RaiseError("count: %v", err)
		return 0
	}

	L.Push(lua.LNumber(n))
	return 1
}

// next(query) -> index|nil, total
func (m *SearchModule) next(L *lua.LState) int {
	return m.step(L, "next", true)
}

// prev(query) -> index|nil, total
func (m *SearchModule) prev(L *lua.LState) int {
	return m.step(L, "prev", false)
}

func (m *SearchModule) step(L *lua.LState, name string, forward bool) int {
	query := L.CheckString(1)

	if m.ctx.Search == nil {
		L.Push(lua.LNil)
		L.Push(lua.LNumber(0))
		return 2
	}

	ctx, cancel := m.callContext(L)
	defer cancel()
	res, err := m.ctx.Search.Select(ctx, query, forward)
	if err != nil {
		L.RaiseError("%s: %v", name, err)
		return 0
	}

	if res.OK() {
		L.Push(lua.LNumber(res.Index + 1))
	} else {
		L.Push(lua.LNil)
	}
	L.Push(lua.LNumber(res.Total))
	return 2
}

// replace(query, text) -> applied, error|nil
func (m *SearchModule) replace(L *lua.LState) int {
	query := L.CheckString(1)
	text := L.CheckString(2)

	if m.ctx.Search == nil {
		L.RaiseError("replace: no search session available")
		return 0
	}

	ctx, cancel := m.callContext(L)
	defer cancel()
	res, err := m.ctx.Search.Replace(ctx, query, text)
	if err != nil {
		L.RaiseError("replace: %v", err)
		return 0
	}

	L.Push(lua.LBool(res.Outcome == session.OutcomeApplied))
	if res.Err != nil {
		L.Push(lua.LString(res.Err.Error()))
	} else {
		L.Push(lua.LNil)
	}
	return 2
}
