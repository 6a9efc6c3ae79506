package app

import (
	"context"
	"fmt"

	"github.com/dshills/richfind/internal/plugin/api"
	"github.com/dshills/richfind/internal/plugin/lua"
)

// runScript executes a Lua file with the richfind module available.
func (app *Application) runScript(ctx context.Context, path string) error {
	state, err := lua.NewState(
		lua.WithOutput(app.out),
		lua.WithModules(api.LoaderName),
		lua.WithExecutionTimeout(app.opts.ScriptTimeout),
	)
	if err != nil {
		return err
	}
	defer state.Close()

	if err := app.plugins.InjectAll(state.LuaState(), nil); err != nil {
		return err
	}
	if err := state.DoFile(ctx, path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}
