// Package lua runs search scripts in a restricted gopher-lua state.
//
// A State opens only the base, package, table, string and math libraries.
// The sandbox removes the file and chunk loaders, empties package.path so
// nothing is loaded from disk, and replaces require with a whitelist:
//
//	state, err := lua.NewState(
//	    lua.WithExecutionTimeout(2*time.Second),
//	    lua.WithOutput(os.Stdout),
//	    lua.WithModules(api.LoaderName),
//	)
//	if err != nil {
//	    return err
//	}
//	defer state.Close()
//
//	if err := registry.InjectAll(state.LuaState(), nil); err != nil {
//	    return err
//	}
//	return state.DoFile(ctx, "replace.lua")
//
// Every execution runs under a context bound to the LState, so host calls
// made by the script (see plugin/api) share its deadline. print writes to
// the configured output rather than the process stdout.
package lua
