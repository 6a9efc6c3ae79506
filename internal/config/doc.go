// Package config loads the search subsystem configuration.
//
// Configuration is resolved in layers, later layers overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A configuration file, TOML or YAML by extension (Load)
//  3. RICHFIND_* environment variables (ApplyEnv)
//
// Example TOML:
//
//	[search]
//	enabled = true
//	navigation_budget = "100ms"
//	count_budget = "1ms"
//	max_visits_per_turn = 0
//
//	[editor]
//	read_only = false
//
//	[logging]
//	level = "info"
//
// A Watcher reloads the file when it changes on disk and hands the new
// configuration to a callback.
package config
