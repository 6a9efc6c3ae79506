package config

import (
	"fmt"
	"strconv"
)

// Environment variables overriding file settings.
const (
	EnvNavigationBudget = "RICHFIND_NAVIGATION_BUDGET"
	EnvCountBudget      = "RICHFIND_COUNT_BUDGET"
	EnvMaxVisits        = "RICHFIND_MAX_VISITS"
	EnvReadOnly         = "RICHFIND_READ_ONLY"
	EnvLogLevel         = "RICHFIND_LOG_LEVEL"
	EnvEnabled          = "RICHFIND_ENABLED"
)

// LookupFunc looks up an environment variable (os.LookupEnv).
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg with environment variables. Empty values are
// treated as set.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if v, ok := lookup(EnvNavigationBudget); ok {
		if err := cfg.Search.NavigationBudget.UnmarshalText([]byte(v)); err != nil {
			return envError(EnvNavigationBudget, err)
		}
	}
	if v, ok := lookup(EnvCountBudget); ok {
		if err := cfg.Search.CountBudget.UnmarshalText([]byte(v)); err != nil {
			return envError(EnvCountBudget, err)
		}
	}
	if v, ok := lookup(EnvMaxVisits); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError(EnvMaxVisits, err)
		}
		cfg.Search.MaxVisitsPerTurn = n
	}
	if v, ok := lookup(EnvReadOnly); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError(EnvReadOnly, err)
		}
		cfg.Editor.ReadOnly = b
	}
	if v, ok := lookup(EnvEnabled); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError(EnvEnabled, err)
		}
		cfg.Search.Enabled = b
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.Logging.Level = v
	}
	return nil
}

func envError(key string, err error) error {
	return fmt.Errorf("environment %s: %w", key, err)
}
