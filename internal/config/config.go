package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values.
const (
	DefaultNavigationBudget = 100 * time.Millisecond
	DefaultCountBudget      = time.Millisecond
	DefaultLogLevel         = "info"
)

// Duration is a time.Duration written as a Go duration string ("250ms").
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String returns the duration string.
func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler (used by the TOML decoder).
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// Config is the complete search configuration.
type Config struct {
	Search  SearchConfig  `toml:"search" yaml:"search"`
	Editor  EditorConfig  `toml:"editor" yaml:"editor"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// SearchConfig configures the search session.
type SearchConfig struct {
	// Enabled turns the search plugin on.
	Enabled bool `toml:"enabled" yaml:"enabled"`
	// NavigationBudget is the per-turn budget of find/replace walks.
	NavigationBudget Duration `toml:"navigation_budget" yaml:"navigation_budget"`
	// CountBudget is the per-turn budget of counter walks.
	CountBudget Duration `toml:"count_budget" yaml:"count_budget"`
	// MaxVisitsPerTurn caps leaf visits per turn; 0 means no cap.
	MaxVisitsPerTurn int `toml:"max_visits_per_turn" yaml:"max_visits_per_turn"`
}

// EditorConfig holds editor settings the session honors.
type EditorConfig struct {
	// ReadOnly prevents the replace dialog from opening.
	ReadOnly bool `toml:"read_only" yaml:"read_only"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Search: SearchConfig{
			Enabled:          true,
			NavigationBudget: Duration(DefaultNavigationBudget),
			CountBudget:      Duration(DefaultCountBudget),
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Validate checks every setting.
func (c Config) Validate() error {
	if c.Search.NavigationBudget < 0 {
		return &ValidationError{Key: "search.navigation_budget", Message: "must not be negative"}
	}
	if c.Search.CountBudget < 0 {
		return &ValidationError{Key: "search.count_budget", Message: "must not be negative"}
	}
	if c.Search.MaxVisitsPerTurn < 0 {
		return &ValidationError{Key: "search.max_visits_per_turn", Message: "must not be negative"}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{
			Key:     "logging.level",
			Message: fmt.Sprintf("%q must be debug, info, warn, or error", c.Logging.Level),
		}
	}
	return nil
}
