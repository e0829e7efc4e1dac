package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config represents the complete golox configuration
type Config struct {
	BaseDir      string      `yaml:"-"`              // Directory containing config file, for resolving relative paths
	MaxCallDepth int         `yaml:"max_call_depth"` // Call-stack limit before "Stack overflow." (default: 1024)
	REPL         REPLConfig  `yaml:"repl"`
	Watch        WatchConfig `yaml:"watch"`
}

// REPLConfig holds interactive session settings
type REPLConfig struct {
	HistoryFile string `yaml:"history_file"` // Where input history persists (default: $TMPDIR/.golox_history)
	Prompt      string `yaml:"prompt"`       // Primary prompt (default: ">> ")
}

// WatchConfig holds run --watch settings
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms"` // Delay before re-running after a file change (default: 100)
}

// Debounce returns the watch debounce interval as a Duration.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		MaxCallDepth: 1024,
		REPL: REPLConfig{
			HistoryFile: filepath.Join(os.TempDir(), ".golox_history"),
			Prompt:      ">> ",
		},
		Watch: WatchConfig{
			DebounceMS: 100,
		},
	}
}
