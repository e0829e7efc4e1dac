package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations; when no file
// exists anywhere, the defaults are returned as-is.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Defaults(), nil
	}

	// Get absolute path and directory for resolving relative paths
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	baseDir := filepath.Dir(absPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Interpolate environment variables
	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.BaseDir = baseDir

	// Resolve relative history path
	if cfg.REPL.HistoryFile != "" && !filepath.IsAbs(cfg.REPL.HistoryFile) {
		cfg.REPL.HistoryFile = filepath.Join(baseDir, cfg.REPL.HistoryFile)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > ./golox.yml > ~/.config/golox/config.yml.
// An empty path with a nil error means no config file exists and the
// caller should fall back to defaults.
func resolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	// Try ./golox.yml
	if _, err := os.Stat("golox.yml"); err == nil {
		return "golox.yml", nil
	}

	// Try ~/.config/golox/config.yml
	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "golox", "config.yml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := string(parts[1])
		value := getenv(varName)

		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	var errs []string

	if cfg.MaxCallDepth < 1 {
		errs = append(errs, fmt.Sprintf("invalid max_call_depth: %d (must be at least 1)", cfg.MaxCallDepth))
	}
	if cfg.Watch.DebounceMS < 0 {
		errs = append(errs, fmt.Sprintf("invalid watch.debounce_ms: %d (must not be negative)", cfg.Watch.DebounceMS))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
