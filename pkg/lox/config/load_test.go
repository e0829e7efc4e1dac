package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.MaxCallDepth != 1024 {
		t.Errorf("expected default max_call_depth 1024, got %d", cfg.MaxCallDepth)
	}
	if cfg.REPL.Prompt != ">> " {
		t.Errorf("expected default prompt %q, got %q", ">> ", cfg.REPL.Prompt)
	}
	if cfg.REPL.HistoryFile == "" {
		t.Error("expected a default history file path")
	}
	if cfg.Watch.DebounceMS != 100 {
		t.Errorf("expected default watch.debounce_ms 100, got %d", cfg.Watch.DebounceMS)
	}
	if cfg.Watch.Debounce() != 100*time.Millisecond {
		t.Errorf("expected debounce duration 100ms, got %v", cfg.Watch.Debounce())
	}
}

func TestInterpolateEnv(t *testing.T) {
	getenv := func(key string) string {
		switch key {
		case "LOX_DEPTH":
			return "256"
		case "LOX_HISTORY":
			return "/var/lox/history"
		default:
			return ""
		}
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple substitution",
			input:    "max_call_depth: ${LOX_DEPTH}",
			expected: "max_call_depth: 256",
		},
		{
			name:     "with default (env set)",
			input:    "max_call_depth: ${LOX_DEPTH:-512}",
			expected: "max_call_depth: 256",
		},
		{
			name:     "with default (env not set)",
			input:    "max_call_depth: ${UNSET_VAR:-512}",
			expected: "max_call_depth: 512",
		},
		{
			name:     "multiple substitutions",
			input:    "history_file: ${LOX_HISTORY}/${LOX_DEPTH}",
			expected: "history_file: /var/lox/history/256",
		},
		{
			name:     "no substitution needed",
			input:    "prompt: 'lox> '",
			expected: "prompt: 'lox> '",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := string(interpolateEnv([]byte(tt.input), getenv))
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "golox.yml")

	configContent := `
max_call_depth: 64

repl:
  prompt: "lox> "
  history_file: ./history

watch:
  debounce_ms: 250
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath, os.Getenv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MaxCallDepth != 64 {
		t.Errorf("expected max_call_depth 64, got %d", cfg.MaxCallDepth)
	}
	if cfg.REPL.Prompt != "lox> " {
		t.Errorf("expected prompt %q, got %q", "lox> ", cfg.REPL.Prompt)
	}
	if cfg.Watch.DebounceMS != 250 {
		t.Errorf("expected watch.debounce_ms 250, got %d", cfg.Watch.DebounceMS)
	}

	// Relative history path is resolved against the config directory
	expectedHistory := filepath.Join(dir, "history")
	if cfg.REPL.HistoryFile != expectedHistory {
		t.Errorf("expected history file %q, got %q", expectedHistory, cfg.REPL.HistoryFile)
	}
	if cfg.BaseDir != dir {
		t.Errorf("expected base dir %q, got %q", dir, cfg.BaseDir)
	}
}

func TestLoadKeepsDefaultsForAbsentKeys(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "golox.yml")

	configContent := `
repl:
  prompt: "> "
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath, os.Getenv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MaxCallDepth != 1024 {
		t.Errorf("expected default max_call_depth 1024, got %d", cfg.MaxCallDepth)
	}
	if cfg.Watch.DebounceMS != 100 {
		t.Errorf("expected default watch.debounce_ms 100, got %d", cfg.Watch.DebounceMS)
	}
	if cfg.REPL.Prompt != "> " {
		t.Errorf("expected prompt %q, got %q", "> ", cfg.REPL.Prompt)
	}
}

func TestLoadWithEnvInterpolation(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "golox.yml")

	configContent := `
max_call_depth: ${LOX_DEPTH:-2048}
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Test with env var set
	getenv := func(key string) string {
		if key == "LOX_DEPTH" {
			return "32"
		}
		return ""
	}

	cfg, err := Load(configPath, getenv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MaxCallDepth != 32 {
		t.Errorf("expected max_call_depth 32, got %d", cfg.MaxCallDepth)
	}

	// Test with env var not set (should use default)
	getenvEmpty := func(key string) string { return "" }
	cfg, err = Load(configPath, getenvEmpty)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MaxCallDepth != 2048 {
		t.Errorf("expected max_call_depth 2048 (default), got %d", cfg.MaxCallDepth)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name      string
		config    string
		expectErr bool
		errSubstr string
	}{
		{
			name:      "valid minimal config",
			config:    "max_call_depth: 16\n",
			expectErr: false,
		},
		{
			name:      "zero call depth",
			config:    "max_call_depth: 0\n",
			expectErr: true,
			errSubstr: "invalid max_call_depth",
		},
		{
			name:      "negative debounce",
			config:    "watch:\n  debounce_ms: -5\n",
			expectErr: true,
			errSubstr: "invalid watch.debounce_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			configPath := filepath.Join(dir, "golox.yml")
			if err := os.WriteFile(configPath, []byte(tt.config), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			_, err := Load(configPath, os.Getenv)

			if tt.expectErr {
				if err == nil {
					t.Error("expected error, got nil")
				} else if tt.errSubstr != "" && !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("expected error containing %q, got %q", tt.errSubstr, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestResolveConfigPath(t *testing.T) {
	// Explicit path not found
	_, err := resolveConfigPath("/nonexistent/path/golox.yml")
	if err == nil {
		t.Error("expected error for nonexistent path")
	}

	// Explicit path found
	dir := t.TempDir()
	configPath := filepath.Join(dir, "custom.yml")
	if err := os.WriteFile(configPath, []byte(""), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	resolved, err := resolveConfigPath(configPath)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if resolved != configPath {
		t.Errorf("expected %q, got %q", configPath, resolved)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load("/nonexistent/golox.yml", os.Getenv)
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("unexpected error message: %v", err)
	}
}
