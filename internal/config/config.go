// Package config holds intentguard's configuration, loaded from
// <workspace>/.orchestration/config.yaml with sensible defaults when the
// file is absent.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all intentguard configuration.
type Config struct {
	// Name is a display name for the orchestrated workspace.
	Name string `yaml:"name"`

	// Logging controls category-file logging under .orchestration/logs/.
	Logging LoggingConfig `yaml:"logging"`

	// Limits bounds the context-size controls applied during context-load.
	Limits ContextLimits `yaml:"limits"`

	// Hooks controls timeouts and behavior of the pipeline engine.
	Hooks HooksConfig `yaml:"hooks"`
}

// LoggingConfig mirrors the teacher's debug_mode knob.
type LoggingConfig struct {
	DebugMode bool `yaml:"debug_mode"`
}

// ContextLimits are the §4.6 context-size controls: maximum entries kept
// from an intent's owned_scope, constraints, and acceptance_criteria when
// loading it into a Hook Context.
type ContextLimits struct {
	MaxOwnedScope         int `yaml:"max_owned_scope"`
	MaxConstraints        int `yaml:"max_constraints"`
	MaxAcceptanceCriteria int `yaml:"max_acceptance_criteria"`
}

// HooksConfig controls engine-level behavior.
type HooksConfig struct {
	// ApprovalTimeoutSeconds is loaded and saved with the rest of the
	// config, but neither the approval gate nor the CLI's terminal prompter
	// reads it: the prompter waits for an answer on stdin with no time limit.
	ApprovalTimeoutSeconds int `yaml:"approval_timeout_seconds"`

	// ConcurrencyLockTimeoutMillis bounds how long the concurrency guard
	// waits to acquire a per-path advisory lock before failing fast.
	ConcurrencyLockTimeoutMillis int `yaml:"concurrency_lock_timeout_millis"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "intentguard",
		Logging: LoggingConfig{
			DebugMode: false,
		},
		Limits: ContextLimits{
			MaxOwnedScope:         10,
			MaxConstraints:        20,
			MaxAcceptanceCriteria: 15,
		},
		Hooks: HooksConfig{
			ApprovalTimeoutSeconds:       120,
			ConcurrencyLockTimeoutMillis: 500,
		},
	}
}

// Path returns the canonical config file path for a workspace root.
func Path(workspace string) string {
	return filepath.Join(workspace, ".orchestration", "config.yaml")
}

// Load reads the config file for workspace, falling back to defaults for
// any field the file doesn't set and returning DefaultConfig() untouched
// when the file doesn't exist yet.
func Load(workspace string) (*Config, error) {
	cfg := DefaultConfig()

	path := Path(workspace)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save persists cfg to the workspace's config file, creating
// .orchestration/ if needed. Lines are wrapped by the yaml.v3 encoder at
// its default width for human editing, matching the teacher's convention
// of keeping generated YAML diff-friendly.
func Save(workspace string, cfg *Config) error {
	dir := filepath.Join(workspace, ".orchestration")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("config: create %s: %w", dir, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	if err := os.WriteFile(Path(workspace), data, 0644); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	return nil
}
