// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	ralphDir      string // Path to .ralph directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/ralph)
}

// NewLoader creates a new Loader.
func NewLoader(ralphDir string) *Loader {
	return &Loader{
		ralphDir:      ralphDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(ralphDir, globalConfDir string) *Loader {
	return &Loader{
		ralphDir:      ralphDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// knownKeys lists the keys accepted in each section.
var knownKeys = map[string][]string{
	"project":   {"default"},
	"estimate":  {"target_tokens"},
	"scheduler": {"slices"},
	"workers":   {"count", "branch_prefix", "worktrees", "base_branch"},
	"heal":      {"max_attempts", "command_timeout"},
	"ai":        {"provider", "model", "ollama_url", "timeout", "claude_command", "acp_command"},
	"search":    {"top_k", "include", "exclude"},
	"store":     {"type", "namespace"},
	"log":       {"level"},
}

// Load returns the merged configuration.
// Merge order: defaults <- global <- repo (later takes precedence).
func (l *Loader) Load() (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()

	if l.globalConfDir != "" {
		if err := l.applyFile(cfg, filepath.Join(l.globalConfDir, domain.ConfigFileName)); err != nil {
			return nil, err
		}
	}
	if err := l.applyFile(cfg, domain.RepoConfigPath(l.ralphDir)); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadGlobal returns the defaults overlaid with the global configuration only.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()
	if l.globalConfDir == "" {
		return cfg, nil
	}
	if err := l.applyFile(cfg, filepath.Join(l.globalConfDir, domain.ConfigFileName)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFile decodes the file at path over cfg. Keys absent from the file keep
// their current value. A missing file is not an error.
func (l *Loader) applyFile(cfg *domain.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Warnings = append(cfg.Warnings, unknownKeyWarnings(raw)...)

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// unknownKeyWarnings reports sections and keys that ralph does not read.
func unknownKeyWarnings(raw map[string]any) []string {
	var warnings []string
	for section, value := range raw {
		keys, ok := knownKeys[section]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
			continue
		}
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
			continue
		}
		for k := range m {
			if !slices.Contains(keys, k) {
				warnings = append(warnings, fmt.Sprintf("unknown key in [%s]: %s", section, k))
			}
		}
	}
	sort.Strings(warnings)
	return warnings
}
