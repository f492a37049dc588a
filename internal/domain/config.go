package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"text/template"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings  []string        `toml:"-"`
	Search    SearchConfig    `toml:"search"`
	AI        AIConfig        `toml:"ai"`
	Workers   WorkersConfig   `toml:"workers"`
	Heal      HealConfig      `toml:"heal"`
	Store     StoreConfig     `toml:"store"`
	Project   ProjectConfig   `toml:"project"`
	Log       LogConfig       `toml:"log"`
	Estimate  EstimateConfig  `toml:"estimate"`
	Scheduler SchedulerConfig `toml:"scheduler"`
}

// ProjectConfig holds settings from the [project] section.
type ProjectConfig struct {
	Default string `toml:"default,omitempty"` // Project used when --project is not given
}

// EstimateConfig holds settings from the [estimate] section.
type EstimateConfig struct {
	TargetTokens int `toml:"target_tokens,omitempty"` // Context budget per task
}

// SchedulerConfig holds settings from the [scheduler] section.
type SchedulerConfig struct {
	Slices bool `toml:"slices,omitempty"` // Gate later root children behind the current one
}

// WorkersConfig holds settings from the [workers] section.
type WorkersConfig struct {
	BranchPrefix string `toml:"branch_prefix,omitempty"` // Namespace for worker branches
	BaseBranch   string `toml:"base_branch,omitempty"`   // Branch lanes start from and merge into
	Count        int    `toml:"count,omitempty"`         // Default lane count for assign
	Worktrees    bool   `toml:"worktrees,omitempty"`     // One worktree per lane
}

// HealConfig holds settings from the [heal] section.
type HealConfig struct {
	CommandTimeout string `toml:"command_timeout,omitempty"` // Per acceptance command, e.g. "60s"
	MaxAttempts    int    `toml:"max_attempts,omitempty"`
}

// AIConfig holds settings from the [ai] section.
type AIConfig struct {
	Provider      string `toml:"provider,omitempty"` // claude, acp, ollama or none
	Model         string `toml:"model,omitempty"`
	OllamaURL     string `toml:"ollama_url,omitempty"`
	Timeout       string `toml:"timeout,omitempty"`
	ClaudeCommand string `toml:"claude_command,omitempty"`
	ACPCommand    string `toml:"acp_command,omitempty"` // Agent started for provider = "acp", with arguments
}

// SearchConfig holds settings from the [search] section.
type SearchConfig struct {
	Include []string `toml:"include,omitempty"` // Glob patterns of files to index
	Exclude []string `toml:"exclude,omitempty"` // Glob patterns of files to skip
	TopK    int      `toml:"top_k,omitempty"`
}

// StoreConfig holds settings from the [store] section.
type StoreConfig struct {
	Type      string `toml:"type,omitempty"`      // json or git
	Namespace string `toml:"namespace,omitempty"` // Git ref namespace
}

// LogConfig holds logging settings from the [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
}

// AI provider names.
const (
	ProviderClaude = "claude"
	ProviderACP    = "acp"
	ProviderOllama = "ollama"
	ProviderNone   = "none"
)

// Store types.
const (
	StoreJSON = "json"
	StoreGit  = "git"
)

// Default configuration values.
const (
	DefaultLogLevel       = "info"
	DefaultWorkerCount    = 4
	DefaultBaseBranch     = "main"
	DefaultCommandTimeout = 60 * time.Second
	DefaultAITimeout      = 3 * time.Minute
	DefaultOllamaURL      = "http://localhost:11434"
	DefaultOllamaModel    = "qwen2.5-coder:7b"
	DefaultClaudeCommand  = "claude"
	DefaultACPCommand     = "claude-code-acp"
	DefaultTopK           = 3
	DefaultNamespace      = "ralph"
)

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Project:  ProjectConfig{Default: DefaultProjectID},
		Estimate: EstimateConfig{TargetTokens: DefaultTargetTokens},
		Workers: WorkersConfig{
			Count:        DefaultWorkerCount,
			BranchPrefix: DefaultBranchPrefix,
			BaseBranch:   DefaultBaseBranch,
		},
		Heal: HealConfig{
			MaxAttempts:    DefaultMaxAttempts,
			CommandTimeout: "60s",
		},
		AI: AIConfig{
			Provider:      ProviderClaude,
			Model:         DefaultOllamaModel,
			OllamaURL:     DefaultOllamaURL,
			Timeout:       "3m",
			ClaudeCommand: DefaultClaudeCommand,
			ACPCommand:    DefaultACPCommand,
		},
		Search: SearchConfig{TopK: DefaultTopK},
		Store:  StoreConfig{Type: StoreJSON, Namespace: DefaultNamespace},
		Log:    LogConfig{Level: DefaultLogLevel},
	}
}

// ScheduleOptions returns the scheduler options the config selects.
func (c *Config) ScheduleOptions() ScheduleOptions {
	return ScheduleOptions{Slices: c.Scheduler.Slices}
}

// CommandTimeout parses the heal command timeout, falling back to the default.
func (c *Config) CommandTimeout() time.Duration {
	return parseDurationOr(c.Heal.CommandTimeout, DefaultCommandTimeout)
}

// AITimeout parses the AI call timeout, falling back to the default.
func (c *Config) AITimeout() time.Duration {
	return parseDurationOr(c.AI.Timeout, DefaultAITimeout)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderClaude, ProviderACP, ProviderOllama, ProviderNone:
	default:
		return fmt.Errorf("ai.provider: unknown provider %q", c.AI.Provider)
	}
	switch c.Store.Type {
	case StoreJSON, StoreGit:
	default:
		return fmt.Errorf("store.type: unknown store %q", c.Store.Type)
	}
	if c.Workers.Count < 0 {
		return fmt.Errorf("workers.count: must not be negative")
	}
	if c.Heal.MaxAttempts < 0 {
		return fmt.Errorf("heal.max_attempts: must not be negative")
	}
	for _, d := range []struct{ key, value string }{
		{"heal.command_timeout", c.Heal.CommandTimeout},
		{"ai.timeout", c.AI.Timeout},
	} {
		if d.value == "" {
			continue
		}
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
	}
	return nil
}

// GlobalConfigDir returns the global ralph directory.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, "ralph")
}

// GlobalConfigPath returns the global config path.
func GlobalConfigPath(configHome string) string {
	return filepath.Join(GlobalConfigDir(configHome), ConfigFileName)
}

// RenderConfigTemplate renders a commented config file showing the values of cfg.
func RenderConfigTemplate(cfg *Config) string {
	tmpl, err := template.New("config").Delims("<<", ">>").Parse(configTemplateContent)
	if err != nil {
		// Should never happen with embedded template
		panic(fmt.Sprintf("failed to parse config template: %v", err))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		// Should never happen with valid data
		panic(fmt.Sprintf("failed to execute config template: %v", err))
	}
	return buf.String()
}
