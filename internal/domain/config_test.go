package domain

import (
	"strings"
	"testing"
	"time"
)

func TestGlobalConfigPath(t *testing.T) {
	got := GlobalConfigPath("/home/user/.config")
	want := "/home/user/.config/ralph/config.toml"
	if got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Estimate.TargetTokens != 60000 {
		t.Errorf("Estimate.TargetTokens = %d, want 60000", cfg.Estimate.TargetTokens)
	}
	if cfg.Workers.Count != 4 || cfg.Workers.BranchPrefix != "ralph/" {
		t.Errorf("Workers = %+v", cfg.Workers)
	}
	if cfg.Heal.MaxAttempts != 3 {
		t.Errorf("Heal.MaxAttempts = %d, want 3", cfg.Heal.MaxAttempts)
	}
	if cfg.CommandTimeout() != 60*time.Second {
		t.Errorf("CommandTimeout() = %v, want 60s", cfg.CommandTimeout())
	}
	if cfg.Store.Type != StoreJSON {
		t.Errorf("Store.Type = %q, want json", cfg.Store.Type)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errSub string
	}{
		{"unknown provider", func(c *Config) { c.AI.Provider = "gpt" }, "ai.provider"},
		{"unknown store", func(c *Config) { c.Store.Type = "sqlite" }, "store.type"},
		{"negative workers", func(c *Config) { c.Workers.Count = -1 }, "workers.count"},
		{"bad timeout", func(c *Config) { c.Heal.CommandTimeout = "soon" }, "heal.command_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.errSub)
			}
		})
	}
}

func TestConfig_DurationFallback(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Heal.CommandTimeout = ""
	cfg.AI.Timeout = "-5s"
	if cfg.CommandTimeout() != DefaultCommandTimeout {
		t.Errorf("CommandTimeout() = %v", cfg.CommandTimeout())
	}
	if cfg.AITimeout() != DefaultAITimeout {
		t.Errorf("AITimeout() = %v", cfg.AITimeout())
	}
}

func TestRenderConfigTemplate(t *testing.T) {
	out := RenderConfigTemplate(NewDefaultConfig())
	for _, want := range []string{
		"[estimate]",
		"# target_tokens = 60000",
		`# branch_prefix = "ralph/"`,
		`# provider = "claude"`,
		"# max_attempts = 3",
		`# level = "info"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("template missing %q", want)
		}
	}
}
