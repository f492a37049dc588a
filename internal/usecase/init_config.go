package usecase

import (
	"context"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// InitConfigInput contains the input for the InitConfig use case.
type InitConfigInput struct {
	Config *domain.Config // Values written into the template (defaults if nil)
	Global bool           // If true, initialize global config; otherwise repository config
}

// InitConfigOutput contains the output of the InitConfig use case.
type InitConfigOutput struct {
	Path string // Path to the created config file
}

// InitConfig writes config.toml for the repository or the user.
type InitConfig struct {
	configManager domain.ConfigManager
}

// NewInitConfig creates a new InitConfig use case.
func NewInitConfig(configManager domain.ConfigManager) *InitConfig {
	return &InitConfig{configManager: configManager}
}

// Execute writes the commented template for the selected scope.
// An existing file is left untouched and reported as domain.ErrConfigExists.
func (uc *InitConfig) Execute(_ context.Context, in InitConfigInput) (*InitConfigOutput, error) {
	cfg := in.Config
	if cfg == nil {
		cfg = domain.NewDefaultConfig()
	}

	info, write := uc.configManager.GetRepoConfigInfo(), uc.configManager.InitRepoConfig
	if in.Global {
		info, write = uc.configManager.GetGlobalConfigInfo(), uc.configManager.InitGlobalConfig
	}
	if err := write(cfg); err != nil {
		return nil, err
	}
	return &InitConfigOutput{Path: info.Path}, nil
}
