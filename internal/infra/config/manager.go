package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

var _ domain.ConfigManager = (*Manager)(nil)

// Manager inspects and creates the repository and global config files.
type Manager struct {
	ralphDir      string // Path to .ralph directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/ralph)
}

// NewManager creates a new Manager.
func NewManager(ralphDir string) *Manager {
	return &Manager{
		ralphDir:      ralphDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewManagerWithGlobalDir creates a new Manager with a custom global config directory.
// This is useful for testing.
func NewManagerWithGlobalDir(ralphDir, globalConfDir string) *Manager {
	return &Manager{
		ralphDir:      ralphDir,
		globalConfDir: globalConfDir,
	}
}

// GetRepoConfigInfo describes .ralph/config.toml.
func (m *Manager) GetRepoConfigInfo() domain.ConfigInfo {
	return readInfo(domain.RepoConfigPath(m.ralphDir))
}

// GetGlobalConfigInfo describes the user's config.toml. The zero value is
// returned when no config home could be determined.
func (m *Manager) GetGlobalConfigInfo() domain.ConfigInfo {
	if m.globalConfDir == "" {
		return domain.ConfigInfo{}
	}
	return readInfo(m.globalPath())
}

// InitRepoConfig writes the commented template to .ralph/config.toml.
func (m *Manager) InitRepoConfig(cfg *domain.Config) error {
	return writeTemplate(domain.RepoConfigPath(m.ralphDir), 0o750, cfg)
}

// InitGlobalConfig writes the commented template to the user's config.toml.
func (m *Manager) InitGlobalConfig(cfg *domain.Config) error {
	if m.globalConfDir == "" {
		return errors.New("global config directory not available")
	}
	return writeTemplate(m.globalPath(), 0o700, cfg)
}

func (m *Manager) globalPath() string {
	return filepath.Join(m.globalConfDir, domain.ConfigFileName)
}

func readInfo(path string) domain.ConfigInfo {
	info := domain.ConfigInfo{Path: path}
	if content, err := os.ReadFile(path); err == nil {
		info.Content = string(content)
		info.Exists = true
	}
	return info
}

// writeTemplate creates path exclusively so a concurrent init cannot clobber
// an existing file.
func writeTemplate(path string, dirPerm os.FileMode, cfg *domain.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return domain.ErrConfigExists
		}
		return fmt.Errorf("create config: %w", err)
	}
	if _, err := f.WriteString(domain.RenderConfigTemplate(cfg)); err != nil {
		_ = f.Close()
		return fmt.Errorf("write config: %w", err)
	}
	return f.Close()
}
