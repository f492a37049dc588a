package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

func TestManager_GetRepoConfigInfo(t *testing.T) {
	t.Run("returns info when file exists", func(t *testing.T) {
		ralphDir := t.TempDir()
		configContent := "[log]\nlevel = \"debug\"\n"
		err := os.WriteFile(filepath.Join(ralphDir, domain.ConfigFileName), []byte(configContent), 0o644)
		require.NoError(t, err)

		manager := NewManagerWithGlobalDir(ralphDir, "")
		info := manager.GetRepoConfigInfo()

		assert.Equal(t, filepath.Join(ralphDir, domain.ConfigFileName), info.Path)
		assert.Equal(t, configContent, info.Content)
		assert.True(t, info.Exists)
	})

	t.Run("returns info when file does not exist", func(t *testing.T) {
		ralphDir := t.TempDir()

		manager := NewManagerWithGlobalDir(ralphDir, "")
		info := manager.GetRepoConfigInfo()

		assert.Equal(t, filepath.Join(ralphDir, domain.ConfigFileName), info.Path)
		assert.Empty(t, info.Content)
		assert.False(t, info.Exists)
	})
}

func TestManager_GetGlobalConfigInfo_NoDir(t *testing.T) {
	manager := NewManagerWithGlobalDir(t.TempDir(), "")
	info := manager.GetGlobalConfigInfo()
	assert.Empty(t, info.Path)
	assert.False(t, info.Exists)
}

func TestManager_InitRepoConfig(t *testing.T) {
	ralphDir := filepath.Join(t.TempDir(), domain.DirName)
	manager := NewManagerWithGlobalDir(ralphDir, "")

	require.NoError(t, manager.InitRepoConfig(domain.NewDefaultConfig()))

	content, err := os.ReadFile(domain.RepoConfigPath(ralphDir))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[heal]")
	assert.Contains(t, string(content), `# provider = "claude"`)

	err = manager.InitRepoConfig(domain.NewDefaultConfig())
	assert.ErrorIs(t, err, domain.ErrConfigExists)
}

func TestManager_InitGlobalConfig(t *testing.T) {
	globalDir := filepath.Join(t.TempDir(), "ralph")
	manager := NewManagerWithGlobalDir(t.TempDir(), globalDir)

	require.NoError(t, manager.InitGlobalConfig(domain.NewDefaultConfig()))
	assert.True(t, manager.GetGlobalConfigInfo().Exists)

	// The template is all comments, so loading it yields the defaults
	cfg, err := NewLoaderWithGlobalDir(t.TempDir(), globalDir).Load()
	require.NoError(t, err)
	assert.Equal(t, domain.NewDefaultConfig(), cfg)
}
