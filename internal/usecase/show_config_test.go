package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cook1eMonster/Ralph/internal/testutil"
)

func TestShowConfig_Execute(t *testing.T) {
	manager := testutil.NewMockConfigManager()
	manager.RepoConfigInfo.Exists = true
	manager.RepoConfigInfo.Content = "[workers]\ncount = 2\n"
	loader := testutil.NewMockConfigLoader()
	loader.Config.Workers.Count = 2
	loader.Config.Warnings = []string{"unknown section: agents"}

	out, err := NewShowConfig(manager, loader).Execute(context.Background(), ShowConfigInput{})
	require.NoError(t, err)

	assert.True(t, out.RepoConfig.Exists)
	assert.Equal(t, "/home/test/.config/ralph/config.toml", out.GlobalConfig.Path)
	assert.Contains(t, out.Effective, "count = 2")
	assert.Equal(t, []string{"unknown section: agents"}, out.Warnings)
}

func TestShowConfig_LoadError(t *testing.T) {
	loader := testutil.NewMockConfigLoader()
	loader.LoadErr = errors.New("parse error")

	_, err := NewShowConfig(testutil.NewMockConfigManager(), loader).Execute(context.Background(), ShowConfigInput{})
	assert.ErrorContains(t, err, "parse error")
}
