package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

func TestShowStatus_Execute(t *testing.T) {
	env := newTestEnv()
	env.workers.Pools["default"] = domain.WorkerPool{Workers: []domain.Worker{
		{ID: 1, Task: "Docs", Path: "Root.Docs", Status: domain.WorkerAssigned},
		{ID: 2, Task: "API", Path: "Root.Backend.API", Status: domain.WorkerDone},
	}}

	out, err := NewShowStatus(env.trees, env.workers, env.config).Execute(context.Background(), ShowStatusInput{ProjectID: "default"})
	require.NoError(t, err)

	assert.Equal(t, domain.TreeStats{Progress: 20, Total: 5, Pending: 2, InProgress: 1, Done: 1, Blocked: 1}, out.Stats)
	require.NotNil(t, out.Next)
	assert.Equal(t, "Root.Backend.Auth.Login", out.Next.Path.String())
	require.Len(t, out.Workers, 1)
	assert.Equal(t, 1, out.Workers[0].ID)
	assert.Empty(t, out.Slice)
}

func TestShowStatus_Slice(t *testing.T) {
	env := newTestEnv()
	env.config.Config.Scheduler.Slices = true

	out, err := NewShowStatus(env.trees, env.workers, env.config).Execute(context.Background(), ShowStatusInput{ProjectID: "default"})
	require.NoError(t, err)
	assert.Equal(t, "Backend", out.Slice)
}

func TestExportTree_Execute(t *testing.T) {
	env := newTestEnv()
	env.trees.Trees["default"] = domain.Tree{Name: "Root", Children: []domain.TaskNode{{Name: "A"}}}

	out, err := NewExportTree(env.trees).Execute(context.Background(), ExportTreeInput{ProjectID: "default"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, out.Tree.Children[0].Status)
}
