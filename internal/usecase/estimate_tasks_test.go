package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

func TestEstimateTasks_Execute(t *testing.T) {
	env := newTestEnv()
	tree, err := domain.AddChild(env.tree(), domain.ParsePath("Root"), domain.TaskNode{
		Name: "Huge",
		Spec: strings.Repeat("x", 200000),
	})
	require.NoError(t, err)
	env.trees.Trees["default"] = tree

	out, err := NewEstimateTasks(env.trees, env.projects, env.config).Execute(context.Background(), EstimateTasksInput{ProjectID: "default"})
	require.NoError(t, err)

	require.Len(t, out.Rows, 3)
	assert.Equal(t, "Login", out.Rows[0].Name)
	assert.Equal(t, "Docs", out.Rows[1].Name)
	assert.Equal(t, "Huge", out.Rows[2].Name)
	assert.True(t, out.Rows[0].Estimate.Fits)
	assert.False(t, out.Rows[2].Estimate.Fits)
	assert.Equal(t, 1, out.Over)
	assert.Equal(t, 60000, out.Target)
}
