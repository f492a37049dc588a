package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

func TestAddTask_Execute(t *testing.T) {
	env := newTestEnv()
	uc := NewAddTask(env.trees, env.logger)

	out, err := uc.Execute(context.Background(), AddTaskInput{
		ProjectID: "default",
		Parent:    "Backend.Auth",
		Node: domain.TaskNode{
			Name:     "Reset",
			Children: []domain.TaskNode{{Name: "Email"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Root.Backend.Auth.Reset", out.Path.String())
	assert.Equal(t, domain.StatusPending, env.status("Root.Backend.Auth.Reset"))
	assert.Equal(t, domain.StatusPending, env.status("Root.Backend.Auth.Reset.Email"))
	assert.True(t, env.logger.Contains("added Root.Backend.Auth.Reset"))
}

func TestAddTask_UnderRoot(t *testing.T) {
	env := newTestEnv()
	uc := NewAddTask(env.trees, env.logger)

	out, err := uc.Execute(context.Background(), AddTaskInput{ProjectID: "default", Node: domain.TaskNode{Name: "Frontend"}})
	require.NoError(t, err)
	assert.Equal(t, "Root.Frontend", out.Path.String())
}

func TestAddTask_Errors(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		parent  string
		node    domain.TaskNode
	}{
		{name: "duplicate sibling", parent: "Backend", node: domain.TaskNode{Name: "API"}, wantErr: domain.ErrDuplicateSibling},
		{name: "missing parent", parent: "Nope", node: domain.TaskNode{Name: "X"}, wantErr: domain.ErrPathNotFound},
		{name: "empty name", node: domain.TaskNode{}, wantErr: domain.ErrEmptyName},
		{name: "name with separator", parent: "Backend", node: domain.TaskNode{Name: "Update README.md"}, wantErr: domain.ErrInvalidName},
		{name: "padded name", parent: "Backend", node: domain.TaskNode{Name: "Login "}, wantErr: domain.ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			_, err := NewAddTask(env.trees, env.logger).Execute(context.Background(), AddTaskInput{
				ProjectID: "default",
				Parent:    tt.parent,
				Node:      tt.node,
			})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, sampleTree(), env.tree())
		})
	}
}
