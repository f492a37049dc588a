package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/testutil"
)

func testTree() domain.Tree {
	return domain.Tree{
		Name: "Root",
		Children: []domain.TaskNode{
			{Name: "Backend", Status: domain.StatusPending, Children: []domain.TaskNode{
				{Name: "Login", Status: domain.StatusPending},
			}},
			{Name: "Docs", Status: domain.StatusDone},
		},
	}
}

func TestLoadTree(t *testing.T) {
	trees := testutil.NewMockTreeRepository()
	trees.Trees["web"] = testTree()

	tree, err := LoadTree(trees, "web")
	require.NoError(t, err)
	assert.Equal(t, "Root", tree.Name)

	_, err = LoadTree(trees, "missing")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestGetTask(t *testing.T) {
	tree := testTree()

	for _, path := range []string{"Root.Backend.Login", "Backend.Login"} {
		task, err := GetTask(tree, path)
		require.NoError(t, err, path)
		assert.Equal(t, domain.Path{"Root", "Backend", "Login"}, task.Path)
	}

	_, err := GetTask(tree, "Backend.Logout")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	_, err = GetTask(tree, " ")
	assert.ErrorIs(t, err, domain.ErrEmptyPath)
}

func TestGetLeaf(t *testing.T) {
	_, err := GetLeaf(testTree(), "Backend")
	assert.ErrorIs(t, err, domain.ErrNotLeaf)
}

func TestTargetOrNext(t *testing.T) {
	tree := testTree()

	task, err := TargetOrNext(tree, "", domain.ScheduleOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Login", task.Task.Name)

	task, err = TargetOrNext(tree, "Docs", domain.ScheduleOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Docs", task.Task.Name)

	tree, _ = domain.SetStatus(tree, domain.Path{"Root", "Backend", "Login"}, domain.StatusDone)
	_, err = TargetOrNext(tree, "", domain.ScheduleOptions{})
	assert.ErrorIs(t, err, domain.ErrNoPendingTasks)
}

func TestLoadProjectInfo(t *testing.T) {
	projects := testutil.NewMockProjectRepository()
	projects.Requirements["web"] = "be fast"
	cfg := domain.NewDefaultConfig()
	cfg.Estimate.TargetTokens = 80000

	info, err := LoadProjectInfo(projects, "web", cfg)
	require.NoError(t, err)
	assert.Equal(t, "web", info.Project.Name)
	assert.Equal(t, "be fast", info.Requirements)
	assert.Equal(t, 80000, info.Budget)

	projects.Projects["web"] = domain.Project{ID: "web", Name: "Web", TargetTokens: 40000}
	info, err = LoadProjectInfo(projects, "web", cfg)
	require.NoError(t, err)
	assert.Equal(t, 40000, info.Budget)
}
