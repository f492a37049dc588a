package usecase

import (
	"context"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// PruneTaskInput contains the parameters for pruning a subtree.
type PruneTaskInput struct {
	ProjectID string
	Path      string
}

// PruneTaskOutput contains the result of pruning.
type PruneTaskOutput struct {
	Removed domain.TaskWithPath
	Leaves  int // Leaves removed with the node
}

// PruneTask is the use case for removing a node and its descendants.
type PruneTask struct {
	trees  domain.TreeRepository
	logger domain.Logger
}

// NewPruneTask creates a new PruneTask use case.
func NewPruneTask(trees domain.TreeRepository, logger domain.Logger) *PruneTask {
	return &PruneTask{trees: trees, logger: logger}
}

// Execute prunes the node at the path. The root cannot be pruned.
func (uc *PruneTask) Execute(_ context.Context, in PruneTaskInput) (*PruneTaskOutput, error) {
	tree, err := shared.LoadTree(uc.trees, in.ProjectID)
	if err != nil {
		return nil, err
	}
	task, err := shared.GetTask(tree, in.Path)
	if err != nil {
		return nil, err
	}

	updated, err := domain.PruneAtPath(tree, task.Path)
	if err != nil {
		return nil, err
	}
	if err := shared.SaveTree(uc.trees, in.ProjectID, updated); err != nil {
		return nil, err
	}

	leaves := len(domain.Leaves(domain.Tree{Name: task.Task.Name, Children: []domain.TaskNode{task.Task}}))
	uc.logger.Info(0, "task", "pruned "+task.Path.String())
	return &PruneTaskOutput{Removed: task, Leaves: leaves}, nil
}
