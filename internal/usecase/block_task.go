package usecase

import (
	"context"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// BlockTaskInput contains the parameters for blocking or unblocking a task.
type BlockTaskInput struct {
	ProjectID string
	Path      string // Task path (required)
	Unblock   bool   // Return a blocked task to pending instead
}

// BlockTaskOutput contains the result of blocking a task.
type BlockTaskOutput struct {
	Task domain.TaskWithPath
}

// BlockTask is the use case for parking a task the scheduler should skip.
type BlockTask struct {
	changer statusChanger
}

// NewBlockTask creates a new BlockTask use case.
func NewBlockTask(
	trees domain.TreeRepository,
	projects domain.ProjectRepository,
	clock domain.Clock,
	logger domain.Logger,
) *BlockTask {
	return &BlockTask{
		changer: statusChanger{trees: trees, projects: projects, clock: clock, logger: logger},
	}
}

// Execute blocks or unblocks the task.
func (uc *BlockTask) Execute(_ context.Context, in BlockTaskInput) (*BlockTaskOutput, error) {
	tree, err := shared.LoadTree(uc.changer.trees, in.ProjectID)
	if err != nil {
		return nil, err
	}
	task, err := shared.GetLeaf(tree, in.Path)
	if err != nil {
		return nil, err
	}

	target, action := domain.StatusBlocked, "blocked"
	if in.Unblock {
		target, action = domain.StatusPending, "unblocked"
	}
	_, changed, err := uc.changer.apply(in.ProjectID, tree, task.Path, target, action)
	if err != nil {
		return nil, err
	}
	return &BlockTaskOutput{Task: changed}, nil
}
