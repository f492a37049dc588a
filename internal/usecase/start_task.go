package usecase

import (
	"context"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// StartTaskInput contains the parameters for starting a task.
type StartTaskInput struct {
	ProjectID string
	Path      string // Task path (optional, defaults to the next pending task)
}

// StartTaskOutput contains the result of starting a task.
type StartTaskOutput struct {
	Task domain.TaskWithPath // The task, now in progress
}

// StartTask is the use case for moving a pending task to in-progress.
type StartTask struct {
	changer statusChanger
	config  domain.ConfigLoader
}

// NewStartTask creates a new StartTask use case.
func NewStartTask(
	trees domain.TreeRepository,
	projects domain.ProjectRepository,
	config domain.ConfigLoader,
	clock domain.Clock,
	logger domain.Logger,
) *StartTask {
	return &StartTask{
		changer: statusChanger{trees: trees, projects: projects, clock: clock, logger: logger},
		config:  config,
	}
}

// Execute starts the task.
func (uc *StartTask) Execute(_ context.Context, in StartTaskInput) (*StartTaskOutput, error) {
	cfg, err := shared.LoadConfig(uc.config)
	if err != nil {
		return nil, err
	}
	tree, err := shared.LoadTree(uc.changer.trees, in.ProjectID)
	if err != nil {
		return nil, err
	}
	task, err := shared.TargetOrNext(tree, in.Path, cfg.ScheduleOptions())
	if err != nil {
		return nil, err
	}

	_, started, err := uc.changer.apply(in.ProjectID, tree, task.Path, domain.StatusInProgress, "started")
	if err != nil {
		return nil, err
	}
	return &StartTaskOutput{Task: started}, nil
}
