package usecase

import (
	"context"
	"strings"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// CompleteTaskInput contains the parameters for completing a task.
type CompleteTaskInput struct {
	ProjectID string
	Path      string // Task path (optional)
}

// CompleteTaskOutput contains the result of completing a task.
type CompleteTaskOutput struct {
	Next  *domain.TaskWithPath // Next pending task, nil when everything is done
	Task  domain.TaskWithPath  // The completed task
	Stats domain.TreeStats     // Progress after completion
}

// CompleteTask is the use case for marking a task as done.
// Without a path it completes the first in-progress task, falling back to
// the next pending one.
type CompleteTask struct {
	changer statusChanger
	config  domain.ConfigLoader
}

// NewCompleteTask creates a new CompleteTask use case.
func NewCompleteTask(
	trees domain.TreeRepository,
	projects domain.ProjectRepository,
	config domain.ConfigLoader,
	clock domain.Clock,
	logger domain.Logger,
) *CompleteTask {
	return &CompleteTask{
		changer: statusChanger{trees: trees, projects: projects, clock: clock, logger: logger},
		config:  config,
	}
}

// Execute marks the task done.
func (uc *CompleteTask) Execute(_ context.Context, in CompleteTaskInput) (*CompleteTaskOutput, error) {
	cfg, err := shared.LoadConfig(uc.config)
	if err != nil {
		return nil, err
	}
	opts := cfg.ScheduleOptions()

	tree, err := shared.LoadTree(uc.changer.trees, in.ProjectID)
	if err != nil {
		return nil, err
	}

	var task domain.TaskWithPath
	if strings.TrimSpace(in.Path) != "" {
		task, err = shared.GetLeaf(tree, in.Path)
	} else if current, ok := domain.FindFirstInProgress(tree); ok {
		task = current
	} else {
		task, err = shared.TargetOrNext(tree, "", opts)
	}
	if err != nil {
		return nil, err
	}

	updated, done, err := uc.changer.apply(in.ProjectID, tree, task.Path, domain.StatusDone, "done")
	if err != nil {
		return nil, err
	}

	out := &CompleteTaskOutput{Task: done, Stats: domain.Stats(updated)}
	if next, ok := domain.NextPending(updated, opts); ok {
		out.Next = &next
	}
	return out, nil
}
