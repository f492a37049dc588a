package usecase

import (
	"context"
	"fmt"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// GetNextTaskInput contains the parameters for picking the next task.
type GetNextTaskInput struct {
	ProjectID string
	Suggest   bool // Also suggest relevant repository files
}

// GetNextTaskOutput contains the next task and its rendered prompt.
// Fields are ordered to minimize memory padding.
type GetNextTaskOutput struct {
	Task        domain.TaskWithPath
	Context     string
	Prompt      string
	Suggestions []string
	Estimate    domain.Estimate
}

// GetNextTask is the use case behind `ralph next`.
type GetNextTask struct {
	trees    domain.TreeRepository
	projects domain.ProjectRepository
	config   domain.ConfigLoader
	searcher domain.FileSearcher
	logger   domain.Logger
}

// NewGetNextTask creates a new GetNextTask use case. searcher may be nil.
func NewGetNextTask(
	trees domain.TreeRepository,
	projects domain.ProjectRepository,
	config domain.ConfigLoader,
	searcher domain.FileSearcher,
	logger domain.Logger,
) *GetNextTask {
	return &GetNextTask{
		trees:    trees,
		projects: projects,
		config:   config,
		searcher: searcher,
		logger:   logger,
	}
}

// Execute selects the next pending leaf and renders its prompt.
func (uc *GetNextTask) Execute(ctx context.Context, in GetNextTaskInput) (*GetNextTaskOutput, error) {
	cfg, err := shared.LoadConfig(uc.config)
	if err != nil {
		return nil, err
	}
	tree, err := shared.LoadTree(uc.trees, in.ProjectID)
	if err != nil {
		return nil, err
	}
	task, err := shared.TargetOrNext(tree, "", cfg.ScheduleOptions())
	if err != nil {
		return nil, err
	}
	info, err := shared.LoadProjectInfo(uc.projects, in.ProjectID, cfg)
	if err != nil {
		return nil, err
	}

	taskContext := domain.BuildContext(tree, task.Path, info.Requirements)
	est := domain.EstimateTask(task.Task, taskContext, info.Budget)
	out := &GetNextTaskOutput{
		Task:     task,
		Context:  taskContext,
		Estimate: est,
		Prompt: domain.RenderTaskPrompt(domain.TaskPromptData{
			Task:     task.Task,
			Context:  taskContext,
			Estimate: &est,
		}),
	}

	if in.Suggest && uc.searcher != nil {
		files, err := uc.searcher.SuggestRelevantFiles(ctx, task.Task.Name, taskContext, cfg.Search.TopK)
		if err != nil {
			// Suggestions are advisory; the task itself is still returned
			uc.logger.Warn(0, "search", fmt.Sprintf("suggest files for %s: %v", task.Path, err))
		}
		out.Suggestions = files
	}
	return out, nil
}
