package usecase

import (
	"context"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// ShowTaskInput contains the parameters for showing a task.
type ShowTaskInput struct {
	ProjectID string
	Path      string // Task path (required)
}

// ShowTaskOutput contains the result of showing a task.
// Fields are ordered to minimize memory padding.
type ShowTaskOutput struct {
	Estimate *domain.Estimate // Set for leaves only
	Task     domain.TaskWithPath
	Context  string
	Stats    domain.TreeStats // Leaf progress below the node
}

// ShowTask is the use case for displaying task details.
type ShowTask struct {
	trees    domain.TreeRepository
	projects domain.ProjectRepository
	config   domain.ConfigLoader
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(trees domain.TreeRepository, projects domain.ProjectRepository, config domain.ConfigLoader) *ShowTask {
	return &ShowTask{
		trees:    trees,
		projects: projects,
		config:   config,
	}
}

// Execute retrieves and returns the task details.
func (uc *ShowTask) Execute(_ context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	cfg, err := shared.LoadConfig(uc.config)
	if err != nil {
		return nil, err
	}
	tree, err := shared.LoadTree(uc.trees, in.ProjectID)
	if err != nil {
		return nil, err
	}
	task, err := shared.GetTask(tree, in.Path)
	if err != nil {
		return nil, err
	}
	info, err := shared.LoadProjectInfo(uc.projects, in.ProjectID, cfg)
	if err != nil {
		return nil, err
	}

	out := &ShowTaskOutput{
		Task:    task,
		Context: domain.BuildContext(tree, task.Path, info.Requirements),
		Stats:   domain.Stats(domain.Tree{Name: task.Task.Name, Children: task.Task.Children}),
	}
	if task.Task.IsLeaf() && len(task.Path) > 1 {
		est := domain.EstimateTask(task.Task, out.Context, info.Budget)
		out.Estimate = &est
	}
	return out, nil
}
