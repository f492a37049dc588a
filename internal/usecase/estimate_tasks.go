package usecase

import (
	"context"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// EstimateTasksInput contains the parameters for the estimate table.
type EstimateTasksInput struct {
	ProjectID string
}

// TaskEstimate pairs a task path with its estimate.
type TaskEstimate struct {
	Path     domain.Path
	Name     string
	Estimate domain.Estimate
}

// EstimateTasksOutput contains one estimate per pending leaf.
type EstimateTasksOutput struct {
	Rows   []TaskEstimate
	Target int
	Over   int // Rows that do not fit the target
}

// EstimateTasks is the use case behind `ralph estimate`.
type EstimateTasks struct {
	trees    domain.TreeRepository
	projects domain.ProjectRepository
	config   domain.ConfigLoader
}

// NewEstimateTasks creates a new EstimateTasks use case.
func NewEstimateTasks(trees domain.TreeRepository, projects domain.ProjectRepository, config domain.ConfigLoader) *EstimateTasks {
	return &EstimateTasks{trees: trees, projects: projects, config: config}
}

// Execute estimates every pending leaf in tree order.
func (uc *EstimateTasks) Execute(_ context.Context, in EstimateTasksInput) (*EstimateTasksOutput, error) {
	cfg, err := shared.LoadConfig(uc.config)
	if err != nil {
		return nil, err
	}
	tree, err := shared.LoadTree(uc.trees, in.ProjectID)
	if err != nil {
		return nil, err
	}
	info, err := shared.LoadProjectInfo(uc.projects, in.ProjectID, cfg)
	if err != nil {
		return nil, err
	}

	out := &EstimateTasksOutput{Target: info.Budget}
	pending := domain.Filter(tree, func(n domain.TaskNode, _ domain.Path) bool {
		return n.IsLeaf() && n.Status == domain.StatusPending
	})
	for _, task := range pending {
		est := domain.EstimateTask(task.Task, domain.BuildContext(tree, task.Path, info.Requirements), info.Budget)
		if !est.Fits {
			out.Over++
		}
		out.Rows = append(out.Rows, TaskEstimate{Path: task.Path, Name: task.Task.Name, Estimate: est})
	}
	return out, nil
}
