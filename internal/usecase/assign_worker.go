package usecase

import (
	"context"
	"fmt"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// AssignWorkerInput contains the parameters for adding one lane.
type AssignWorkerInput struct {
	ProjectID string
	ID        int  // Worker id (0 = next unused id)
	Worktree  bool // Create a worktree for the lane (also enabled by config)
}

// AssignWorkerOutput contains the new lane and its prompt.
type AssignWorkerOutput struct {
	Assignment WorkerAssignment
	BaseBranch string
}

// AssignWorker is the use case behind `ralph assign-one`. It adds a lane for
// the first pending task that no active worker holds, keeping the other lanes.
type AssignWorker struct {
	trees    domain.TreeRepository
	workers  domain.WorkerRepository
	projects domain.ProjectRepository
	config   domain.ConfigLoader
	logger   domain.Logger
	lanes    lanes
}

// NewAssignWorker creates a new AssignWorker use case.
func NewAssignWorker(
	trees domain.TreeRepository,
	workers domain.WorkerRepository,
	projects domain.ProjectRepository,
	config domain.ConfigLoader,
	worktrees domain.WorktreeManager,
	logger domain.Logger,
	ralphDir string,
) *AssignWorker {
	return &AssignWorker{
		trees:    trees,
		workers:  workers,
		projects: projects,
		config:   config,
		logger:   logger,
		lanes:    lanes{worktrees: worktrees, ralphDir: ralphDir},
	}
}

// Execute adds the lane.
func (uc *AssignWorker) Execute(_ context.Context, in AssignWorkerInput) (*AssignWorkerOutput, error) {
	cfg, err := shared.LoadConfig(uc.config)
	if err != nil {
		return nil, err
	}
	tree, err := shared.LoadTree(uc.trees, in.ProjectID)
	if err != nil {
		return nil, err
	}
	current, err := uc.workers.LoadWorkers(in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load workers: %w", err)
	}

	pool, w, err := domain.AssignOne(current, tree, cfg.ScheduleOptions(), cfg.Workers.BranchPrefix, in.ID)
	if err != nil {
		return nil, err
	}
	info, err := shared.LoadProjectInfo(uc.projects, in.ProjectID, cfg)
	if err != nil {
		return nil, err
	}

	base := cfg.Workers.BaseBranch
	var worktree string
	if in.Worktree || cfg.Workers.Worktrees {
		if worktree, err = uc.lanes.create(w, base); err != nil {
			return nil, err
		}
	}

	if err := uc.workers.SaveWorkers(in.ProjectID, pool); err != nil {
		return nil, fmt.Errorf("save workers: %w", err)
	}
	uc.logger.Info(w.ID, "worker", fmt.Sprintf("assigned %s on %s", w.Path, w.Branch))

	return &AssignWorkerOutput{
		Assignment: assignment(tree, w, info.Requirements, base, worktree),
		BaseBranch: base,
	}, nil
}
