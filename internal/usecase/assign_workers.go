package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// AssignWorkersInput contains the parameters for assigning a batch of lanes.
type AssignWorkersInput struct {
	ProjectID string
	Count     int  // Lanes to create (0 = config default)
	Force     bool // Replace a pool that still has active workers
	Worktrees bool // Create a worktree per lane (also enabled by config)
}

// AssignWorkersOutput contains the new lanes and their prompts.
type AssignWorkersOutput struct {
	BaseBranch  string
	Assignments []WorkerAssignment
}

// AssignWorkers is the use case behind `ralph assign`.
// It replaces the project's pool with up to Count fresh lanes.
type AssignWorkers struct {
	trees    domain.TreeRepository
	workers  domain.WorkerRepository
	projects domain.ProjectRepository
	config   domain.ConfigLoader
	logger   domain.Logger
	lanes    lanes
}

// NewAssignWorkers creates a new AssignWorkers use case. worktrees may be nil
// when worktree lanes are not available.
func NewAssignWorkers(
	trees domain.TreeRepository,
	workers domain.WorkerRepository,
	projects domain.ProjectRepository,
	config domain.ConfigLoader,
	worktrees domain.WorktreeManager,
	logger domain.Logger,
	ralphDir string,
) *AssignWorkers {
	return &AssignWorkers{
		trees:    trees,
		workers:  workers,
		projects: projects,
		config:   config,
		logger:   logger,
		lanes:    lanes{worktrees: worktrees, ralphDir: ralphDir},
	}
}

// Execute assigns the lanes.
func (uc *AssignWorkers) Execute(_ context.Context, in AssignWorkersInput) (*AssignWorkersOutput, error) {
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
	if active := current.Active(); len(active) > 0 && !in.Force {
		return nil, fmt.Errorf("%w: %d active", domain.ErrWorkersActive, len(active))
	}

	count := in.Count
	if count <= 0 {
		count = cfg.Workers.Count
	}
	pool, err := domain.AssignBatch(tree, count, cfg.ScheduleOptions(), cfg.Workers.BranchPrefix)
	if err != nil {
		return nil, err
	}

	info, err := shared.LoadProjectInfo(uc.projects, in.ProjectID, cfg)
	if err != nil {
		return nil, err
	}

	// Lanes of the replaced pool give up their worktrees first; new ids reuse the paths
	for _, w := range current.Workers {
		if _, err := uc.lanes.remove(w.ID, true); err != nil {
			return nil, err
		}
	}

	base := cfg.Workers.BaseBranch
	useWorktrees := in.Worktrees || cfg.Workers.Worktrees
	out := &AssignWorkersOutput{BaseBranch: base}
	for _, w := range pool.Workers {
		var worktree string
		if useWorktrees {
			if worktree, err = uc.lanes.create(w, base); err != nil {
				return nil, err
			}
		}
		out.Assignments = append(out.Assignments, assignment(tree, w, info.Requirements, base, worktree))
		uc.logger.Info(w.ID, "worker", fmt.Sprintf("assigned %s on %s", w.Path, w.Branch))
	}

	if err := uc.workers.SaveWorkers(in.ProjectID, pool); err != nil {
		return nil, fmt.Errorf("save workers: %w", err)
	}

	branches := make([]string, 0, len(pool.Workers))
	for _, w := range pool.Workers {
		branches = append(branches, w.Branch)
	}
	uc.logger.Info(0, "worker", fmt.Sprintf("assigned %d workers: %s", len(pool.Workers), strings.Join(branches, ", ")))
	return out, nil
}
