package usecase

import (
	"context"
	"fmt"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// CompleteAllWorkersInput contains the parameters for finishing every lane.
type CompleteAllWorkersInput struct {
	ProjectID string
	Force     bool // Remove dirty worktrees, and drop lanes whose task no longer resolves
}

// CompleteAllWorkersOutput contains the result of finishing every lane.
type CompleteAllWorkersOutput struct {
	Events   []domain.WorkerCompleted // One per lane completed by this run
	Marked   []domain.Worker          // Lanes whose task was marked done
	Skipped  []domain.Worker          // Lanes whose task was already done
	Orphaned []domain.Worker          // Lanes dropped with --force although their task did not resolve
	Cleared  int
}

// CompleteAllWorkers is the use case behind `ralph done-all`, run after every
// worker branch has been merged.
type CompleteAllWorkers struct {
	trees    domain.TreeRepository
	workers  domain.WorkerRepository
	projects domain.ProjectRepository
	clock    domain.Clock
	logger   domain.Logger
	lanes    lanes
}

// NewCompleteAllWorkers creates a new CompleteAllWorkers use case.
func NewCompleteAllWorkers(
	trees domain.TreeRepository,
	workers domain.WorkerRepository,
	projects domain.ProjectRepository,
	worktrees domain.WorktreeManager,
	clock domain.Clock,
	logger domain.Logger,
	ralphDir string,
) *CompleteAllWorkers {
	return &CompleteAllWorkers{
		trees:    trees,
		workers:  workers,
		projects: projects,
		clock:    clock,
		logger:   logger,
		lanes:    lanes{worktrees: worktrees, ralphDir: ralphDir},
	}
}

// Execute marks every lane's task done, completes the lanes and clears them
// from the pool. Nothing is written unless every lane's task resolves or
// Force is set.
func (uc *CompleteAllWorkers) Execute(_ context.Context, in CompleteAllWorkersInput) (*CompleteAllWorkersOutput, error) {
	pool, err := uc.workers.LoadWorkers(in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load workers: %w", err)
	}
	if len(pool.Workers) == 0 {
		return nil, domain.ErrNoWorkers
	}
	tree, err := shared.LoadTree(uc.trees, in.ProjectID)
	if err != nil {
		return nil, err
	}

	out := &CompleteAllWorkersOutput{}
	for _, w := range pool.Workers {
		updated, marked, err := markDone(tree, w)
		switch {
		case err != nil && !in.Force:
			return nil, err
		case err != nil:
			uc.logger.Warn(w.ID, "worker", "dropping lane: "+err.Error())
			out.Orphaned = append(out.Orphaned, w)
		case marked:
			tree = updated
			out.Marked = append(out.Marked, w)
		default:
			out.Skipped = append(out.Skipped, w)
		}
	}

	for _, w := range pool.Workers {
		if _, err := uc.lanes.remove(w.ID, in.Force); err != nil {
			return nil, err
		}
	}

	now := uc.clock.Now()
	for _, w := range pool.Active() {
		var event domain.WorkerCompleted
		if pool, event, err = pool.Complete(w.ID, now); err != nil {
			return nil, err
		}
		out.Events = append(out.Events, event)
		uc.logger.Info(w.ID, "worker", fmt.Sprintf("completed %s on %s", event.TaskPath, event.Branch))
	}
	cleared := pool.ClearDone()
	out.Cleared = len(pool.Workers) - len(cleared.Workers)

	if len(out.Marked) > 0 {
		if err := shared.SaveTree(uc.trees, in.ProjectID, tree); err != nil {
			return nil, err
		}
	}
	for _, w := range out.Marked {
		if err := uc.projects.AppendProgress(in.ProjectID, domain.ProgressEntry(now, "done", w.TaskPath())); err != nil {
			return nil, fmt.Errorf("append progress: %w", err)
		}
	}
	if err := uc.workers.SaveWorkers(in.ProjectID, cleared); err != nil {
		return nil, fmt.Errorf("save workers: %w", err)
	}

	uc.logger.Info(0, "worker", fmt.Sprintf("completed %d tasks, cleared %d workers", len(out.Marked), out.Cleared))
	return out, nil
}
