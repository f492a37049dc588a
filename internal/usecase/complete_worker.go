package usecase

import (
	"context"
	"fmt"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// CompleteWorkerInput contains the parameters for finishing one lane.
type CompleteWorkerInput struct {
	ProjectID string
	ID        int
	Force     bool // Remove a dirty worktree, and drop the lane even if its task no longer resolves
}

// CompleteWorkerOutput contains the result of finishing a lane.
// Fields are ordered to minimize memory padding.
type CompleteWorkerOutput struct {
	Event             domain.WorkerCompleted
	MergeInstructions string
	RemovedWorktree   string
	Warning           string // Why the task was left alone when the lane was forced out
	TaskMarked        bool   // False when the task was already done
}

// CompleteWorker is the use case behind `ralph done-one`. It frees the lane,
// marks its task done and prints the merge steps for its branch.
type CompleteWorker struct {
	trees    domain.TreeRepository
	workers  domain.WorkerRepository
	projects domain.ProjectRepository
	config   domain.ConfigLoader
	clock    domain.Clock
	logger   domain.Logger
	lanes    lanes
}

// NewCompleteWorker creates a new CompleteWorker use case.
func NewCompleteWorker(
	trees domain.TreeRepository,
	workers domain.WorkerRepository,
	projects domain.ProjectRepository,
	config domain.ConfigLoader,
	worktrees domain.WorktreeManager,
	clock domain.Clock,
	logger domain.Logger,
	ralphDir string,
) *CompleteWorker {
	return &CompleteWorker{
		trees:    trees,
		workers:  workers,
		projects: projects,
		config:   config,
		clock:    clock,
		logger:   logger,
		lanes:    lanes{worktrees: worktrees, ralphDir: ralphDir},
	}
}

// Execute completes the lane.
func (uc *CompleteWorker) Execute(_ context.Context, in CompleteWorkerInput) (*CompleteWorkerOutput, error) {
	cfg, err := shared.LoadConfig(uc.config)
	if err != nil {
		return nil, err
	}
	pool, err := uc.workers.LoadWorkers(in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load workers: %w", err)
	}
	w, ok := pool.Get(in.ID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrWorkerNotFound, in.ID)
	}
	tree, err := shared.LoadTree(uc.trees, in.ProjectID)
	if err != nil {
		return nil, err
	}

	var warning string
	updated, marked, err := markDone(tree, w)
	if err != nil {
		if !in.Force {
			return nil, err
		}
		warning = err.Error()
		uc.logger.Warn(w.ID, "worker", "dropping lane: "+warning)
	}

	// The worktree goes before the pool so a dirty lane leaves the pool untouched
	removed, err := uc.lanes.remove(w.ID, in.Force)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	pool, event, err := pool.CompleteOne(in.ID, now)
	if err != nil {
		return nil, err
	}

	if marked {
		if err := shared.SaveTree(uc.trees, in.ProjectID, updated); err != nil {
			return nil, err
		}
		if err := uc.projects.AppendProgress(in.ProjectID, domain.ProgressEntry(now, "done", w.TaskPath())); err != nil {
			return nil, fmt.Errorf("append progress: %w", err)
		}
	}
	if err := uc.workers.SaveWorkers(in.ProjectID, pool); err != nil {
		return nil, fmt.Errorf("save workers: %w", err)
	}

	uc.logger.Info(w.ID, "worker", fmt.Sprintf("completed %s on %s", w.Path, w.Branch))
	return &CompleteWorkerOutput{
		Event:             event,
		TaskMarked:        marked,
		RemovedWorktree:   removed,
		Warning:           warning,
		MergeInstructions: domain.SingleMergeInstructions(cfg.Workers.BaseBranch, w.Branch),
	}, nil
}
