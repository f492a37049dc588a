package usecase

import (
	"context"
	"fmt"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// MergeWorkersInput contains the parameters for merging worker branches.
type MergeWorkersInput struct {
	ProjectID string
	Apply     bool // Merge the branches instead of printing instructions
	Prune     bool // Delete each branch after it merged (requires Apply)
}

// MergeWorkersOutput contains the merge instructions or the merged branches.
type MergeWorkersOutput struct {
	Instructions string
	Merged       []string
	Missing      []string // Branches that do not exist locally
	Pruned       []string // Merged branches that were deleted
}

// MergeWorkers is the use case behind `ralph merge`.
type MergeWorkers struct {
	workers  domain.WorkerRepository
	config   domain.ConfigLoader
	git      domain.Git
	logger   domain.Logger
	repoRoot string
}

// NewMergeWorkers creates a new MergeWorkers use case.
func NewMergeWorkers(
	workers domain.WorkerRepository,
	config domain.ConfigLoader,
	git domain.Git,
	logger domain.Logger,
	repoRoot string,
) *MergeWorkers {
	return &MergeWorkers{
		workers:  workers,
		config:   config,
		git:      git,
		logger:   logger,
		repoRoot: repoRoot,
	}
}

// Execute prints or applies the merges.
// Applying requires the base branch to be checked out with a clean working
// tree. Merging stops at the first failing branch; a conflicting merge is
// aborted by the git adapter.
func (uc *MergeWorkers) Execute(_ context.Context, in MergeWorkersInput) (*MergeWorkersOutput, error) {
	cfg, err := shared.LoadConfig(uc.config)
	if err != nil {
		return nil, err
	}
	pool, err := uc.workers.LoadWorkers(in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load workers: %w", err)
	}
	if len(pool.Workers) == 0 {
		return nil, domain.ErrNoWorkers
	}

	branches := make([]string, 0, len(pool.Workers))
	for _, w := range pool.Workers {
		branches = append(branches, w.Branch)
	}
	base := cfg.Workers.BaseBranch
	out := &MergeWorkersOutput{Instructions: domain.MergeInstructions(base, branches)}
	if !in.Apply {
		return out, nil
	}

	current, err := uc.git.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("get current branch: %w", err)
	}
	if current != base {
		return nil, fmt.Errorf("%w: on %s, want %s", domain.ErrNotOnBaseBranch, current, base)
	}
	dirty, err := uc.git.HasUncommittedChanges(uc.repoRoot)
	if err != nil {
		return nil, fmt.Errorf("check uncommitted changes: %w", err)
	}
	if dirty {
		return nil, domain.ErrUncommittedChanges
	}

	for _, branch := range branches {
		exists, err := uc.git.BranchExists(branch)
		if err != nil {
			return nil, fmt.Errorf("check branch %s: %w", branch, err)
		}
		if !exists {
			out.Missing = append(out.Missing, branch)
			uc.logger.Warn(0, "merge", "branch not found: "+branch)
			continue
		}
		if err := uc.git.Merge(branch, true); err != nil {
			uc.logger.Error(0, "merge", err.Error())
			return nil, fmt.Errorf("merged %d of %d branches: %w", len(out.Merged), len(branches), err)
		}
		out.Merged = append(out.Merged, branch)
		uc.logger.Info(0, "merge", "merged "+branch+" into "+base)

		if !in.Prune {
			continue
		}
		// A branch still checked out in a worker worktree cannot be deleted
		if err := uc.git.DeleteBranch(branch, false); err != nil {
			uc.logger.Warn(0, "merge", fmt.Sprintf("keep %s: %v", branch, err))
			continue
		}
		out.Pruned = append(out.Pruned, branch)
	}
	return out, nil
}
