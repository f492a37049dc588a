package usecase

import (
	"context"
	"fmt"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// ListWorkersInput contains the parameters for listing lanes.
type ListWorkersInput struct {
	ProjectID string
}

// ListWorkersOutput contains the project's lanes.
type ListWorkersOutput struct {
	Workers []WorkerAssignment // Prompt is left empty
}

// ListWorkers is the use case behind `ralph workers`.
type ListWorkers struct {
	workers domain.WorkerRepository
	lanes   lanes
}

// NewListWorkers creates a new ListWorkers use case.
func NewListWorkers(workers domain.WorkerRepository, worktrees domain.WorktreeManager, ralphDir string) *ListWorkers {
	return &ListWorkers{workers: workers, lanes: lanes{worktrees: worktrees, ralphDir: ralphDir}}
}

// Execute lists the lanes with their worktrees.
func (uc *ListWorkers) Execute(_ context.Context, in ListWorkersInput) (*ListWorkersOutput, error) {
	pool, err := uc.workers.LoadWorkers(in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load workers: %w", err)
	}
	out := &ListWorkersOutput{}
	for _, w := range pool.Workers {
		path, err := uc.lanes.path(w.ID)
		if err != nil {
			return nil, err
		}
		out.Workers = append(out.Workers, WorkerAssignment{Worker: w, Worktree: path})
	}
	return out, nil
}
