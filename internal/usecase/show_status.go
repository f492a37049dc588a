package usecase

import (
	"context"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// ShowStatusInput contains the parameters for the status report.
type ShowStatusInput struct {
	ProjectID string
}

// ShowStatusOutput is the project status report.
// Fields are ordered to minimize memory padding.
type ShowStatusOutput struct {
	Next    *domain.TaskWithPath `json:"next,omitempty"`
	Slice   string               `json:"slice,omitempty"` // Current slice when slices are enabled
	Tree    domain.Tree          `json:"tree"`
	Workers []domain.Worker      `json:"workers"` // Active lanes
	Stats   domain.TreeStats     `json:"stats"`
}

// ShowStatus is the use case behind `ralph status`.
type ShowStatus struct {
	trees   domain.TreeRepository
	workers domain.WorkerRepository
	config  domain.ConfigLoader
}

// NewShowStatus creates a new ShowStatus use case.
func NewShowStatus(trees domain.TreeRepository, workers domain.WorkerRepository, config domain.ConfigLoader) *ShowStatus {
	return &ShowStatus{trees: trees, workers: workers, config: config}
}

// Execute builds the status report.
func (uc *ShowStatus) Execute(_ context.Context, in ShowStatusInput) (*ShowStatusOutput, error) {
	cfg, err := shared.LoadConfig(uc.config)
	if err != nil {
		return nil, err
	}
	opts := cfg.ScheduleOptions()

	tree, err := shared.LoadTree(uc.trees, in.ProjectID)
	if err != nil {
		return nil, err
	}
	pool, err := uc.workers.LoadWorkers(in.ProjectID)
	if err != nil {
		return nil, err
	}

	out := &ShowStatusOutput{
		Tree:    tree,
		Stats:   domain.Stats(tree),
		Workers: pool.Active(),
	}
	if next, ok := domain.NextPending(tree, opts); ok {
		out.Next = &next
	}
	if opts.Slices {
		if slice, ok := domain.CurrentSlice(tree); ok {
			out.Slice = slice.Name
		}
	}
	return out, nil
}
