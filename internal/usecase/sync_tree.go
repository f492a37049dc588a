package usecase

import (
	"context"
	"fmt"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// SyncTreeInput contains the parameters for recording or listing snapshots.
type SyncTreeInput struct {
	ProjectID string
	List      bool // List snapshots instead of recording one
}

// SyncTreeOutput contains the new snapshot or the history.
type SyncTreeOutput struct {
	Snapshot  *domain.Snapshot
	Snapshots []domain.Snapshot
}

// SyncTree is the use case behind `ralph sync`.
type SyncTree struct {
	trees     domain.TreeRepository
	snapshots domain.SnapshotStore
	clock     domain.Clock
	logger    domain.Logger
}

// NewSyncTree creates a new SyncTree use case. snapshots is nil unless the
// git store is configured.
func NewSyncTree(trees domain.TreeRepository, snapshots domain.SnapshotStore, clock domain.Clock, logger domain.Logger) *SyncTree {
	return &SyncTree{trees: trees, snapshots: snapshots, clock: clock, logger: logger}
}

// Execute records a snapshot of the current tree, or lists the history.
func (uc *SyncTree) Execute(_ context.Context, in SyncTreeInput) (*SyncTreeOutput, error) {
	if uc.snapshots == nil {
		return nil, domain.ErrNoSnapshots
	}
	if in.List {
		snaps, err := uc.snapshots.ListSnapshots(in.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		return &SyncTreeOutput{Snapshots: snaps}, nil
	}

	tree, err := shared.LoadTree(uc.trees, in.ProjectID)
	if err != nil {
		return nil, err
	}
	snap, err := uc.snapshots.Snapshot(in.ProjectID, tree, uc.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	uc.logger.Info(0, "sync", fmt.Sprintf("recorded snapshot %d (%s)", snap.Seq, snap.Ref))
	return &SyncTreeOutput{Snapshot: &snap}, nil
}
