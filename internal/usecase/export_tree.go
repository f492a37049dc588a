package usecase

import (
	"context"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// ExportTreeInput contains the parameters for exporting a tree.
type ExportTreeInput struct {
	ProjectID string
}

// ExportTreeOutput holds the exported tree. Encoding is left to the caller.
type ExportTreeOutput struct {
	Tree domain.Tree
}

// ExportTree is the use case behind `ralph export`.
type ExportTree struct {
	trees domain.TreeRepository
}

// NewExportTree creates a new ExportTree use case.
func NewExportTree(trees domain.TreeRepository) *ExportTree {
	return &ExportTree{trees: trees}
}

// Execute returns the normalized tree.
func (uc *ExportTree) Execute(_ context.Context, in ExportTreeInput) (*ExportTreeOutput, error) {
	tree, err := shared.LoadTree(uc.trees, in.ProjectID)
	if err != nil {
		return nil, err
	}
	return &ExportTreeOutput{Tree: domain.Normalize(tree)}, nil
}
