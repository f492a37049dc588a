package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// GovernTreeInput contains the parameters for the governance prompt.
type GovernTreeInput struct {
	ProjectID string
}

// GovernTreeOutput contains the rendered prompt.
type GovernTreeOutput struct {
	Prompt string
}

// GovernTree is the use case behind `ralph govern`. It renders a prompt that
// asks an agent to reconcile the tree with the codebase and requirements.
type GovernTree struct {
	trees    domain.TreeRepository
	projects domain.ProjectRepository
	config   domain.ConfigLoader
	ralphDir string
}

// NewGovernTree creates a new GovernTree use case.
func NewGovernTree(trees domain.TreeRepository, projects domain.ProjectRepository, config domain.ConfigLoader, ralphDir string) *GovernTree {
	return &GovernTree{trees: trees, projects: projects, config: config, ralphDir: ralphDir}
}

// Execute renders the prompt.
func (uc *GovernTree) Execute(_ context.Context, in GovernTreeInput) (*GovernTreeOutput, error) {
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
	treeJSON, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tree: %w", err)
	}

	return &GovernTreeOutput{Prompt: domain.RenderGovernPrompt(domain.GovernPromptData{
		Requirements: info.Requirements,
		TreeJSON:     string(treeJSON),
		TreeFile:     domain.TreePath(uc.ralphDir, in.ProjectID),
		TargetTokens: info.Budget,
	})}, nil
}
