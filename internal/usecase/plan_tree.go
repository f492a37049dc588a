package usecase

import (
	"context"
	"fmt"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// PlanTreeInput contains the parameters for generating a plan.
type PlanTreeInput struct {
	ProjectID string
	Force     bool // Replace a tree that already has tasks
}

// PlanTreeOutput contains the generated tree.
type PlanTreeOutput struct {
	Tree  domain.Tree
	Stats domain.TreeStats
}

// PlanTree is the use case behind `ralph plan`: it asks the AI provider to
// decompose requirements.md into a task tree.
type PlanTree struct {
	trees    domain.TreeRepository
	projects domain.ProjectRepository
	config   domain.ConfigLoader
	ai       domain.AIProvider
	tracer   domain.Tracer
	logger   domain.Logger
}

// NewPlanTree creates a new PlanTree use case.
func NewPlanTree(
	trees domain.TreeRepository,
	projects domain.ProjectRepository,
	config domain.ConfigLoader,
	ai domain.AIProvider,
	tracer domain.Tracer,
	logger domain.Logger,
) *PlanTree {
	return &PlanTree{
		trees:    trees,
		projects: projects,
		config:   config,
		ai:       ai,
		tracer:   tracer,
		logger:   logger,
	}
}

// Execute generates and saves the tree.
func (uc *PlanTree) Execute(ctx context.Context, in PlanTreeInput) (*PlanTreeOutput, error) {
	cfg, err := shared.LoadConfig(uc.config)
	if err != nil {
		return nil, err
	}
	current, err := shared.LoadTree(uc.trees, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if !current.IsEmpty() && !in.Force {
		return nil, domain.ErrTreeNotEmpty
	}
	info, err := shared.LoadProjectInfo(uc.projects, in.ProjectID, cfg)
	if err != nil {
		return nil, err
	}

	ctx, span := uc.tracer.Start(ctx, "ai.plan")
	defer span.End()
	span.SetAttributes("provider", uc.ai.Name(), "project", in.ProjectID)

	uc.logger.Info(0, "plan", fmt.Sprintf("requesting plan from %s", uc.ai.Name()))
	tree, err := uc.ai.GeneratePlan(ctx, domain.PlanRequest{
		ProjectName:  current.Name,
		Requirements: info.Requirements,
		TargetTokens: info.Budget,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("generate plan: %w", err)
	}

	if tree.Name == "" {
		tree.Name = current.Name
	}
	tree = domain.Normalize(tree)
	if err := domain.Validate(tree); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	if err := shared.SaveTree(uc.trees, in.ProjectID, tree); err != nil {
		return nil, err
	}

	stats := domain.Stats(tree)
	span.SetAttributes("leaves", stats.Total)
	uc.logger.Info(0, "plan", fmt.Sprintf("planned %d tasks", stats.Total))
	return &PlanTreeOutput{Tree: tree, Stats: stats}, nil
}
