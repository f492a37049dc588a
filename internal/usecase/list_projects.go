package usecase

import (
	"context"
	"fmt"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// ListProjectsInput contains the parameters for listing projects.
type ListProjectsInput struct{}

// ListProjectsOutput contains the result of listing projects.
type ListProjectsOutput struct {
	Summaries []domain.ProjectSummary
}

// ListProjects is the use case for listing projects with their progress.
type ListProjects struct {
	projects domain.ProjectRepository
	trees    domain.TreeRepository
}

// NewListProjects creates a new ListProjects use case.
func NewListProjects(projects domain.ProjectRepository, trees domain.TreeRepository) *ListProjects {
	return &ListProjects{projects: projects, trees: trees}
}

// Execute lists all projects. A project without a tree reports no tasks.
func (uc *ListProjects) Execute(_ context.Context, _ ListProjectsInput) (*ListProjectsOutput, error) {
	projects, err := uc.projects.ListProjects()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	summaries := make([]domain.ProjectSummary, 0, len(projects))
	for _, p := range projects {
		tree, _, err := uc.trees.LoadTree(p.ID)
		if err != nil {
			return nil, fmt.Errorf("load tree of %s: %w", p.ID, err)
		}
		summaries = append(summaries, domain.Summarize(p, tree))
	}
	return &ListProjectsOutput{Summaries: summaries}, nil
}
