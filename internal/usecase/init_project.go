// Package usecase contains the application use cases.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// InitProjectInput contains the input parameters for InitProject.
// Fields are ordered to minimize memory padding.
type InitProjectInput struct {
	ProjectID    string // Project identifier (directory and ref name)
	Name         string // Display name; also the tree root name
	Path         string // Working directory of the project (defaults to RepoRoot)
	GithubURL    string
	RepoRoot     string // Path to repository root
	TargetTokens int    // Context budget per task (0 = config default)
}

// InitProjectOutput contains the output from InitProject.
type InitProjectOutput struct {
	Project           domain.Project
	ConfigCreated     bool // True if .ralph/config.toml was written
	GitignoreNeedsAdd bool // True if .ralph/ is not in .gitignore
}

// InitProject creates a project with an empty tree and a requirements stub.
type InitProject struct {
	storeInit domain.StoreInitializer
	projects  domain.ProjectRepository
	trees     domain.TreeRepository
	configs   domain.ConfigManager
	clock     domain.Clock
}

// NewInitProject creates a new InitProject use case.
func NewInitProject(
	storeInit domain.StoreInitializer,
	projects domain.ProjectRepository,
	trees domain.TreeRepository,
	configs domain.ConfigManager,
	clock domain.Clock,
) *InitProject {
	return &InitProject{
		storeInit: storeInit,
		projects:  projects,
		trees:     trees,
		configs:   configs,
		clock:     clock,
	}
}

// Execute initializes the project.
// Existing requirements and trees are kept, so init can adopt a tree that was
// copied into place by hand.
func (uc *InitProject) Execute(_ context.Context, in InitProjectInput) (*InitProjectOutput, error) {
	if err := domain.ValidateProjectID(in.ProjectID); err != nil {
		return nil, err
	}
	if err := uc.storeInit.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	if _, exists, err := uc.projects.GetProject(in.ProjectID); err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	} else if exists {
		return nil, fmt.Errorf("project %s: %w", in.ProjectID, domain.ErrAlreadyInitialized)
	}

	path := in.Path
	if path == "" {
		path = in.RepoRoot
	}
	project := domain.NewProject(in.ProjectID, in.Name, path, uc.clock.Now())
	if err := domain.ValidateName(project.Name); err != nil {
		return nil, fmt.Errorf("project name: %w", err)
	}
	project.GithubURL = in.GithubURL
	if in.TargetTokens > 0 {
		project.TargetTokens = in.TargetTokens
	}
	if err := uc.projects.SaveProject(project); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}

	if _, hasTree, err := uc.trees.LoadTree(in.ProjectID); err != nil {
		return nil, fmt.Errorf("load tree: %w", err)
	} else if !hasTree {
		if err := uc.trees.SaveTree(in.ProjectID, domain.NewTree(project.Name)); err != nil {
			return nil, fmt.Errorf("save tree: %w", err)
		}
	}

	req, err := uc.projects.LoadRequirements(in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load requirements: %w", err)
	}
	if strings.TrimSpace(req) == "" {
		if err := uc.projects.SaveRequirements(in.ProjectID, domain.DefaultRequirements); err != nil {
			return nil, fmt.Errorf("save requirements: %w", err)
		}
	}

	configCreated := true
	if err := uc.configs.InitRepoConfig(domain.NewDefaultConfig()); err != nil {
		if !errors.Is(err, domain.ErrConfigExists) {
			return nil, fmt.Errorf("init config: %w", err)
		}
		configCreated = false
	}

	return &InitProjectOutput{
		Project:           project,
		ConfigCreated:     configCreated,
		GitignoreNeedsAdd: in.RepoRoot != "" && !isRalphInGitignore(in.RepoRoot),
	}, nil
}

// isRalphInGitignore checks if .ralph/ is in .gitignore.
func isRalphInGitignore(repoRoot string) bool {
	content, err := os.ReadFile(filepath.Join(repoRoot, ".gitignore"))
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == ".ralph" || line == ".ralph/" || line == "/.ralph" || line == "/.ralph/" {
			return true
		}
	}
	return false
}
