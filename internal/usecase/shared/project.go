// Package shared holds helpers used by several use cases.
package shared

import (
	"fmt"
	"strings"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// LoadTree returns the project's tree. A project without a tree has not
// been initialized and is reported as ErrProjectNotFound.
func LoadTree(trees domain.TreeRepository, projectID string) (domain.Tree, error) {
	tree, ok, err := trees.LoadTree(projectID)
	if err != nil {
		return domain.Tree{}, fmt.Errorf("load tree: %w", err)
	}
	if !ok {
		return domain.Tree{}, fmt.Errorf("%w: %s", domain.ErrProjectNotFound, projectID)
	}
	return tree, nil
}

// SaveTree persists the project's tree.
func SaveTree(trees domain.TreeRepository, projectID string, tree domain.Tree) error {
	if err := trees.SaveTree(projectID, tree); err != nil {
		return fmt.Errorf("save tree: %w", err)
	}
	return nil
}

// ParsePath parses a dot-joined task path. The tree name may be omitted:
// "Backend.Login" and "Root.Backend.Login" address the same node.
func ParsePath(tree domain.Tree, s string) (domain.Path, error) {
	p := domain.ParsePath(s)
	if len(p) == 0 {
		return nil, domain.ErrEmptyPath
	}
	if p[0] != tree.Name {
		p = append(domain.Path{tree.Name}, p...)
	}
	return p, nil
}

// GetTask resolves s to a task. ErrTaskNotFound is returned when the path
// does not resolve.
func GetTask(tree domain.Tree, s string) (domain.TaskWithPath, error) {
	p, err := ParsePath(tree, s)
	if err != nil {
		return domain.TaskWithPath{}, err
	}
	node, ok := domain.FindByPath(tree, p)
	if !ok {
		return domain.TaskWithPath{}, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, strings.TrimSpace(s))
	}
	return domain.TaskWithPath{Task: node, Path: p}, nil
}

// GetLeaf resolves s to a leaf task.
func GetLeaf(tree domain.Tree, s string) (domain.TaskWithPath, error) {
	task, err := GetTask(tree, s)
	if err != nil {
		return task, err
	}
	if len(task.Path) == 1 || !task.Task.IsLeaf() {
		return domain.TaskWithPath{}, fmt.Errorf("%s: %w", task.Path, domain.ErrNotLeaf)
	}
	return task, nil
}

// TargetOrNext resolves s when given, and otherwise picks the next pending
// leaf. ErrNoPendingTasks is returned when nothing is left.
func TargetOrNext(tree domain.Tree, s string, opts domain.ScheduleOptions) (domain.TaskWithPath, error) {
	if strings.TrimSpace(s) != "" {
		return GetLeaf(tree, s)
	}
	task, ok := domain.NextPending(tree, opts)
	if !ok {
		return domain.TaskWithPath{}, domain.ErrNoPendingTasks
	}
	return task, nil
}

// ProjectInfo is what the prompts and the estimator need to know about a project.
type ProjectInfo struct {
	Requirements string
	Project      domain.Project
	Budget       int
}

// LoadProjectInfo loads the project metadata and requirements. A project
// without metadata (e.g. a hand-made tree) falls back to config defaults.
func LoadProjectInfo(projects domain.ProjectRepository, projectID string, cfg *domain.Config) (ProjectInfo, error) {
	p, ok, err := projects.GetProject(projectID)
	if err != nil {
		return ProjectInfo{}, fmt.Errorf("get project: %w", err)
	}
	if !ok {
		p = domain.Project{ID: projectID, Name: projectID}
	}
	req, err := projects.LoadRequirements(projectID)
	if err != nil {
		return ProjectInfo{}, fmt.Errorf("load requirements: %w", err)
	}
	fallback := 0
	if cfg != nil {
		fallback = cfg.Estimate.TargetTokens
	}
	return ProjectInfo{Project: p, Requirements: req, Budget: p.Budget(fallback)}, nil
}

// LoadConfig loads the merged configuration. A nil loader yields the defaults.
func LoadConfig(loader domain.ConfigLoader) (*domain.Config, error) {
	if loader == nil {
		return domain.NewDefaultConfig(), nil
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg == nil {
		return domain.NewDefaultConfig(), nil
	}
	return cfg, nil
}
