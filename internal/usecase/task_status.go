package usecase

import (
	"fmt"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// statusChanger applies a leaf transition, saves the tree and records the
// change in the progress log.
type statusChanger struct {
	trees    domain.TreeRepository
	projects domain.ProjectRepository
	clock    domain.Clock
	logger   domain.Logger
}

func (s statusChanger) apply(
	projectID string,
	tree domain.Tree,
	path domain.Path,
	target domain.Status,
	action string,
) (domain.Tree, domain.TaskWithPath, error) {
	updated, node, err := domain.Transition(tree, path, target)
	if err != nil {
		return tree, domain.TaskWithPath{}, err
	}
	if err := shared.SaveTree(s.trees, projectID, updated); err != nil {
		return tree, domain.TaskWithPath{}, err
	}
	if err := s.projects.AppendProgress(projectID, domain.ProgressEntry(s.clock.Now(), action, path)); err != nil {
		return updated, domain.TaskWithPath{}, fmt.Errorf("append progress: %w", err)
	}
	if s.logger != nil {
		s.logger.Info(0, "task", fmt.Sprintf("%s %s", action, path))
	}
	return updated, domain.TaskWithPath{Task: node, Path: path}, nil
}
