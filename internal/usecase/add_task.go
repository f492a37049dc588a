package usecase

import (
	"context"
	"strings"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// AddTaskInput contains the parameters for adding a task.
type AddTaskInput struct {
	ProjectID string
	Parent    string          // Parent path; empty adds under the root
	Node      domain.TaskNode // Node to add, possibly with children
}

// AddTaskOutput contains the result of adding a task.
type AddTaskOutput struct {
	Path domain.Path // Path of the added node
}

// AddTask is the use case for inserting a node into the tree.
type AddTask struct {
	trees  domain.TreeRepository
	logger domain.Logger
}

// NewAddTask creates a new AddTask use case.
func NewAddTask(trees domain.TreeRepository, logger domain.Logger) *AddTask {
	return &AddTask{trees: trees, logger: logger}
}

// Execute adds the node. Sibling names must stay unique.
func (uc *AddTask) Execute(_ context.Context, in AddTaskInput) (*AddTaskOutput, error) {
	tree, err := shared.LoadTree(uc.trees, in.ProjectID)
	if err != nil {
		return nil, err
	}

	parent := tree.RootPath()
	if strings.TrimSpace(in.Parent) != "" {
		if parent, err = shared.ParsePath(tree, in.Parent); err != nil {
			return nil, err
		}
	}

	node := domain.Normalize(domain.Tree{Name: tree.Name, Children: []domain.TaskNode{in.Node}}).Children[0]
	updated, err := domain.AddChild(tree, parent, node)
	if err != nil {
		return nil, err
	}
	if err := shared.SaveTree(uc.trees, in.ProjectID, updated); err != nil {
		return nil, err
	}

	path := append(append(domain.Path{}, parent...), node.Name)
	uc.logger.Info(0, "task", "added "+path.String())
	return &AddTaskOutput{Path: path}, nil
}
