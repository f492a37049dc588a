package usecase

import (
	"errors"
	"fmt"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// WorkerAssignment is one lane with the prompt to hand to its agent.
type WorkerAssignment struct {
	Worker   domain.Worker
	Worktree string // Empty when the lane shares the main checkout
	Prompt   string
}

// lanes manages the optional per-worker worktrees.
type lanes struct {
	worktrees domain.WorktreeManager
	ralphDir  string
}

// create checks out the worker's branch in its own worktree.
func (l lanes) create(w domain.Worker, baseBranch string) (string, error) {
	if l.worktrees == nil {
		return "", nil
	}
	path := domain.WorktreePath(l.ralphDir, w.ID)
	if err := l.worktrees.Create(path, w.Branch, baseBranch); err != nil {
		return "", fmt.Errorf("create worktree for worker %d: %w", w.ID, err)
	}
	return path, nil
}

// path returns the worker's worktree if one is registered.
func (l lanes) path(id int) (string, error) {
	if l.worktrees == nil {
		return "", nil
	}
	path := domain.WorktreePath(l.ralphDir, id)
	exists, err := l.worktrees.Exists(path)
	if err != nil {
		return "", fmt.Errorf("check worktree: %w", err)
	}
	if !exists {
		return "", nil
	}
	return path, nil
}

// remove deletes the worker's worktree. A lane without one is a no-op.
func (l lanes) remove(id int, force bool) (string, error) {
	path, err := l.path(id)
	if err != nil || path == "" {
		return "", err
	}
	if err := l.worktrees.Remove(path, force); err != nil {
		if errors.Is(err, domain.ErrWorktreeNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("remove worktree of worker %d: %w", id, err)
	}
	return path, nil
}

func assignment(tree domain.Tree, w domain.Worker, requirements, baseBranch, worktree string) WorkerAssignment {
	node, _ := domain.FindByPath(tree, w.TaskPath())
	return WorkerAssignment{
		Worker:   w,
		Worktree: worktree,
		Prompt: domain.RenderWorkerPrompt(domain.WorkerPromptData{
			BaseBranch: baseBranch,
			Context:    domain.BuildContext(tree, w.TaskPath(), requirements),
			Worktree:   worktree,
			Task:       node,
			Worker:     w,
		}),
	}
}

// markDone completes the worker's task. marked is false when the task is
// already done. A path that no longer resolves to a completable leaf is an
// error.
func markDone(tree domain.Tree, w domain.Worker) (updated domain.Tree, marked bool, err error) {
	updated, _, err = domain.Transition(tree, w.TaskPath(), domain.StatusDone)
	switch {
	case errors.Is(err, domain.ErrAlreadyDone):
		return tree, false, nil
	case err != nil:
		return tree, false, fmt.Errorf("worker %d: %w", w.ID, err)
	}
	return updated, true, nil
}
