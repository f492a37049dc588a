// Package worktree provides git worktree operations for worker lanes.
package worktree

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// Client manages git worktrees.
type Client struct {
	repoRoot string // Main repository root
}

// NewClient creates a new worktree client for the repository at repoRoot.
func NewClient(repoRoot string) *Client {
	return &Client{repoRoot: repoRoot}
}

// Ensure Client implements domain.WorktreeManager interface.
var _ domain.WorktreeManager = (*Client)(nil)

// Create creates a worktree at path checked out on branch.
// If the branch doesn't exist, it is created from baseBranch.
// Creating a worktree that is already registered at path is a no-op.
func (c *Client) Create(path, branch, baseBranch string) error {
	exists, err := c.Exists(path)
	if err != nil {
		return fmt.Errorf("check worktree exists: %w", err)
	}
	if exists {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create worktree parent: %w", err)
	}

	branchExists, err := c.branchExists(branch)
	if err != nil {
		return fmt.Errorf("check branch exists: %w", err)
	}

	var args []string
	if branchExists {
		args = []string{"worktree", "add", path, branch}
	} else {
		args = []string{"worktree", "add", "-b", branch, path, baseBranch}
	}

	out, err := c.git(args...)
	if err != nil {
		// Registered but the directory is missing: prune stale entries and retry
		if !strings.Contains(out, "already registered") {
			return fmt.Errorf("create worktree: %w: %s", err, out)
		}
		if pruneErr := c.prune(); pruneErr != nil {
			return fmt.Errorf("prune stale worktrees: %w", pruneErr)
		}
		if out, err = c.git(args...); err != nil {
			return fmt.Errorf("create worktree after prune: %w: %s", err, out)
		}
	}

	return nil
}

// Remove deletes the worktree at path.
// Without force, returns ErrUncommittedChanges if the worktree is dirty.
func (c *Client) Remove(path string, force bool) error {
	registered, err := c.registered(path)
	if err != nil {
		return err
	}
	if !registered {
		return domain.ErrWorktreeNotFound
	}

	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)

	if out, err := c.git(args...); err != nil {
		if strings.Contains(out, "contains modified or untracked files") ||
			strings.Contains(out, "is dirty") {
			return domain.ErrUncommittedChanges
		}
		return fmt.Errorf("remove worktree: %w: %s", err, out)
	}

	return nil
}

// Exists checks if a worktree is registered at path.
// Returns true only if both git registration and directory exist.
func (c *Client) Exists(path string) (bool, error) {
	registered, err := c.registered(path)
	if err != nil || !registered {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("check worktree directory: %w", err)
	}
	return true, nil
}

// List returns all worktrees.
func (c *Client) List() ([]domain.WorktreeInfo, error) {
	cmd := exec.Command("git", "worktree", "list", "--porcelain")
	cmd.Dir = c.repoRoot

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("list worktrees: %w", err)
	}

	return parseWorktreeList(string(out))
}

// registered reports whether git lists a worktree at path.
func (c *Client) registered(path string) (bool, error) {
	worktrees, err := c.List()
	if err != nil {
		return false, err
	}
	want := canonical(path)
	for _, wt := range worktrees {
		if canonical(wt.Path) == want {
			return true, nil
		}
	}
	return false, nil
}

// canonical resolves symlinks so paths reported by git compare equal to
// paths built by ralph (e.g. /tmp vs /private/tmp).
func canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	// The leaf may be gone; resolve the parent instead
	if parent, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(parent, filepath.Base(abs))
	}
	return abs
}

// parseWorktreeList parses the porcelain output of git worktree list.
// Format:
//
//	worktree /path/to/worktree
//	HEAD abc123
//	branch refs/heads/branch-name
//	<blank line>
func parseWorktreeList(output string) ([]domain.WorktreeInfo, error) {
	var worktrees []domain.WorktreeInfo
	var current domain.WorktreeInfo

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "worktree "):
			current.Path = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "branch "):
			current.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
		case line == "":
			if current.Path != "" {
				worktrees = append(worktrees, current)
			}
			current = domain.WorktreeInfo{}
		}
	}

	// Handle last entry if no trailing newline
	if current.Path != "" {
		worktrees = append(worktrees, current)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse worktree list: %w", err)
	}

	return worktrees, nil
}

// prune removes stale worktree entries.
func (c *Client) prune() error {
	if out, err := c.git("worktree", "prune"); err != nil {
		return fmt.Errorf("prune worktrees: %w: %s", err, out)
	}
	return nil
}

// branchExists checks if a branch exists in the repository.
func (c *Client) branchExists(branch string) (bool, error) {
	cmd := exec.Command("git", "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	cmd.Dir = c.repoRoot

	err := cmd.Run()
	if err != nil {
		// Exit code 1 means branch doesn't exist
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return false, nil
		}
		return false, fmt.Errorf("check branch exists: %w", err)
	}

	return true, nil
}

func (c *Client) git(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = c.repoRoot
	out, err := cmd.CombinedOutput()
	return string(out), err
}
