// Package git runs the git commands ralph needs on the host repository:
// locating it and merging worker branches back into the base branch.
package git

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// Client runs git in one repository.
type Client struct {
	repoRoot   string // Main repository root, the parent of the common .git
	gitDir     string // Common .git directory, shared by every worktree
	workingDir string // Toplevel of the checkout ralph was started in
}

// Ensure Client implements domain.Git interface.
var _ domain.Git = (*Client)(nil)

// NewClient locates the repository containing dir. Started inside a worker
// worktree, the client still resolves the main repository, so .ralph state
// is shared by every lane.
func NewClient(dir string) (*Client, error) {
	c := &Client{}
	out, err := run(dir, "rev-parse", "--git-common-dir", "--show-toplevel")
	if err != nil {
		return nil, domain.ErrNotGitRepository
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		return nil, fmt.Errorf("unexpected rev-parse output: %q", out)
	}

	c.gitDir = strings.TrimSpace(lines[0])
	if !filepath.IsAbs(c.gitDir) {
		c.gitDir = filepath.Join(dir, c.gitDir)
	}
	c.gitDir = filepath.Clean(c.gitDir)
	c.repoRoot = filepath.Dir(c.gitDir)
	c.workingDir = strings.TrimSpace(lines[1])
	return c, nil
}

// RepoRoot returns the main repository root.
func (c *Client) RepoRoot() string {
	return c.repoRoot
}

// GitDir returns the common .git directory.
func (c *Client) GitDir() string {
	return c.gitDir
}

// CurrentBranch returns the branch checked out where ralph was started.
func (c *Client) CurrentBranch() (string, error) {
	out, err := run(c.workingDir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("get current branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// BranchExists reports whether a local branch exists.
func (c *Client) BranchExists(branch string) (bool, error) {
	_, err := run(c.repoRoot, "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, fmt.Errorf("check branch %s: %w", branch, err)
}

// HasUncommittedChanges reports staged, unstaged or untracked changes in dir.
func (c *Client) HasUncommittedChanges(dir string) (bool, error) {
	out, err := run(dir, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("check uncommitted changes: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

// Merge merges branch into the current branch, always creating a merge
// commit when noFF is set. A failed merge is aborted so the working tree is
// left as it was.
func (c *Client) Merge(branch string, noFF bool) error {
	args := []string{"merge"}
	if noFF {
		args = append(args, "--no-ff", "--no-edit")
	}
	args = append(args, branch)

	if out, err := run(c.workingDir, args...); err != nil {
		_, _ = run(c.workingDir, "merge", "--abort")
		return fmt.Errorf("merge %s: %w: %s", branch, err, strings.TrimSpace(out))
	}
	return nil
}

// DeleteBranch deletes a local branch. Without force, git refuses to delete
// a branch that is not merged.
func (c *Client) DeleteBranch(branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	if out, err := run(c.repoRoot, "branch", flag, branch); err != nil {
		return fmt.Errorf("delete branch %s: %w: %s", branch, err, strings.TrimSpace(out))
	}
	return nil
}

// run executes git in dir and returns its combined output.
func run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}
