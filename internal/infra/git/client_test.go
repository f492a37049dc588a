package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// newRepo creates a repository with one commit on main.
func newRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	gitCmd(t, dir, "init", "-b", "main")
	gitCmd(t, dir, "config", "user.email", "ralph@example.com")
	gitCmd(t, dir, "config", "user.name", "Ralph Test")
	commitFile(t, dir, "README.md", "# Test\n", "Initial commit")
	return dir
}

func gitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

func commitFile(t *testing.T, dir, name, content, msg string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	gitCmd(t, dir, "add", name)
	gitCmd(t, dir, "commit", "-m", msg)
}

func TestNewClient(t *testing.T) {
	dir := newRepo(t)

	c, err := NewClient(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, c.RepoRoot())
	assert.Equal(t, filepath.Join(dir, ".git"), c.GitDir())
}

func TestNewClient_FromSubdirectory(t *testing.T) {
	dir := newRepo(t)
	sub := filepath.Join(dir, "internal", "auth")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	c, err := NewClient(sub)

	require.NoError(t, err)
	assert.Equal(t, dir, c.RepoRoot())
}

func TestNewClient_FromWorkerWorktree(t *testing.T) {
	dir := newRepo(t)
	lane := filepath.Join(t.TempDir(), "worker-1")
	gitCmd(t, dir, "worktree", "add", "-b", "ralph/worker-1", lane)

	c, err := NewClient(lane)

	require.NoError(t, err)
	assert.Equal(t, dir, c.RepoRoot(), "lanes share the main repository's .ralph")
	assert.Equal(t, filepath.Join(dir, ".git"), c.GitDir())

	branch, err := c.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "ralph/worker-1", branch)
}

func TestNewClient_NotGitRepo(t *testing.T) {
	c, err := NewClient(t.TempDir())

	assert.ErrorIs(t, err, domain.ErrNotGitRepository)
	assert.Nil(t, c)
}

func TestClient_CurrentBranch(t *testing.T) {
	dir := newRepo(t)
	c, err := NewClient(dir)
	require.NoError(t, err)

	branch, err := c.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	gitCmd(t, dir, "checkout", "-b", "ralph/worker-2")
	branch, err = c.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "ralph/worker-2", branch)
}

func TestClient_MergeWorkerBranch(t *testing.T) {
	dir := newRepo(t)
	gitCmd(t, dir, "checkout", "-b", "ralph/worker-1")
	commitFile(t, dir, "login.go", "package auth\n", "Login")
	gitCmd(t, dir, "checkout", "main")
	c, err := NewClient(dir)
	require.NoError(t, err)

	require.NoError(t, c.Merge("ralph/worker-1", true))

	assert.FileExists(t, filepath.Join(dir, "login.go"))
	parents := gitCmd(t, dir, "rev-list", "--parents", "-n", "1", "HEAD")
	assert.Len(t, strings.Fields(parents), 3, "no-ff merge creates a merge commit")
}

func TestClient_MergeConflictIsAborted(t *testing.T) {
	dir := newRepo(t)
	gitCmd(t, dir, "checkout", "-b", "ralph/worker-1")
	commitFile(t, dir, "README.md", "# Worker\n", "Worker edit")
	gitCmd(t, dir, "checkout", "main")
	commitFile(t, dir, "README.md", "# Main\n", "Main edit")
	c, err := NewClient(dir)
	require.NoError(t, err)

	err = c.Merge("ralph/worker-1", true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "merge ralph/worker-1")
	dirty, err := c.HasUncommittedChanges(dir)
	require.NoError(t, err)
	assert.False(t, dirty, "working tree is restored after the abort")
	assert.NoFileExists(t, filepath.Join(dir, ".git", "MERGE_HEAD"))
}

func TestClient_BranchExists(t *testing.T) {
	dir := newRepo(t)
	gitCmd(t, dir, "branch", "ralph/login")
	c, err := NewClient(dir)
	require.NoError(t, err)

	exists, err := c.BranchExists("ralph/login")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.BranchExists("ralph/missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestClient_DeleteBranch(t *testing.T) {
	dir := newRepo(t)
	gitCmd(t, dir, "branch", "ralph/merged")
	gitCmd(t, dir, "checkout", "-b", "ralph/unmerged")
	commitFile(t, dir, "wip.go", "package wip\n", "WIP")
	gitCmd(t, dir, "checkout", "main")
	c, err := NewClient(dir)
	require.NoError(t, err)

	require.NoError(t, c.DeleteBranch("ralph/merged", false))
	exists, err := c.BranchExists("ralph/merged")
	require.NoError(t, err)
	assert.False(t, exists)

	require.Error(t, c.DeleteBranch("ralph/unmerged", false), "unmerged work needs force")
	require.NoError(t, c.DeleteBranch("ralph/unmerged", true))
}

func TestClient_HasUncommittedChanges(t *testing.T) {
	dir := newRepo(t)
	c, err := NewClient(dir)
	require.NoError(t, err)

	dirty, err := c.HasUncommittedChanges(dir)
	require.NoError(t, err)
	assert.False(t, dirty)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0o644))
	dirty, err = c.HasUncommittedChanges(dir)
	require.NoError(t, err)
	assert.True(t, dirty)
}
