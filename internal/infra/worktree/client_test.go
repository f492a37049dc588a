package worktree

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// setupTestRepo creates a temporary git repository with one commit.
func setupTestRepo(t *testing.T) (repoRoot, ralphDir string) {
	t.Helper()

	repoRoot = t.TempDir()
	ralphDir = filepath.Join(repoRoot, domain.DirName)

	runGit(t, repoRoot, "init")
	runGit(t, repoRoot, "config", "user.email", "test@example.com")
	runGit(t, repoRoot, "config", "user.name", "Test User")
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, "README.md"), []byte("# Test"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, ".gitignore"), []byte(".ralph/\n"), 0o644))
	runGit(t, repoRoot, "add", ".")
	runGit(t, repoRoot, "commit", "-m", "Initial commit")

	return repoRoot, ralphDir
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, out)
}

func TestClient_Create_NewBranch(t *testing.T) {
	repoRoot, ralphDir := setupTestRepo(t)
	client := NewClient(repoRoot)
	path := domain.WorktreePath(ralphDir, 1)

	require.NoError(t, client.Create(path, "ralph/login", "HEAD"))

	assert.FileExists(t, filepath.Join(path, "README.md"))
	exists, err := client.Exists(path)
	require.NoError(t, err)
	assert.True(t, exists)

	worktrees, err := client.List()
	require.NoError(t, err)
	require.Len(t, worktrees, 2)
	assert.Equal(t, "ralph/login", worktrees[1].Branch)
}

func TestClient_Create_ExistingBranch(t *testing.T) {
	repoRoot, ralphDir := setupTestRepo(t)
	runGit(t, repoRoot, "branch", "ralph/existing")
	client := NewClient(repoRoot)
	path := domain.WorktreePath(ralphDir, 2)

	require.NoError(t, client.Create(path, "ralph/existing", "HEAD"))

	exists, err := client.Exists(path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestClient_Create_AlreadyExists(t *testing.T) {
	repoRoot, ralphDir := setupTestRepo(t)
	client := NewClient(repoRoot)
	path := domain.WorktreePath(ralphDir, 1)

	require.NoError(t, client.Create(path, "ralph/login", "HEAD"))
	// Second call is a no-op
	require.NoError(t, client.Create(path, "ralph/login", "HEAD"))
}

func TestClient_Create_OrphanedWorktree(t *testing.T) {
	repoRoot, ralphDir := setupTestRepo(t)
	client := NewClient(repoRoot)
	path := domain.WorktreePath(ralphDir, 1)

	require.NoError(t, client.Create(path, "ralph/login", "HEAD"))
	// Delete the directory behind git's back
	require.NoError(t, os.RemoveAll(path))

	exists, err := client.Exists(path)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, client.Create(path, "ralph/login", "HEAD"))
	assert.DirExists(t, path)
}

func TestClient_Remove(t *testing.T) {
	repoRoot, ralphDir := setupTestRepo(t)
	client := NewClient(repoRoot)
	path := domain.WorktreePath(ralphDir, 1)
	require.NoError(t, client.Create(path, "ralph/login", "HEAD"))

	require.NoError(t, client.Remove(path, false))

	assert.NoDirExists(t, path)
	exists, err := client.Exists(path)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestClient_Remove_WithUncommittedChanges(t *testing.T) {
	repoRoot, ralphDir := setupTestRepo(t)
	client := NewClient(repoRoot)
	path := domain.WorktreePath(ralphDir, 1)
	require.NoError(t, client.Create(path, "ralph/login", "HEAD"))
	require.NoError(t, os.WriteFile(filepath.Join(path, "wip.go"), []byte("package wip"), 0o644))

	err := client.Remove(path, false)
	assert.ErrorIs(t, err, domain.ErrUncommittedChanges)

	require.NoError(t, client.Remove(path, true))
	assert.NoDirExists(t, path)
}

func TestClient_Remove_NotFound(t *testing.T) {
	repoRoot, ralphDir := setupTestRepo(t)
	client := NewClient(repoRoot)

	err := client.Remove(domain.WorktreePath(ralphDir, 9), false)
	assert.ErrorIs(t, err, domain.ErrWorktreeNotFound)
}

func TestParseWorktreeList(t *testing.T) {
	input := `worktree /path/to/main
HEAD abc123def456
branch refs/heads/main

worktree /path/to/feature
HEAD def456abc123
branch refs/heads/feature-branch

`

	worktrees, err := parseWorktreeList(input)

	require.NoError(t, err)
	require.Len(t, worktrees, 2)

	assert.Equal(t, "/path/to/main", worktrees[0].Path)
	assert.Equal(t, "main", worktrees[0].Branch)

	assert.Equal(t, "/path/to/feature", worktrees[1].Path)
	assert.Equal(t, "feature-branch", worktrees[1].Branch)
}

func TestParseWorktreeList_Empty(t *testing.T) {
	worktrees, err := parseWorktreeList("")

	require.NoError(t, err)
	assert.Empty(t, worktrees)
}

func TestParseWorktreeList_DetachedHead(t *testing.T) {
	// Detached HEAD doesn't have a branch line
	input := `worktree /path/to/detached
HEAD abc123def456
detached

`

	worktrees, err := parseWorktreeList(input)

	require.NoError(t, err)
	require.Len(t, worktrees, 1)
	assert.Equal(t, "/path/to/detached", worktrees[0].Path)
	assert.Equal(t, "", worktrees[0].Branch) // No branch for detached HEAD
}
