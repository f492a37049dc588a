package gitstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/infra/fingerprint"
)

func setupTestRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	// Create an initial commit so HEAD resolves
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test"), 0o644))
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)

	return dir, repo
}

func sampleTree() domain.Tree {
	return domain.Tree{
		Name:    "app",
		Context: "Go service",
		Children: []domain.TaskNode{
			{Name: "Auth", Status: domain.StatusPending, Context: "JWT", Children: []domain.TaskNode{
				{Name: "Login", Status: domain.StatusDone, Files: []string{"login.go"}},
				{Name: "Logout", Status: domain.StatusInProgress, Acceptance: []string{"go test ./..."}},
			}},
			{Name: "Docs", Status: domain.StatusBlocked, Spec: "Write the README"},
		},
	}
}

func TestNew_NotGitRepository(t *testing.T) {
	_, err := New(t.TempDir(), "ralph")
	assert.ErrorIs(t, err, domain.ErrNotGitRepository)
}

func TestStore_TreeRoundTrip(t *testing.T) {
	dir, _ := setupTestRepo(t)
	store, err := New(dir, "ralph")
	require.NoError(t, err)

	_, ok, err := store.LoadTree("default")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveTree("default", sampleTree()))

	got, ok, err := store.LoadTree("default")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleTree(), got)

	// Projects are isolated from each other
	_, ok, err = store.LoadTree("other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SaveTree_LeavesWorkingTreeClean(t *testing.T) {
	_, repo := setupTestRepo(t)
	store := NewWithRepo(repo, "ralph")
	require.NoError(t, store.SaveTree("default", sampleTree()))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	status, err := wt.Status()
	require.NoError(t, err)
	assert.True(t, status.IsClean())

	_, err = repo.Reference("refs/ralph/default/tree", true)
	assert.NoError(t, err)
}

func TestStore_SaveTree_RejectsInvalid(t *testing.T) {
	_, repo := setupTestRepo(t)
	store := NewWithRepo(repo, "ralph")

	bad := domain.Tree{Name: "app", Children: []domain.TaskNode{{Name: "A"}, {Name: "A"}}}
	assert.ErrorIs(t, store.SaveTree("default", bad), domain.ErrDuplicateSibling)
}

func TestStore_Workers(t *testing.T) {
	_, repo := setupTestRepo(t)
	store := NewWithRepo(repo, "")

	pool, err := store.LoadWorkers("default")
	require.NoError(t, err)
	assert.Empty(t, pool.Workers)

	want := domain.WorkerPool{
		Workers: []domain.Worker{
			{ID: 2, Branch: "ralph/logout", Task: "Logout", Path: "app.Auth.Logout", Status: domain.WorkerInProgress},
		},
		NextID: 3,
	}
	require.NoError(t, store.SaveWorkers("default", want))

	got, err := store.LoadWorkers("default")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_Snapshots(t *testing.T) {
	_, repo := setupTestRepo(t)
	store := NewWithRepo(repo, "ralph")
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	snaps, err := store.ListSnapshots("default")
	require.NoError(t, err)
	assert.Empty(t, snaps)

	first, err := store.Snapshot("default", sampleTree(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, "refs/ralph/default/snapshots/1", first.Ref)
	assert.Len(t, first.Digest, 64)
	assert.Equal(t, 3, first.Stats.Total)
	assert.Equal(t, 1, first.Stats.Done)

	changed, ok := domain.SetStatus(sampleTree(), domain.Path{"app", "Auth", "Logout"}, domain.StatusDone)
	require.True(t, ok)
	second, err := store.Snapshot("default", changed, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, second.Seq)
	assert.NotEqual(t, first.Digest, second.Digest)

	snaps, err = store.ListSnapshots("default")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, 1, snaps[0].Seq)
	assert.Equal(t, first.Digest, snaps[0].Digest)
	assert.True(t, snaps[0].CreatedAt.Equal(now))
	assert.Equal(t, 2, snaps[1].Stats.Done)

	restored, err := store.LoadSnapshot("default", 1)
	require.NoError(t, err)
	assert.Equal(t, sampleTree(), restored)

	_, err = store.LoadSnapshot("default", 9)
	assert.ErrorIs(t, err, domain.ErrNoSnapshots)
}

func TestStore_SnapshotDigestMatchesContent(t *testing.T) {
	_, repo := setupTestRepo(t)
	store := NewWithRepo(repo, "ralph")

	a, err := store.Snapshot("default", sampleTree(), time.Now())
	require.NoError(t, err)
	b, err := store.Snapshot("default", sampleTree(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, a.Digest, b.Digest)
	assert.Equal(t, fingerprint.Short(a.Digest), a.Digest[:fingerprint.ShortLen])
}
