package jsonstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := New(filepath.Join(t.TempDir(), domain.DirName))
	require.NoError(t, store.Initialize())
	return store
}

func sampleTree() domain.Tree {
	return domain.Tree{
		Name:    "app",
		Context: "Go service",
		Children: []domain.TaskNode{
			{Name: "Auth", Status: domain.StatusPending, Children: []domain.TaskNode{
				{Name: "Login", Status: domain.StatusDone, Files: []string{"login.go"}},
				{Name: "Logout", Status: domain.StatusPending, Acceptance: []string{"go test ./..."}},
			}},
		},
	}
}

func TestStore_Initialize(t *testing.T) {
	dir := filepath.Join(t.TempDir(), domain.DirName)
	store := New(dir)
	assert.False(t, store.IsInitialized())

	require.NoError(t, store.Initialize())
	assert.True(t, store.IsInitialized())
	assert.DirExists(t, filepath.Join(dir, "logs"))

	// Initialize again should be idempotent
	require.NoError(t, store.Initialize())
}

func TestStore_TreeRoundTrip(t *testing.T) {
	store := newTestStore(t)

	_, ok, err := store.LoadTree("default")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveTree("default", sampleTree()))

	got, ok, err := store.LoadTree("default")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sampleTree(), got)
}

func TestStore_LoadTree_AcceptsComments(t *testing.T) {
	store := newTestStore(t)
	path := domain.TreePath(store.Dir(), "default")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	doc := `{
  // hand edited
  "name": "app",
  "context": "",
  "children": [
    {"name": "A"},
    {"name": "B", "status": "in_progress",},
  ],
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	tree, ok, err := store.LoadTree("default")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, tree.Children, 2)
	assert.Equal(t, domain.StatusPending, tree.Children[0].Status)
	assert.Equal(t, domain.StatusInProgress, tree.Children[1].Status)
}

func TestStore_LoadTree_RejectsDuplicateSiblings(t *testing.T) {
	store := newTestStore(t)
	path := domain.TreePath(store.Dir(), "default")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	doc := `{"name": "app", "children": [{"name": "A"}, {"name": "A"}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	_, _, err := store.LoadTree("default")
	assert.ErrorIs(t, err, domain.ErrDuplicateSibling)
}

func TestStore_SaveTree_SkipsIdenticalContent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveTree("default", sampleTree()))

	path := domain.TreePath(store.Dir(), "default")
	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(path, old, old))

	require.NoError(t, store.SaveTree("default", sampleTree()))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old), "unchanged tree should not be rewritten")

	changed, _ := domain.SetStatus(sampleTree(), domain.Path{"app", "Auth", "Logout"}, domain.StatusDone)
	require.NoError(t, store.SaveTree("default", changed))
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.False(t, info.ModTime().Equal(old))
}

func TestStore_Workers(t *testing.T) {
	store := newTestStore(t)

	pool, err := store.LoadWorkers("default")
	require.NoError(t, err)
	assert.Empty(t, pool.Workers)
	assert.NotNil(t, pool.Workers)

	want := domain.WorkerPool{
		Workers: []domain.Worker{
			{ID: 1, Branch: "ralph/login", Task: "Login", Path: "app.Auth.Login", Status: domain.WorkerAssigned},
		},
		NextID: 3,
	}
	require.NoError(t, store.SaveWorkers("default", want))

	got, err := store.LoadWorkers("default")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_Projects(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	_, ok, err := store.GetProject("web")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoDirExists(t, domain.ProjectDir(store.Dir(), "web"))

	require.NoError(t, store.SaveProject(domain.NewProject("web", "Web", "/src/web", now)))
	require.NoError(t, store.SaveProject(domain.NewProject("api", "", "/src/api", now)))

	p, ok, err := store.GetProject("web")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Web", p.Name)
	assert.Equal(t, domain.DefaultTargetTokens, p.TargetTokens)
	assert.True(t, p.CreatedAt.Equal(now))

	projects, err := store.ListProjects()
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "api", projects[0].ID)
	assert.Equal(t, "api", projects[0].Name)
	assert.Equal(t, "web", projects[1].ID)
}

func TestStore_SaveProject_InvalidID(t *testing.T) {
	store := newTestStore(t)
	err := store.SaveProject(domain.NewProject("Bad ID", "", "", time.Now()))
	assert.Error(t, err)
}

func TestStore_ListProjects_NotInitialized(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), domain.DirName))
	_, err := store.ListProjects()
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestStore_RequirementsAndProgress(t *testing.T) {
	store := newTestStore(t)

	req, err := store.LoadRequirements("default")
	require.NoError(t, err)
	assert.Empty(t, req)

	require.NoError(t, store.SaveRequirements("default", domain.DefaultRequirements))
	req, err = store.LoadRequirements("default")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRequirements, req)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, store.AppendProgress("default", domain.ProgressEntry(now, "done", domain.Path{"app", "A"})))
	require.NoError(t, store.AppendProgress("default", domain.ProgressEntry(now, "done", domain.Path{"app", "B"})))

	content, err := os.ReadFile(domain.ProgressPath(store.Dir(), "default"))
	require.NoError(t, err)
	assert.Equal(t, "[2026-01-02 03:04:05] done: app.A\n[2026-01-02 03:04:05] done: app.B\n", string(content))
}

func TestDecodeNode(t *testing.T) {
	node, err := DecodeNode([]byte(`{"name": "New", "files": ["a.go"], /* note */}`))
	require.NoError(t, err)
	assert.Equal(t, "New", node.Name)
	assert.Equal(t, domain.StatusPending, node.Status)
	assert.Equal(t, []string{"a.go"}, node.Files)

	_, err = DecodeNode([]byte("  "))
	assert.Error(t, err)
}

func TestEncodeDecodeTree(t *testing.T) {
	content, err := EncodeTree(sampleTree())
	require.NoError(t, err)
	tree, err := DecodeTree(content)
	require.NoError(t, err)
	assert.Equal(t, sampleTree(), tree)
}
