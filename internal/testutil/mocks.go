// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockTreeRepository is an in-memory domain.TreeRepository.
// Fields are ordered to minimize memory padding.
type MockTreeRepository struct {
	Trees     map[string]domain.Tree
	LoadErr   error
	SaveErr   error
	SaveCount int
}

// NewMockTreeRepository creates a new MockTreeRepository.
func NewMockTreeRepository() *MockTreeRepository {
	return &MockTreeRepository{Trees: make(map[string]domain.Tree)}
}

// Ensure MockTreeRepository implements domain.TreeRepository interface.
var _ domain.TreeRepository = (*MockTreeRepository)(nil)

// LoadTree returns the stored tree.
func (m *MockTreeRepository) LoadTree(projectID string) (domain.Tree, bool, error) {
	if m.LoadErr != nil {
		return domain.Tree{}, false, m.LoadErr
	}
	t, ok := m.Trees[projectID]
	return t, ok, nil
}

// SaveTree stores the tree.
func (m *MockTreeRepository) SaveTree(projectID string, tree domain.Tree) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.SaveCount++
	m.Trees[projectID] = tree
	return nil
}

// MockWorkerRepository is an in-memory domain.WorkerRepository.
type MockWorkerRepository struct {
	Pools   map[string]domain.WorkerPool
	LoadErr error
	SaveErr error
}

// NewMockWorkerRepository creates a new MockWorkerRepository.
func NewMockWorkerRepository() *MockWorkerRepository {
	return &MockWorkerRepository{Pools: make(map[string]domain.WorkerPool)}
}

// Ensure MockWorkerRepository implements domain.WorkerRepository interface.
var _ domain.WorkerRepository = (*MockWorkerRepository)(nil)

// LoadWorkers returns the stored pool, empty if none.
func (m *MockWorkerRepository) LoadWorkers(projectID string) (domain.WorkerPool, error) {
	if m.LoadErr != nil {
		return domain.WorkerPool{}, m.LoadErr
	}
	return m.Pools[projectID], nil
}

// SaveWorkers stores the pool.
func (m *MockWorkerRepository) SaveWorkers(projectID string, pool domain.WorkerPool) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Pools[projectID] = pool
	return nil
}

// MockProjectRepository is an in-memory domain.ProjectRepository.
// Fields are ordered to minimize memory padding.
type MockProjectRepository struct {
	Projects     map[string]domain.Project
	Requirements map[string]string
	Progress     map[string][]string
	GetErr       error
	ListErr      error
	SaveErr      error
}

// NewMockProjectRepository creates a new MockProjectRepository.
func NewMockProjectRepository() *MockProjectRepository {
	return &MockProjectRepository{
		Projects:     make(map[string]domain.Project),
		Requirements: make(map[string]string),
		Progress:     make(map[string][]string),
	}
}

// Ensure MockProjectRepository implements domain.ProjectRepository interface.
var _ domain.ProjectRepository = (*MockProjectRepository)(nil)

// GetProject returns the stored project.
func (m *MockProjectRepository) GetProject(id string) (domain.Project, bool, error) {
	if m.GetErr != nil {
		return domain.Project{}, false, m.GetErr
	}
	p, ok := m.Projects[id]
	return p, ok, nil
}

// ListProjects returns the stored projects sorted by id.
func (m *MockProjectRepository) ListProjects() ([]domain.Project, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]domain.Project, 0, len(m.Projects))
	for _, p := range m.Projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveProject stores the project.
func (m *MockProjectRepository) SaveProject(p domain.Project) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Projects[p.ID] = p
	return nil
}

// LoadRequirements returns the stored requirements.
func (m *MockProjectRepository) LoadRequirements(projectID string) (string, error) {
	return m.Requirements[projectID], nil
}

// SaveRequirements stores the requirements.
func (m *MockProjectRepository) SaveRequirements(projectID, content string) error {
	m.Requirements[projectID] = content
	return nil
}

// AppendProgress records the entry.
func (m *MockProjectRepository) AppendProgress(projectID, entry string) error {
	m.Progress[projectID] = append(m.Progress[projectID], entry)
	return nil
}

// MockStoreInitializer is a test double for domain.StoreInitializer.
type MockStoreInitializer struct {
	InitErr     error
	Initialized bool
}

// Initialize records the call.
func (m *MockStoreInitializer) Initialize() error {
	if m.InitErr != nil {
		return m.InitErr
	}
	m.Initialized = true
	return nil
}

// MockSnapshotStore is an in-memory domain.SnapshotStore.
type MockSnapshotStore struct {
	Snapshots []domain.Snapshot
	Err       error
}

// Ensure MockSnapshotStore implements domain.SnapshotStore interface.
var _ domain.SnapshotStore = (*MockSnapshotStore)(nil)

// Snapshot appends a snapshot with the next sequence number.
func (m *MockSnapshotStore) Snapshot(projectID string, tree domain.Tree, now time.Time) (domain.Snapshot, error) {
	if m.Err != nil {
		return domain.Snapshot{}, m.Err
	}
	seq := len(m.Snapshots) + 1
	s := domain.Snapshot{
		Seq:       seq,
		Ref:       fmt.Sprintf("refs/ralph/%s/snapshots/%d", projectID, seq),
		Digest:    fmt.Sprintf("digest-%d", seq),
		CreatedAt: now,
		Stats:     domain.Stats(tree),
	}
	m.Snapshots = append(m.Snapshots, s)
	return s, nil
}

// ListSnapshots returns the recorded snapshots.
func (m *MockSnapshotStore) ListSnapshots(_ string) ([]domain.Snapshot, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Snapshots, nil
}

// MockGit is a test double for domain.Git.
// Fields are ordered to minimize memory padding.
type MockGit struct {
	CurrentBranchErr       error
	HasUncommittedErr      error
	MergeErr               error
	MergeErrs              map[string]error // Per-branch merge errors
	DeleteBranchErr        error
	CurrentBranchName      string
	MergedBranches         []string
	DeletedBranches        []string
	MissingBranches        []string
	HasUncommittedChangesV bool
	MergeNoFF              bool
}

// Ensure MockGit implements domain.Git interface.
var _ domain.Git = (*MockGit)(nil)

// CurrentBranch returns the configured branch name or error.
func (m *MockGit) CurrentBranch() (string, error) {
	if m.CurrentBranchErr != nil {
		return "", m.CurrentBranchErr
	}
	return m.CurrentBranchName, nil
}

// BranchExists reports false only for MissingBranches.
func (m *MockGit) BranchExists(branch string) (bool, error) {
	return !slices.Contains(m.MissingBranches, branch), nil
}

// HasUncommittedChanges returns the configured value or error.
func (m *MockGit) HasUncommittedChanges(_ string) (bool, error) {
	if m.HasUncommittedErr != nil {
		return false, m.HasUncommittedErr
	}
	return m.HasUncommittedChangesV, nil
}

// Merge records the merged branch.
func (m *MockGit) Merge(branch string, noFF bool) error {
	if err := m.MergeErrs[branch]; err != nil {
		return err
	}
	if m.MergeErr != nil {
		return m.MergeErr
	}
	m.MergedBranches = append(m.MergedBranches, branch)
	m.MergeNoFF = noFF
	return nil
}

// DeleteBranch records the deleted branch.
func (m *MockGit) DeleteBranch(branch string, _ bool) error {
	if m.DeleteBranchErr != nil {
		return m.DeleteBranchErr
	}
	m.DeletedBranches = append(m.DeletedBranches, branch)
	return nil
}

// MockWorktreeManager is a test double for domain.WorktreeManager.
// Fields are ordered to minimize memory padding.
type MockWorktreeManager struct {
	Worktrees map[string]string // path -> branch
	CreateErr error
	RemoveErr error
	Removed   []string
}

// NewMockWorktreeManager creates a new MockWorktreeManager.
func NewMockWorktreeManager() *MockWorktreeManager {
	return &MockWorktreeManager{Worktrees: make(map[string]string)}
}

// Ensure MockWorktreeManager implements domain.WorktreeManager interface.
var _ domain.WorktreeManager = (*MockWorktreeManager)(nil)

// Create registers the worktree.
func (m *MockWorktreeManager) Create(path, branch, _ string) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Worktrees[path] = branch
	return nil
}

// Remove unregisters the worktree.
func (m *MockWorktreeManager) Remove(path string, _ bool) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	if _, ok := m.Worktrees[path]; !ok {
		return domain.ErrWorktreeNotFound
	}
	delete(m.Worktrees, path)
	m.Removed = append(m.Removed, path)
	return nil
}

// Exists reports whether the worktree is registered.
func (m *MockWorktreeManager) Exists(path string) (bool, error) {
	_, ok := m.Worktrees[path]
	return ok, nil
}

// List returns the registered worktrees sorted by path.
func (m *MockWorktreeManager) List() ([]domain.WorktreeInfo, error) {
	var out []domain.WorktreeInfo
	for path, branch := range m.Worktrees {
		out = append(out, domain.WorktreeInfo{Path: path, Branch: branch})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config       *domain.Config
	GlobalConfig *domain.Config
	LoadErr      error
	GlobalErr    error
}

// NewMockConfigLoader creates a new MockConfigLoader with default config.
func NewMockConfigLoader() *MockConfigLoader {
	return &MockConfigLoader{
		Config: domain.NewDefaultConfig(),
	}
}

// Ensure MockConfigLoader implements domain.ConfigLoader interface.
var _ domain.ConfigLoader = (*MockConfigLoader)(nil)

// Load returns the configured config or error.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Config, nil
}

// LoadGlobal returns the configured config or error.
func (m *MockConfigLoader) LoadGlobal() (*domain.Config, error) {
	if m.GlobalErr != nil {
		return nil, m.GlobalErr
	}
	if m.GlobalConfig != nil {
		return m.GlobalConfig, nil
	}
	return m.Config, nil
}

// MockConfigManager is a test double for domain.ConfigManager.
// Fields are ordered to minimize memory padding.
type MockConfigManager struct {
	InitRepoErr      error
	InitGlobalErr    error
	RepoConfigInfo   domain.ConfigInfo
	GlobalConfigInfo domain.ConfigInfo
	InitRepoCalled   bool
	InitGlobalCalled bool
}

// NewMockConfigManager creates a new MockConfigManager.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		RepoConfigInfo: domain.ConfigInfo{
			Path: "/test/.ralph/config.toml",
		},
		GlobalConfigInfo: domain.ConfigInfo{
			Path: "/home/test/.config/ralph/config.toml",
		},
	}
}

// Ensure MockConfigManager implements domain.ConfigManager interface.
var _ domain.ConfigManager = (*MockConfigManager)(nil)

// GetRepoConfigInfo returns the configured repo config info.
func (m *MockConfigManager) GetRepoConfigInfo() domain.ConfigInfo {
	return m.RepoConfigInfo
}

// GetGlobalConfigInfo returns the configured global config info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.GlobalConfigInfo
}

// InitRepoConfig records the call and returns configured error.
func (m *MockConfigManager) InitRepoConfig(_ *domain.Config) error {
	m.InitRepoCalled = true
	return m.InitRepoErr
}

// InitGlobalConfig records the call and returns configured error.
func (m *MockConfigManager) InitGlobalConfig(_ *domain.Config) error {
	m.InitGlobalCalled = true
	return m.InitGlobalErr
}

// MockCommandRunner is a scripted domain.CommandRunner.
// Each command maps to a queue of results; the last result repeats once the
// queue is exhausted. Unknown commands succeed.
type MockCommandRunner struct {
	Results map[string][]domain.CommandResult
	Err     error
	Calls   []string
	Dirs    []string
	mu      sync.Mutex
}

// NewMockCommandRunner creates a new MockCommandRunner.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{Results: make(map[string][]domain.CommandResult)}
}

// Ensure MockCommandRunner implements domain.CommandRunner interface.
var _ domain.CommandRunner = (*MockCommandRunner)(nil)

// Run pops the next scripted result for command.
func (m *MockCommandRunner) Run(_ context.Context, dir, command string) (domain.CommandResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, command)
	m.Dirs = append(m.Dirs, dir)
	if m.Err != nil {
		return domain.CommandResult{}, m.Err
	}
	queue := m.Results[command]
	if len(queue) == 0 {
		return domain.CommandResult{}, nil
	}
	r := queue[0]
	if len(queue) > 1 {
		m.Results[command] = queue[1:]
	}
	return r, nil
}

// Fail is a failing command result.
func Fail(exitCode int, stderr string) domain.CommandResult {
	return domain.CommandResult{ExitCode: exitCode, Stderr: stderr}
}

// Pass is a successful command result.
func Pass(stdout string) domain.CommandResult {
	return domain.CommandResult{Stdout: stdout}
}

// MockAIProvider is a test double for domain.AIProvider.
// Fields are ordered to minimize memory padding.
type MockAIProvider struct {
	FixErr       error
	PlanErr      error
	CodeErr      error
	OnFix        func(req domain.FixRequest) // Called before a fix is returned
	Plan         domain.Tree
	FixRequests  []domain.FixRequest
	CodeRequests []domain.CodeRequest
	Fixes        []string // Returned in order; the last one repeats
	Code         string
	Unavailable  bool
}

// Ensure MockAIProvider implements domain.AIProvider interface.
var _ domain.AIProvider = (*MockAIProvider)(nil)

// Name returns "mock".
func (m *MockAIProvider) Name() string { return "mock" }

// Probe reports !Unavailable.
func (m *MockAIProvider) Probe(context.Context) bool { return !m.Unavailable }

// GenerateFix returns the next scripted fix.
func (m *MockAIProvider) GenerateFix(_ context.Context, req domain.FixRequest) (string, error) {
	m.FixRequests = append(m.FixRequests, req)
	if m.FixErr != nil {
		return "", m.FixErr
	}
	if m.OnFix != nil {
		m.OnFix(req)
	}
	if len(m.Fixes) == 0 {
		return "", nil
	}
	fix := m.Fixes[0]
	if len(m.Fixes) > 1 {
		m.Fixes = m.Fixes[1:]
	}
	return fix, nil
}

// GeneratePlan returns the configured plan.
func (m *MockAIProvider) GeneratePlan(_ context.Context, _ domain.PlanRequest) (domain.Tree, error) {
	if m.PlanErr != nil {
		return domain.Tree{}, m.PlanErr
	}
	return m.Plan, nil
}

// GenerateCode returns the configured code.
func (m *MockAIProvider) GenerateCode(_ context.Context, req domain.CodeRequest) (string, error) {
	m.CodeRequests = append(m.CodeRequests, req)
	if m.CodeErr != nil {
		return "", m.CodeErr
	}
	return m.Code, nil
}

// MockFileSystem is an in-memory domain.FileSystem.
type MockFileSystem struct {
	Files    map[string]string
	WriteErr error
	Writes   []string
}

// NewMockFileSystem creates a MockFileSystem holding files.
func NewMockFileSystem(files map[string]string) *MockFileSystem {
	if files == nil {
		files = make(map[string]string)
	}
	return &MockFileSystem{Files: files}
}

// Ensure MockFileSystem implements domain.FileSystem interface.
var _ domain.FileSystem = (*MockFileSystem)(nil)

// ReadFile returns the stored content.
func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	content, ok := m.Files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}
	return []byte(content), nil
}

// WriteFile stores the content.
func (m *MockFileSystem) WriteFile(path string, data []byte) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Files[path] = string(data)
	m.Writes = append(m.Writes, path)
	return nil
}

// MockFileSearcher is a test double for domain.FileSearcher.
type MockFileSearcher struct {
	Err     error
	Results []string
	Queries []string
}

// Ensure MockFileSearcher implements domain.FileSearcher interface.
var _ domain.FileSearcher = (*MockFileSearcher)(nil)

// SuggestRelevantFiles returns up to topK configured results.
func (m *MockFileSearcher) SuggestRelevantFiles(_ context.Context, taskName, _ string, topK int) ([]string, error) {
	m.Queries = append(m.Queries, taskName)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Results[:min(topK, len(m.Results))], nil
}

// MockCommandExecutor is a test double for domain.CommandExecutor.
type MockCommandExecutor struct {
	ExecuteErr      error
	ExecutedCmd     *domain.ExecCommand
	ExecuteOutput   []byte
	ExecuteCalled   bool
	ExecuteWithCtxC bool
}

// NewMockCommandExecutor creates a new MockCommandExecutor.
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{}
}

// Ensure MockCommandExecutor implements domain.CommandExecutor interface.
var _ domain.CommandExecutor = (*MockCommandExecutor)(nil)

// Execute records the command and returns configured output.
func (m *MockCommandExecutor) Execute(cmd *domain.ExecCommand) ([]byte, error) {
	m.ExecuteCalled = true
	m.ExecutedCmd = cmd
	return m.ExecuteOutput, m.ExecuteErr
}

// ExecuteWithContext records the command and writes the configured output to stdout.
func (m *MockCommandExecutor) ExecuteWithContext(_ context.Context, cmd *domain.ExecCommand, stdout, _ io.Writer) error {
	m.ExecuteWithCtxC = true
	m.ExecutedCmd = cmd
	if stdout != nil {
		_, _ = stdout.Write(m.ExecuteOutput)
	}
	return m.ExecuteErr
}

// LogEntry is one line captured by MockLogger.
type LogEntry struct {
	Level    string
	Category string
	Msg      string
	Lane     int
}

// MockLogger records log entries.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

// Ensure MockLogger implements domain.Logger interface.
var _ domain.Logger = (*MockLogger)(nil)

func (m *MockLogger) log(level string, lane int, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, Lane: lane, Category: category, Msg: msg})
}

// Info records an info entry.
func (m *MockLogger) Info(lane int, category, msg string) { m.log("INFO", lane, category, msg) }

// Debug records a debug entry.
func (m *MockLogger) Debug(lane int, category, msg string) { m.log("DEBUG", lane, category, msg) }

// Warn records a warn entry.
func (m *MockLogger) Warn(lane int, category, msg string) { m.log("WARN", lane, category, msg) }

// Error records an error entry.
func (m *MockLogger) Error(lane int, category, msg string) { m.log("ERROR", lane, category, msg) }

// Contains reports whether any entry's message contains substr.
func (m *MockLogger) Contains(substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if strings.Contains(e.Msg, substr) {
			return true
		}
	}
	return false
}

// MockTracer records the names of started spans.
type MockTracer struct {
	Spans  []string
	Errors []error
	mu     sync.Mutex
}

// Ensure MockTracer implements domain.Tracer interface.
var _ domain.Tracer = (*MockTracer)(nil)

// Start records the span name.
func (m *MockTracer) Start(ctx context.Context, name string) (context.Context, domain.Span) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Spans = append(m.Spans, name)
	return ctx, &mockSpan{tracer: m}
}

type mockSpan struct {
	tracer *MockTracer
}

func (s *mockSpan) SetAttributes(...any) {}

func (s *mockSpan) RecordError(err error) {
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	s.tracer.Errors = append(s.tracer.Errors, err)
}

func (s *mockSpan) End() {}

// MockHasher digests content as itself, which keeps test failures readable.
type MockHasher struct{}

// Ensure MockHasher implements domain.Hasher interface.
var _ domain.Hasher = MockHasher{}

// Digest returns data as a string.
func (MockHasher) Digest(data []byte) string {
	return string(data)
}
