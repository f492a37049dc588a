package domain

import (
	"context"
	"io"
	"time"
)

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	Initialize() error
}

// TreeRepository persists one task tree per project.
type TreeRepository interface {
	// LoadTree returns the project's tree. ok is false if none was saved.
	LoadTree(projectID string) (tree Tree, ok bool, err error)

	// SaveTree replaces the project's tree.
	SaveTree(projectID string, tree Tree) error
}

// WorkerRepository persists one worker pool per project.
type WorkerRepository interface {
	// LoadWorkers returns the project's pool, empty if none was saved.
	LoadWorkers(projectID string) (WorkerPool, error)

	// SaveWorkers replaces the project's pool.
	SaveWorkers(projectID string, pool WorkerPool) error
}

// ProjectRepository manages project metadata and the per-project text files.
type ProjectRepository interface {
	// GetProject returns a project. ok is false if it does not exist.
	GetProject(id string) (project Project, ok bool, err error)

	// ListProjects returns all projects sorted by id.
	ListProjects() ([]Project, error)

	// SaveProject creates or updates a project.
	SaveProject(project Project) error

	// LoadRequirements returns requirements.md, empty if missing.
	LoadRequirements(projectID string) (string, error)

	// SaveRequirements writes requirements.md.
	SaveRequirements(projectID, content string) error

	// AppendProgress appends a line to the progress log.
	AppendProgress(projectID, entry string) error
}

// Snapshot is a recorded version of a tree.
// Fields are ordered to minimize memory padding.
type Snapshot struct {
	CreatedAt time.Time
	Digest    string
	Ref       string
	Seq       int
	Stats     TreeStats
}

// SnapshotStore records tree history. Only the git store supports it.
type SnapshotStore interface {
	// Snapshot records the tree and returns the new snapshot.
	Snapshot(projectID string, tree Tree, now time.Time) (Snapshot, error)

	// ListSnapshots returns snapshots oldest first.
	ListSnapshots(projectID string) ([]Snapshot, error)
}

// AIProvider is the external planning, coding and repair capability.
// Every call may be slow or fail; callers convert failures into results.
type AIProvider interface {
	// Name identifies the provider in logs and output.
	Name() string

	// Probe reports whether the provider can currently be used.
	Probe(ctx context.Context) bool

	// GenerateFix returns the complete replacement content for the file.
	GenerateFix(ctx context.Context, req FixRequest) (string, error)

	// GeneratePlan returns a task tree for the requirements.
	GeneratePlan(ctx context.Context, req PlanRequest) (Tree, error)

	// GenerateCode returns the complete content of the task's target file.
	GenerateCode(ctx context.Context, req CodeRequest) (string, error)
}

// FileSearcher suggests repository files relevant to a task.
type FileSearcher interface {
	// SuggestRelevantFiles returns up to topK repository-relative paths, best first.
	SuggestRelevantFiles(ctx context.Context, taskName, taskContext string, topK int) ([]string, error)
}

// CommandRunner runs shell commands for acceptance checks.
type CommandRunner interface {
	// Run executes command in dir. Non-zero exits and timeouts are reported in
	// the result; err is set only when the command could not be run at all.
	Run(ctx context.Context, dir, command string) (CommandResult, error)
}

// CommandExecutor runs external programs.
type CommandExecutor interface {
	// Execute runs the command and returns its combined output.
	Execute(cmd *ExecCommand) ([]byte, error)

	// ExecuteWithContext runs a command with context and custom stdout/stderr writers.
	ExecuteWithContext(ctx context.Context, cmd *ExecCommand, stdout, stderr io.Writer) error
}

// FileSystem reads and atomically replaces files under a root directory.
type FileSystem interface {
	// ReadFile returns the content of path.
	ReadFile(path string) ([]byte, error)

	// WriteFile atomically replaces the content of path.
	WriteFile(path string, data []byte) error
}

// WorktreeManager manages git worktrees.
type WorktreeManager interface {
	// Create creates a worktree at path on a new or existing branch.
	Create(path, branch, baseBranch string) error

	// Remove deletes a worktree.
	Remove(path string, force bool) error

	// Exists checks if a worktree is registered at path.
	Exists(path string) (bool, error)

	// List returns all worktrees.
	List() ([]WorktreeInfo, error)
}

// WorktreeInfo contains information about a worktree.
type WorktreeInfo struct {
	Path   string // Absolute path to worktree
	Branch string // Branch name
}

// Git provides git operations.
type Git interface {
	// CurrentBranch returns the name of the current branch.
	CurrentBranch() (string, error)

	// BranchExists checks if a branch exists.
	BranchExists(branch string) (bool, error)

	// HasUncommittedChanges checks for uncommitted changes in a directory.
	HasUncommittedChanges(dir string) (bool, error)

	// Merge merges a branch into the current branch.
	Merge(branch string, noFF bool) error

	// DeleteBranch deletes a branch.
	DeleteBranch(branch string, force bool) error
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (repo + global).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration.
	LoadGlobal() (*Config, error)
}

// ConfigManager inspects and creates configuration files.
type ConfigManager interface {
	// GetRepoConfigInfo returns information about the repository config file.
	GetRepoConfigInfo() ConfigInfo

	// GetGlobalConfigInfo returns information about the global config file.
	GetGlobalConfigInfo() ConfigInfo

	// InitRepoConfig writes a commented template. Fails with ErrConfigExists.
	InitRepoConfig(cfg *Config) error

	// InitGlobalConfig writes a commented template. Fails with ErrConfigExists.
	InitGlobalConfig(cfg *Config) error
}

// ConfigInfo describes one config file.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// Logger writes lifecycle events. Lane 0 is the global lane; positive lanes
// are worker ids and are also written to the lane's own file.
type Logger interface {
	Info(lane int, category, msg string)
	Debug(lane int, category, msg string)
	Warn(lane int, category, msg string)
	Error(lane int, category, msg string)
}

// Span is one traced unit of work.
type Span interface {
	// SetAttributes attaches key/value pairs to the span.
	SetAttributes(kv ...any)

	// RecordError marks the span failed.
	RecordError(err error)

	// End finishes the span.
	End()
}

// Tracer starts spans around heal runs, validations and AI calls.
type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, Span)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// NopLogger discards every entry.
type NopLogger struct{}

func (NopLogger) Info(int, string, string)  {}
func (NopLogger) Debug(int, string, string) {}
func (NopLogger) Warn(int, string, string)  {}
func (NopLogger) Error(int, string, string) {}

// Hasher fingerprints content.
type Hasher interface {
	// Digest returns a stable hex digest of data.
	Digest(data []byte) string
}

// NopTracer starts spans that record nothing.
type NopTracer struct{}

// Start returns ctx unchanged and a span that does nothing.
func (NopTracer) Start(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, nopSpan{}
}

type nopSpan struct{}

func (nopSpan) SetAttributes(...any) {}
func (nopSpan) RecordError(error)    {}
func (nopSpan) End()                 {}
