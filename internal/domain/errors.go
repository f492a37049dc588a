package domain

import "errors"

// Domain errors.
var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrPathNotFound        = errors.New("path does not resolve")
	ErrEmptyPath           = errors.New("path is empty")
	ErrRootPath            = errors.New("operation not allowed on the tree root")
	ErrNotLeaf             = errors.New("task is not a leaf")
	ErrAlreadyDone         = errors.New("task already done")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrInvalidName         = errors.New("invalid task name")
	ErrDuplicateSibling    = errors.New("duplicate sibling name")
	ErrNoPendingTasks      = errors.New("no pending tasks")
	ErrWorkerNotFound      = errors.New("worker not found")
	ErrWorkerExists        = errors.New("worker id already active")
	ErrInvalidWorkerID     = errors.New("worker id must be positive")
	ErrWorkerIDUsed        = errors.New("worker id already used")
	ErrNoAcceptance        = errors.New("no acceptance criteria for this task")
	ErrNoFiles             = errors.New("no files specified for this task")
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrMalformedResponse   = errors.New("malformed ai response")
	ErrTreeNotEmpty        = errors.New("tree already has tasks (use --force to replace)")
	ErrProjectNotFound     = errors.New("project not found")
	ErrAlreadyInitialized  = errors.New("ralph already initialized")
	ErrNotInitialized      = errors.New("ralph not initialized (run 'ralph init' first)")
	ErrNotGitRepository    = errors.New("not a git repository (or any of the parent directories)")
	ErrWorktreeNotFound    = errors.New("worktree not found")
	ErrUncommittedChanges  = errors.New("uncommitted changes exist")
	ErrConfigExists        = errors.New("config file already exists")
	ErrNoSnapshots         = errors.New("snapshots require the git store")
	ErrWorkersActive       = errors.New("workers still active (finish them or use --force)")
	ErrNotOnBaseBranch     = errors.New("not on the base branch")
	ErrNoWorkers           = errors.New("no workers assigned")
)
