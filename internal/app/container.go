// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/infra/ai"
	"github.com/Cook1eMonster/Ralph/internal/infra/config"
	"github.com/Cook1eMonster/Ralph/internal/infra/executor"
	"github.com/Cook1eMonster/Ralph/internal/infra/filesystem"
	"github.com/Cook1eMonster/Ralph/internal/infra/fingerprint"
	"github.com/Cook1eMonster/Ralph/internal/infra/git"
	"github.com/Cook1eMonster/Ralph/internal/infra/gitstore"
	"github.com/Cook1eMonster/Ralph/internal/infra/jsonstore"
	"github.com/Cook1eMonster/Ralph/internal/infra/logging"
	"github.com/Cook1eMonster/Ralph/internal/infra/runner"
	"github.com/Cook1eMonster/Ralph/internal/infra/search"
	"github.com/Cook1eMonster/Ralph/internal/infra/telemetry"
	"github.com/Cook1eMonster/Ralph/internal/infra/worktree"
	"github.com/Cook1eMonster/Ralph/internal/usecase"
)

// Config holds the application configuration paths.
type Config struct {
	RepoRoot string // Root directory of the git repository
	GitDir   string // Path to .git directory
	RalphDir string // Path to .ralph directory
}

// newConfig creates a new Config from the git client.
func newConfig(gitClient *git.Client) Config {
	repoRoot := gitClient.RepoRoot()
	return Config{
		RepoRoot: repoRoot,
		GitDir:   gitClient.GitDir(),
		RalphDir: filepath.Join(repoRoot, domain.DirName),
	}
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Trees            domain.TreeRepository
	Workers          domain.WorkerRepository
	Projects         domain.ProjectRepository
	Snapshots        domain.SnapshotStore // nil unless the git store is configured
	StoreInitializer domain.StoreInitializer
	Clock            domain.Clock
	Git              domain.Git
	Worktrees        domain.WorktreeManager
	ConfigLoader     domain.ConfigLoader
	ConfigManager    domain.ConfigManager
	AI               domain.AIProvider
	Runner           domain.CommandRunner
	Files            domain.FileSystem
	Searcher         domain.FileSearcher
	Hasher           domain.Hasher
	Tracer           domain.Tracer
	Logger           domain.Logger

	// Pointer fields
	Diagnostics *slog.Logger
	closers     []func(context.Context) error

	// Configuration
	AppConfig *domain.Config
	Config    Config
}

// New creates a new Container by detecting the git repository from the given directory.
func New(dir string) (*Container, error) {
	// Detect git repository
	gitClient, err := git.NewClient(dir)
	if err != nil {
		return nil, err
	}

	cfg := newConfig(gitClient)

	configLoader := config.NewLoader(cfg.RalphDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		// Commands still run on defaults; the root command reports the error
		appConfig = domain.NewDefaultConfig()
	}

	diagnostics := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(appConfig.Log.Level),
	}))

	// Projects, requirements and progress always live in .ralph; trees and
	// worker pools may move into git refs.
	jsonStore := jsonstore.New(cfg.RalphDir)
	c := &Container{
		Trees:            jsonStore,
		Workers:          jsonStore,
		Projects:         jsonStore,
		StoreInitializer: jsonStore,
		Clock:            domain.RealClock{},
		Git:              gitClient,
		Worktrees:        worktree.NewClient(cfg.RepoRoot),
		ConfigLoader:     configLoader,
		ConfigManager:    config.NewManager(cfg.RalphDir),
		Files:            filesystem.New(cfg.RepoRoot),
		Hasher:           fingerprint.New(),
		Diagnostics:      diagnostics,
		AppConfig:        appConfig,
		Config:           cfg,
	}

	if appConfig.Store.Type == domain.StoreGit {
		gitStore, err := gitstore.New(cfg.RepoRoot, appConfig.Store.Namespace)
		if err != nil {
			return nil, err
		}
		c.Trees = gitStore
		c.Workers = gitStore
		c.Snapshots = gitStore
	}

	exec := executor.NewClient()
	c.AI = ai.New(appConfig.AI, appConfig.AITimeout(), exec, cfg.RepoRoot)
	c.Runner = runner.NewClient(exec, appConfig.CommandTimeout())
	c.Searcher = search.New(cfg.RepoRoot, search.Options{
		Include: appConfig.Search.Include,
		Exclude: appConfig.Search.Exclude,
	})

	tracer, err := telemetry.New(context.Background())
	if err != nil {
		diagnostics.Warn("tracing disabled", "error", err)
		tracer = telemetry.Nop()
	}
	c.Tracer = tracer
	c.closers = append(c.closers, tracer.Shutdown)

	logger := logging.New(cfg.RalphDir, logging.ParseLevel(appConfig.Log.Level))
	c.Logger = logger
	c.closers = append(c.closers, func(context.Context) error { return logger.Close() })

	return c, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
// Ports it does not receive are left nil except the tracer and logger.
func NewWithDeps(cfg Config, trees domain.TreeRepository, workers domain.WorkerRepository, projects domain.ProjectRepository, configLoader domain.ConfigLoader, clock domain.Clock) *Container {
	return &Container{
		Trees:        trees,
		Workers:      workers,
		Projects:     projects,
		Clock:        clock,
		Tracer:       domain.NopTracer{},
		Logger:       domain.NopLogger{},
		Hasher:       fingerprint.New(),
		ConfigLoader: configLoader,
		Diagnostics:  slog.New(slog.NewTextHandler(os.Stderr, nil)),
		AppConfig:    domain.NewDefaultConfig(),
		Config:       cfg,
	}
}

// Close flushes the tracer and closes log files.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ProjectID resolves the project to operate on: the flag, then [project]
// default, then "default".
func (c *Container) ProjectID(flag string) string {
	if id := strings.TrimSpace(flag); id != "" {
		return id
	}
	if c.AppConfig != nil && c.AppConfig.Project.Default != "" {
		return c.AppConfig.Project.Default
	}
	return domain.DefaultProjectID
}

// UseCase factory methods

// InitProjectUseCase returns a new InitProject use case.
func (c *Container) InitProjectUseCase() *usecase.InitProject {
	return usecase.NewInitProject(c.StoreInitializer, c.Projects, c.Trees, c.ConfigManager, c.Clock)
}

// ListProjectsUseCase returns a new ListProjects use case.
func (c *Container) ListProjectsUseCase() *usecase.ListProjects {
	return usecase.NewListProjects(c.Projects, c.Trees)
}

// GetNextTaskUseCase returns a new GetNextTask use case.
func (c *Container) GetNextTaskUseCase() *usecase.GetNextTask {
	return usecase.NewGetNextTask(c.Trees, c.Projects, c.ConfigLoader, c.Searcher, c.Logger)
}

// StartTaskUseCase returns a new StartTask use case.
func (c *Container) StartTaskUseCase() *usecase.StartTask {
	return usecase.NewStartTask(c.Trees, c.Projects, c.ConfigLoader, c.Clock, c.Logger)
}

// CompleteTaskUseCase returns a new CompleteTask use case.
func (c *Container) CompleteTaskUseCase() *usecase.CompleteTask {
	return usecase.NewCompleteTask(c.Trees, c.Projects, c.ConfigLoader, c.Clock, c.Logger)
}

// BlockTaskUseCase returns a new BlockTask use case.
func (c *Container) BlockTaskUseCase() *usecase.BlockTask {
	return usecase.NewBlockTask(c.Trees, c.Projects, c.Clock, c.Logger)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.Trees, c.Projects, c.ConfigLoader)
}

// AddTaskUseCase returns a new AddTask use case.
func (c *Container) AddTaskUseCase() *usecase.AddTask {
	return usecase.NewAddTask(c.Trees, c.Logger)
}

// PruneTaskUseCase returns a new PruneTask use case.
func (c *Container) PruneTaskUseCase() *usecase.PruneTask {
	return usecase.NewPruneTask(c.Trees, c.Logger)
}

// ShowStatusUseCase returns a new ShowStatus use case.
func (c *Container) ShowStatusUseCase() *usecase.ShowStatus {
	return usecase.NewShowStatus(c.Trees, c.Workers, c.ConfigLoader)
}

// ExportTreeUseCase returns a new ExportTree use case.
func (c *Container) ExportTreeUseCase() *usecase.ExportTree {
	return usecase.NewExportTree(c.Trees)
}

// EstimateTasksUseCase returns a new EstimateTasks use case.
func (c *Container) EstimateTasksUseCase() *usecase.EstimateTasks {
	return usecase.NewEstimateTasks(c.Trees, c.Projects, c.ConfigLoader)
}

// AssignWorkersUseCase returns a new AssignWorkers use case.
func (c *Container) AssignWorkersUseCase() *usecase.AssignWorkers {
	return usecase.NewAssignWorkers(c.Trees, c.Workers, c.Projects, c.ConfigLoader, c.Worktrees, c.Logger, c.Config.RalphDir)
}

// AssignWorkerUseCase returns a new AssignWorker use case.
func (c *Container) AssignWorkerUseCase() *usecase.AssignWorker {
	return usecase.NewAssignWorker(c.Trees, c.Workers, c.Projects, c.ConfigLoader, c.Worktrees, c.Logger, c.Config.RalphDir)
}

// CompleteWorkerUseCase returns a new CompleteWorker use case.
func (c *Container) CompleteWorkerUseCase() *usecase.CompleteWorker {
	return usecase.NewCompleteWorker(c.Trees, c.Workers, c.Projects, c.ConfigLoader, c.Worktrees, c.Clock, c.Logger, c.Config.RalphDir)
}

// CompleteAllWorkersUseCase returns a new CompleteAllWorkers use case.
func (c *Container) CompleteAllWorkersUseCase() *usecase.CompleteAllWorkers {
	return usecase.NewCompleteAllWorkers(c.Trees, c.Workers, c.Projects, c.Worktrees, c.Clock, c.Logger, c.Config.RalphDir)
}

// ListWorkersUseCase returns a new ListWorkers use case.
func (c *Container) ListWorkersUseCase() *usecase.ListWorkers {
	return usecase.NewListWorkers(c.Workers, c.Worktrees, c.Config.RalphDir)
}

// MergeWorkersUseCase returns a new MergeWorkers use case.
func (c *Container) MergeWorkersUseCase() *usecase.MergeWorkers {
	return usecase.NewMergeWorkers(c.Workers, c.ConfigLoader, c.Git, c.Logger, c.Config.RepoRoot)
}

// ValidateTaskUseCase returns a new ValidateTask use case.
func (c *Container) ValidateTaskUseCase() *usecase.ValidateTask {
	return usecase.NewValidateTask(c.Trees, c.Projects, c.ConfigLoader, c.Runner, c.Tracer, c.Logger, c.Config.RepoRoot)
}

// HealTaskUseCase returns a new HealTask use case.
func (c *Container) HealTaskUseCase() *usecase.HealTask {
	return usecase.NewHealTask(c.Trees, c.Projects, c.ConfigLoader, c.Runner, c.AI, c.Files, c.Hasher, c.Tracer, c.Logger, c.Config.RepoRoot)
}

// PlanTreeUseCase returns a new PlanTree use case.
func (c *Container) PlanTreeUseCase() *usecase.PlanTree {
	return usecase.NewPlanTree(c.Trees, c.Projects, c.ConfigLoader, c.AI, c.Tracer, c.Logger)
}

// GenerateCodeUseCase returns a new GenerateCode use case.
func (c *Container) GenerateCodeUseCase() *usecase.GenerateCode {
	return usecase.NewGenerateCode(c.Trees, c.Projects, c.ConfigLoader, c.AI, c.Files, c.Tracer, c.Logger, c.Config.RepoRoot)
}

// EnrichTasksUseCase returns a new EnrichTasks use case.
func (c *Container) EnrichTasksUseCase() *usecase.EnrichTasks {
	return usecase.NewEnrichTasks(c.Trees, c.Projects, c.ConfigLoader, c.Searcher, c.Logger)
}

// GovernTreeUseCase returns a new GovernTree use case.
func (c *Container) GovernTreeUseCase() *usecase.GovernTree {
	return usecase.NewGovernTree(c.Trees, c.Projects, c.ConfigLoader, c.Config.RalphDir)
}

// SyncTreeUseCase returns a new SyncTree use case.
func (c *Container) SyncTreeUseCase() *usecase.SyncTree {
	return usecase.NewSyncTree(c.Trees, c.Snapshots, c.Clock, c.Logger)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}

// ShowLogsUseCase returns a new ShowLogs use case.
func (c *Container) ShowLogsUseCase() *usecase.ShowLogs {
	return usecase.NewShowLogs(c.Config.RalphDir)
}
