package usecase

import (
	"context"
	"fmt"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// ValidateTaskInput contains the parameters for validating a task.
type ValidateTaskInput struct {
	ProjectID string
	Path      string // Task path (optional, defaults to the next pending task)
}

// ValidateTaskOutput contains the result of every acceptance command.
type ValidateTaskOutput struct {
	Task    domain.TaskWithPath
	Dir     string // Directory the commands ran in
	Results []domain.ValidationResult
	Passed  bool
}

// ValidateTask is the use case behind `ralph validate`. Unlike the healing
// loop it runs every command so the whole picture is reported at once.
type ValidateTask struct {
	trees    domain.TreeRepository
	projects domain.ProjectRepository
	config   domain.ConfigLoader
	checker  checker
	repoRoot string
}

// NewValidateTask creates a new ValidateTask use case.
func NewValidateTask(
	trees domain.TreeRepository,
	projects domain.ProjectRepository,
	config domain.ConfigLoader,
	runner domain.CommandRunner,
	tracer domain.Tracer,
	logger domain.Logger,
	repoRoot string,
) *ValidateTask {
	return &ValidateTask{
		trees:    trees,
		projects: projects,
		config:   config,
		checker:  checker{runner: runner, tracer: tracer, logger: logger},
		repoRoot: repoRoot,
	}
}

// Execute runs the task's acceptance commands.
func (uc *ValidateTask) Execute(ctx context.Context, in ValidateTaskInput) (*ValidateTaskOutput, error) {
	cfg, err := shared.LoadConfig(uc.config)
	if err != nil {
		return nil, err
	}
	tree, err := shared.LoadTree(uc.trees, in.ProjectID)
	if err != nil {
		return nil, err
	}
	task, err := shared.TargetOrNext(tree, in.Path, cfg.ScheduleOptions())
	if err != nil {
		return nil, err
	}
	if len(task.Task.Acceptance) == 0 {
		return nil, fmt.Errorf("%s: %w", task.Path, domain.ErrNoAcceptance)
	}
	info, err := shared.LoadProjectInfo(uc.projects, in.ProjectID, cfg)
	if err != nil {
		return nil, err
	}

	dir := projectDir(info.Project, uc.repoRoot)
	ctx, span := uc.checker.tracer.Start(ctx, "validate")
	defer span.End()
	span.SetAttributes("task", task.Path.String())

	results := uc.checker.run(ctx, dir, task.Task.Acceptance, false)
	passed := domain.AllPassed(results)
	span.SetAttributes("passed", passed)
	return &ValidateTaskOutput{Task: task, Dir: dir, Results: results, Passed: passed}, nil
}

// projectDir is where acceptance commands run: the project's path, else the
// repository root.
func projectDir(p domain.Project, repoRoot string) string {
	if p.Path != "" {
		return p.Path
	}
	return repoRoot
}
