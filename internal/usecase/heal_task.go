package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// HealEvent reports the outcome of one healing attempt.
// Fields are ordered to minimize memory padding.
type HealEvent struct {
	Validations []domain.ValidationResult
	Attempt     int
	MaxAttempts int
	Passed      bool
	Fixed       bool // A fix was written before the next attempt
	Unchanged   bool // The fix was identical to the current content
}

// HealTaskInput contains the parameters for healing a task.
type HealTaskInput struct {
	OnAttempt   func(HealEvent) // Optional progress callback
	ProjectID   string
	Path        string // Task path (optional, defaults to the next pending task)
	MaxAttempts int    // 0 = config default
}

// HealTaskOutput contains the healing result.
type HealTaskOutput struct {
	Task   domain.TaskWithPath
	Result domain.HealingResult
}

// HealTask is the use case behind `ralph heal`: a bounded validate/repair
// loop on the first file of a task.
//
// Each attempt runs the acceptance commands, stopping at the first failure.
// When they pass the run succeeds. Otherwise, unless the attempt budget is
// spent, the provider is asked for a replacement of the target file, which is
// written atomically before the next attempt. Provider and write failures end
// the run with a failed result rather than an error.
type HealTask struct {
	trees    domain.TreeRepository
	projects domain.ProjectRepository
	config   domain.ConfigLoader
	ai       domain.AIProvider
	files    domain.FileSystem
	hasher   domain.Hasher
	logger   domain.Logger
	checker  checker
	repoRoot string
}

// NewHealTask creates a new HealTask use case.
func NewHealTask(
	trees domain.TreeRepository,
	projects domain.ProjectRepository,
	config domain.ConfigLoader,
	runner domain.CommandRunner,
	ai domain.AIProvider,
	files domain.FileSystem,
	hasher domain.Hasher,
	tracer domain.Tracer,
	logger domain.Logger,
	repoRoot string,
) *HealTask {
	return &HealTask{
		trees:    trees,
		projects: projects,
		config:   config,
		ai:       ai,
		files:    files,
		hasher:   hasher,
		logger:   logger,
		checker:  checker{runner: runner, tracer: tracer, logger: logger},
		repoRoot: repoRoot,
	}
}

// Execute runs the healing loop. Errors are returned only when the task
// cannot be resolved; everything that happens inside the loop is reported
// in the result.
func (uc *HealTask) Execute(ctx context.Context, in HealTaskInput) (*HealTaskOutput, error) {
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
	target, warning, err := domain.RepairTarget(task.Task)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", task.Path, err)
	}
	info, err := shared.LoadProjectInfo(uc.projects, in.ProjectID, cfg)
	if err != nil {
		return nil, err
	}

	maxAttempts := in.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = cfg.Heal.MaxAttempts
	}
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultMaxAttempts
	}

	dir := projectDir(info.Project, uc.repoRoot)
	run := healRun{
		HealTask:    uc,
		ctx:         ctx,
		dir:         dir,
		file:        resolveIn(dir, target),
		commands:    task.Task.Acceptance,
		taskContext: domain.BuildContext(tree, task.Path, info.Requirements),
		maxAttempts: maxAttempts,
		onAttempt:   in.OnAttempt,
	}

	ctx, span := uc.checker.tracer.Start(ctx, "heal")
	defer span.End()
	span.SetAttributes("task", task.Path.String(), "file", target, "max_attempts", maxAttempts)
	run.ctx = ctx

	uc.logger.Info(0, "heal", fmt.Sprintf("healing %s (%s, max %d attempts)", task.Path, target, maxAttempts))
	if warning != "" {
		uc.logger.Warn(0, "heal", warning)
	}

	result := run.loop()
	result.FileFixed = target
	result.Warning = warning

	span.SetAttributes("attempts", result.Attempts, "success", result.Success)
	if result.Success {
		uc.logger.Info(0, "heal", fmt.Sprintf("healed %s after %d attempt(s)", task.Path, result.Attempts))
	} else {
		span.RecordError(fmt.Errorf("heal %s: %s", task.Path, result.Error))
		uc.logger.Error(0, "heal", fmt.Sprintf("heal %s failed after %d attempt(s): %s", task.Path, result.Attempts, result.Error))
	}
	return &HealTaskOutput{Task: task, Result: result}, nil
}

// healRun holds the state of one healing loop.
type healRun struct {
	*HealTask
	ctx         context.Context
	onAttempt   func(HealEvent)
	dir         string
	file        string
	taskContext string
	commands    []string
	maxAttempts int
}

func (r healRun) loop() domain.HealingResult {
	var result domain.HealingResult

	if _, err := r.files.ReadFile(r.file); err != nil {
		return result.Failed(fmt.Sprintf("file not found: %s", r.file))
	}

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		ctx, span := r.checker.tracer.Start(r.ctx, "heal.attempt")
		span.SetAttributes("attempt", attempt)

		result.Attempts = attempt
		result.Validations = r.checker.run(ctx, r.dir, r.commands, true)
		event := HealEvent{Attempt: attempt, MaxAttempts: r.maxAttempts, Validations: result.Validations}

		if domain.AllPassed(result.Validations) {
			result.Success = true
			event.Passed = true
			r.notify(event)
			span.End()
			return result
		}
		r.logger.Info(0, "heal", fmt.Sprintf("attempt %d/%d failed", attempt, r.maxAttempts))

		if attempt == r.maxAttempts {
			r.notify(event)
			span.End()
			return result.Failed(domain.HealReasonMaxAttempts)
		}

		unchanged, reason := r.repair(ctx, result.Validations)
		if reason != "" {
			span.RecordError(fmt.Errorf("%s", reason))
			span.End()
			r.notify(event)
			return result.Failed(reason)
		}
		event.Fixed = true
		event.Unchanged = unchanged
		r.notify(event)
		span.End()
	}
	return result
}

// repair asks the provider for a fix and writes it. A non-empty reason ends
// the loop. An identical fix is only logged: it still counts as an attempt.
func (r healRun) repair(ctx context.Context, validations []domain.ValidationResult) (unchanged bool, reason string) {
	content, err := r.files.ReadFile(r.file)
	if err != nil {
		return false, fmt.Sprintf("read %s: %v", r.file, err)
	}

	ctx, span := r.checker.tracer.Start(ctx, "ai.fix")
	span.SetAttributes("provider", r.ai.Name(), "file", r.file)
	fix, err := r.ai.GenerateFix(ctx, domain.FixRequest{
		FilePath:    r.file,
		Content:     string(content),
		ErrorLog:    domain.FormatFailures(validations),
		TaskContext: r.taskContext,
	})
	if err != nil {
		span.RecordError(err)
		span.End()
		r.logger.Error(0, "heal", fmt.Sprintf("fix from %s: %v", r.ai.Name(), err))
		return false, domain.HealReasonNoFix
	}
	span.End()
	if strings.TrimSpace(fix) == "" {
		return false, domain.HealReasonNoFix
	}

	if r.hasher.Digest([]byte(fix)) == r.hasher.Digest(content) {
		r.logger.Warn(0, "heal", "fix is identical to "+r.file)
		return true, ""
	}
	if err := r.files.WriteFile(r.file, []byte(fix)); err != nil {
		return false, fmt.Sprintf("failed to write fix: %v", err)
	}
	r.logger.Info(0, "heal", "applied fix to "+r.file)
	return false, ""
}

func (r healRun) notify(e HealEvent) {
	if r.onAttempt != nil {
		r.onAttempt(e)
	}
}

// resolveIn joins a relative path onto dir.
func resolveIn(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}
