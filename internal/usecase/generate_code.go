package usecase

import (
	"context"
	"fmt"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// GenerateCodeInput contains the parameters for generating a task's file.
type GenerateCodeInput struct {
	ProjectID string
	Path      string // Task path (optional, defaults to the next pending task)
}

// GenerateCodeOutput contains the result of code generation.
type GenerateCodeOutput struct {
	Task  domain.TaskWithPath
	File  string // Path written, relative to the project
	Bytes int
}

// GenerateCode is the use case behind `ralph code`: it writes the provider's
// content for the task's first file.
type GenerateCode struct {
	trees    domain.TreeRepository
	projects domain.ProjectRepository
	config   domain.ConfigLoader
	ai       domain.AIProvider
	files    domain.FileSystem
	tracer   domain.Tracer
	logger   domain.Logger
	repoRoot string
}

// NewGenerateCode creates a new GenerateCode use case.
func NewGenerateCode(
	trees domain.TreeRepository,
	projects domain.ProjectRepository,
	config domain.ConfigLoader,
	ai domain.AIProvider,
	files domain.FileSystem,
	tracer domain.Tracer,
	logger domain.Logger,
	repoRoot string,
) *GenerateCode {
	return &GenerateCode{
		trees:    trees,
		projects: projects,
		config:   config,
		ai:       ai,
		files:    files,
		tracer:   tracer,
		logger:   logger,
		repoRoot: repoRoot,
	}
}

// Execute generates and writes the file.
func (uc *GenerateCode) Execute(ctx context.Context, in GenerateCodeInput) (*GenerateCodeOutput, error) {
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
	if len(task.Task.Files) == 0 {
		return nil, fmt.Errorf("%s: %w", task.Path, domain.ErrNoFiles)
	}
	info, err := shared.LoadProjectInfo(uc.projects, in.ProjectID, cfg)
	if err != nil {
		return nil, err
	}

	dir := projectDir(info.Project, uc.repoRoot)
	target := task.Task.Files[0]
	var refs []domain.FileExcerpt
	for _, ref := range task.Task.ReadFirst {
		content, err := uc.files.ReadFile(resolveIn(dir, ref))
		if err != nil {
			uc.logger.Warn(0, "code", fmt.Sprintf("skip reference %s: %v", ref, err))
			continue
		}
		refs = append(refs, domain.FileExcerpt{Path: ref, Content: string(content)})
	}

	ctx, span := uc.tracer.Start(ctx, "ai.code")
	defer span.End()
	span.SetAttributes("provider", uc.ai.Name(), "file", target)

	code, err := uc.ai.GenerateCode(ctx, domain.CodeRequest{
		Context:    domain.BuildContext(tree, task.Path, info.Requirements),
		Target:     target,
		References: refs,
		Task:       task.Task,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("generate code: %w", err)
	}
	if err := uc.files.WriteFile(resolveIn(dir, target), []byte(code)); err != nil {
		return nil, fmt.Errorf("write %s: %w", target, err)
	}

	uc.logger.Info(0, "code", fmt.Sprintf("wrote %s for %s", target, task.Path))
	return &GenerateCodeOutput{Task: task, File: target, Bytes: len(code)}, nil
}
