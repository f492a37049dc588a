package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// EnrichTasksInput contains the parameters for enriching pending tasks.
type EnrichTasksInput struct {
	ProjectID string
	TopK      int  // Files per task (0 = config default)
	DryRun    bool // Report suggestions without saving them
}

// Enrichment is the read-first list suggested for one task.
type Enrichment struct {
	Path  domain.Path
	Files []string
}

// EnrichTasksOutput contains the suggestions that were found.
type EnrichTasksOutput struct {
	Enriched []Enrichment
	Skipped  int // Pending leaves without any suggestion
}

// EnrichTasks is the use case behind `ralph enrich`: it fills read_first for
// pending leaves that have none, using repository search.
type EnrichTasks struct {
	trees    domain.TreeRepository
	projects domain.ProjectRepository
	config   domain.ConfigLoader
	searcher domain.FileSearcher
	logger   domain.Logger
}

// NewEnrichTasks creates a new EnrichTasks use case.
func NewEnrichTasks(
	trees domain.TreeRepository,
	projects domain.ProjectRepository,
	config domain.ConfigLoader,
	searcher domain.FileSearcher,
	logger domain.Logger,
) *EnrichTasks {
	return &EnrichTasks{
		trees:    trees,
		projects: projects,
		config:   config,
		searcher: searcher,
		logger:   logger,
	}
}

// Execute enriches the tree.
func (uc *EnrichTasks) Execute(ctx context.Context, in EnrichTasksInput) (*EnrichTasksOutput, error) {
	cfg, err := shared.LoadConfig(uc.config)
	if err != nil {
		return nil, err
	}
	tree, err := shared.LoadTree(uc.trees, in.ProjectID)
	if err != nil {
		return nil, err
	}
	info, err := shared.LoadProjectInfo(uc.projects, in.ProjectID, cfg)
	if err != nil {
		return nil, err
	}
	topK := in.TopK
	if topK <= 0 {
		topK = cfg.Search.TopK
	}

	candidates := domain.Filter(tree, func(n domain.TaskNode, _ domain.Path) bool {
		return n.IsLeaf() && n.Status == domain.StatusPending && len(n.ReadFirst) == 0
	})

	out := &EnrichTasksOutput{}
	updated := tree
	for _, task := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		taskContext := domain.BuildContext(tree, task.Path, info.Requirements)
		files, err := uc.searcher.SuggestRelevantFiles(ctx, task.Task.Name, taskContext, topK)
		if err != nil {
			return nil, fmt.Errorf("suggest files for %s: %w", task.Path, err)
		}
		// A task never needs to read the file it is about to write
		files = slices.DeleteFunc(slices.Clone(files), func(f string) bool { return slices.Contains(task.Task.Files, f) })
		if len(files) == 0 {
			out.Skipped++
			continue
		}
		updated, _ = domain.UpdateAtPath(updated, task.Path, func(n domain.TaskNode) domain.TaskNode {
			n.ReadFirst = files
			return n
		})
		out.Enriched = append(out.Enriched, Enrichment{Path: task.Path, Files: files})
	}

	if len(out.Enriched) > 0 && !in.DryRun {
		if err := shared.SaveTree(uc.trees, in.ProjectID, updated); err != nil {
			return nil, err
		}
		uc.logger.Info(0, "enrich", fmt.Sprintf("enriched %d tasks", len(out.Enriched)))
	}
	return out, nil
}
