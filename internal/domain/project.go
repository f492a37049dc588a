package domain

import (
	"fmt"
	"time"
)

// Project groups a task tree, its worker pool and its requirements.
// Fields are ordered to minimize memory padding.
type Project struct {
	CreatedAt    time.Time `json:"created_at"`
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	GithubURL    string    `json:"github_url,omitempty"`
	TargetTokens int       `json:"target_tokens"`
}

// NewProject returns a project with the default token budget.
func NewProject(id, name, path string, now time.Time) Project {
	if name == "" {
		name = id
	}
	return Project{
		ID:           id,
		Name:         name,
		Path:         path,
		TargetTokens: DefaultTargetTokens,
		CreatedAt:    now,
	}
}

// Budget returns the project's token target, falling back to fallback.
func (p Project) Budget(fallback int) int {
	if p.TargetTokens > 0 {
		return p.TargetTokens
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultTargetTokens
}

// ProjectSummary reports a project's leaf progress.
// Fields are ordered to minimize memory padding.
type ProjectSummary struct {
	Project         Project
	ProgressPercent float64
	Total           int
	Completed       int
}

// Summarize computes the summary of a project from its tree.
func Summarize(p Project, t Tree) ProjectSummary {
	s := Stats(t)
	return ProjectSummary{
		Project:         p,
		Total:           s.Total,
		Completed:       s.Done,
		ProgressPercent: s.Progress,
	}
}

// ValidateProjectID rejects ids that cannot be used as a directory or ref name.
func ValidateProjectID(id string) error {
	if id == "" {
		return fmt.Errorf("project id: %w", ErrEmptyName)
	}
	if Slugify(id) != id {
		return fmt.Errorf("project id %q: use lowercase letters, digits and hyphens", id)
	}
	return nil
}

// ProgressEntry renders one line of the progress log.
func ProgressEntry(now time.Time, action string, p Path) string {
	return fmt.Sprintf("[%s] %s: %s\n", now.Format("2006-01-02 15:04:05"), action, p)
}

// DefaultRequirements is written to requirements.md by init.
const DefaultRequirements = `# Requirements

## Scale
- Define your scale targets here

## Priorities
- What matters most?

## Skip
- What to avoid / prune
`
