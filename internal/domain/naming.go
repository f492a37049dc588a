package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// DirName is the name of the ralph data directory at the repository root.
const DirName = ".ralph"

// ConfigFileName is the name of both the repo and the global config file.
const ConfigFileName = "config.toml"

// DefaultProjectID is used when neither a flag nor the config names a project.
const DefaultProjectID = "default"

// DefaultBranchPrefix namespaces worker branches.
const DefaultBranchPrefix = "ralph/"

// maxSlugLen bounds the task-derived part of a branch name.
const maxSlugLen = 40

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every run of characters outside
// [a-z0-9] into a single hyphen. The result is trimmed of hyphens and
// truncated to 40 characters.
func Slugify(s string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}

// BranchName returns the worker branch for a task name.
// Format: <prefix><slug>, e.g. ralph/add-login-form.
// Names without any usable character fall back to task-<id>.
func BranchName(prefix, taskName string, workerID int) string {
	slug := Slugify(taskName)
	if slug == "" {
		slug = fmt.Sprintf("task-%d", workerID)
	}
	return prefix + slug
}

// ProjectDir returns the directory holding one project's documents.
func ProjectDir(ralphDir, projectID string) string {
	return filepath.Join(ralphDir, "projects", projectID)
}

// ProjectFilePath returns the path to project.json.
func ProjectFilePath(ralphDir, projectID string) string {
	return filepath.Join(ProjectDir(ralphDir, projectID), "project.json")
}

// TreePath returns the path to tree.json.
func TreePath(ralphDir, projectID string) string {
	return filepath.Join(ProjectDir(ralphDir, projectID), "tree.json")
}

// WorkersPath returns the path to workers.json.
func WorkersPath(ralphDir, projectID string) string {
	return filepath.Join(ProjectDir(ralphDir, projectID), "workers.json")
}

// RequirementsPath returns the path to requirements.md.
func RequirementsPath(ralphDir, projectID string) string {
	return filepath.Join(ProjectDir(ralphDir, projectID), "requirements.md")
}

// ProgressPath returns the path to the progress log.
func ProgressPath(ralphDir, projectID string) string {
	return filepath.Join(ProjectDir(ralphDir, projectID), "progress.txt")
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(ralphDir string) string {
	return filepath.Join(ralphDir, "logs", "ralph.log")
}

// WorkerLogPath returns the path to a worker lane's log file.
func WorkerLogPath(ralphDir string, workerID int) string {
	return filepath.Join(ralphDir, "logs", fmt.Sprintf("worker-%d.log", workerID))
}

// WorktreePath returns the path to a worker lane's worktree.
func WorktreePath(ralphDir string, workerID int) string {
	return filepath.Join(ralphDir, "worktrees", fmt.Sprintf("%d", workerID))
}

// RepoConfigPath returns the path to the repository config file.
func RepoConfigPath(ralphDir string) string {
	return filepath.Join(ralphDir, ConfigFileName)
}

// LaneName renders a worker id for log lines. Lane 0 is the global lane.
func LaneName(workerID int) string {
	if workerID <= 0 {
		return "global"
	}
	return fmt.Sprintf("worker-%d", workerID)
}
