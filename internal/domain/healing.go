package domain

import (
	"fmt"
	"strings"
)

// DefaultMaxAttempts bounds the validate/repair loop.
const DefaultMaxAttempts = 3

// Terminal healing reasons.
const (
	HealReasonMaxAttempts = "max attempts reached"
	HealReasonNoFix       = "Failed to get fix from AI"
)

// ValidationResult is the outcome of one acceptance command.
// Fields are ordered to minimize memory padding.
type ValidationResult struct {
	Command  string `json:"command"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
	Success  bool   `json:"success"`
}

// AllPassed reports whether every result succeeded. An empty batch passes.
func AllPassed(results []ValidationResult) bool {
	for _, r := range results {
		if !r.Success {
			return false
		}
	}
	return true
}

// FormatFailures renders the failed commands of a validation batch for a
// repair request. Blank output streams are omitted.
func FormatFailures(results []ValidationResult) string {
	var lines []string
	for _, r := range results {
		if r.Success {
			continue
		}
		lines = append(lines,
			"COMMAND FAILED: "+r.Command,
			fmt.Sprintf("EXIT CODE: %d", r.ExitCode),
		)
		if strings.TrimSpace(r.Stdout) != "" {
			lines = append(lines, "STDOUT:\n"+r.Stdout)
		}
		if strings.TrimSpace(r.Stderr) != "" {
			lines = append(lines, "STDERR:\n"+r.Stderr)
		}
	}
	return strings.Join(lines, "\n")
}

// HealingResult is the outcome of a bounded repair run on one task.
// Fields are ordered to minimize memory padding.
type HealingResult struct {
	FileFixed   string             `json:"file_fixed,omitempty"`
	Error       string             `json:"error,omitempty"`
	Warning     string             `json:"warning,omitempty"` // Set when only part of the task could be targeted
	Validations []ValidationResult `json:"validations"`
	Attempts    int                `json:"attempts"`
	Success     bool               `json:"success"`
}

// Failed returns a terminal failure result.
func (r HealingResult) Failed(reason string) HealingResult {
	r.Success = false
	r.Error = reason
	return r
}

// RepairTarget returns the file the healing loop rewrites: the first entry of
// the task's file list. A warning is returned when the task lists more files,
// since only the first one is repaired.
func RepairTarget(task TaskNode) (target, warning string, err error) {
	if len(task.Acceptance) == 0 {
		return "", "", ErrNoAcceptance
	}
	if len(task.Files) == 0 {
		return "", "", ErrNoFiles
	}
	if len(task.Files) > 1 {
		warning = fmt.Sprintf("task lists %d files; only %s is repaired", len(task.Files), task.Files[0])
	}
	return task.Files[0], warning, nil
}
