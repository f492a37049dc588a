package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFailures(t *testing.T) {
	results := []ValidationResult{
		{Command: "go vet ./...", Success: true},
		{Command: "go test ./...", ExitCode: 1, Stdout: "FAIL pkg\n", Stderr: "  \n"},
	}
	assert.Equal(t, "COMMAND FAILED: go test ./...\nEXIT CODE: 1\nSTDOUT:\nFAIL pkg\n", FormatFailures(results))
	assert.Empty(t, FormatFailures(results[:1]))
}

func TestAllPassed(t *testing.T) {
	assert.True(t, AllPassed(nil))
	assert.True(t, AllPassed([]ValidationResult{{Success: true}}))
	assert.False(t, AllPassed([]ValidationResult{{Success: true}, {Success: false}}))
}

func TestRepairTarget(t *testing.T) {
	_, _, err := RepairTarget(TaskNode{Name: "x", Files: []string{"a.go"}})
	assert.ErrorIs(t, err, ErrNoAcceptance)

	_, _, err = RepairTarget(TaskNode{Name: "x", Acceptance: []string{"true"}})
	assert.ErrorIs(t, err, ErrNoFiles)

	target, warning, err := RepairTarget(TaskNode{Name: "x", Acceptance: []string{"true"}, Files: []string{"a.go"}})
	require.NoError(t, err)
	assert.Equal(t, "a.go", target)
	assert.Empty(t, warning)

	target, warning, err = RepairTarget(TaskNode{Name: "x", Acceptance: []string{"true"}, Files: []string{"a.go", "b.go"}})
	require.NoError(t, err)
	assert.Equal(t, "a.go", target)
	assert.Contains(t, warning, "only a.go is repaired")
}

func TestCommandResult_Validation(t *testing.T) {
	v := CommandResult{ExitCode: 0, Stdout: "ok"}.Validation("true")
	assert.True(t, v.Success)
	v = CommandResult{ExitCode: -1, TimedOut: true}.Validation("sleep 100")
	assert.False(t, v.Success)
	assert.Equal(t, "sleep 100", v.Command)
}
