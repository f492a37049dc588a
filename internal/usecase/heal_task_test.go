package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/testutil"
)

const (
	loginFile = "/repo/auth/login.go"
	buildCmd  = "go build ./..."
	testCmd   = "go test ./auth/..."
)

type healFixture struct {
	env    *testEnv
	runner *testutil.MockCommandRunner
	ai     *testutil.MockAIProvider
	files  *testutil.MockFileSystem
	tracer *testutil.MockTracer
	uc     *HealTask
}

func newHealFixture() *healFixture {
	f := &healFixture{
		env:    newTestEnv(),
		runner: testutil.NewMockCommandRunner(),
		ai:     &testutil.MockAIProvider{},
		files:  testutil.NewMockFileSystem(map[string]string{loginFile: "package auth // v1\n"}),
		tracer: &testutil.MockTracer{},
	}
	f.uc = NewHealTask(f.env.trees, f.env.projects, f.env.config, f.runner, f.ai, f.files,
		testutil.MockHasher{}, f.tracer, f.env.logger, "/fallback")
	return f
}

func (f *healFixture) heal(t *testing.T, in HealTaskInput) domain.HealingResult {
	t.Helper()
	if in.ProjectID == "" {
		in.ProjectID = "default"
	}
	out, err := f.uc.Execute(context.Background(), in)
	require.NoError(t, err)
	return out.Result
}

func TestHealTask_PassesFirstAttempt(t *testing.T) {
	f := newHealFixture()

	result := f.heal(t, HealTaskInput{})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, "auth/login.go", result.FileFixed)
	assert.Len(t, result.Validations, 2)
	assert.Empty(t, f.ai.FixRequests)
	assert.Equal(t, []string{"/repo", "/repo"}, f.runner.Dirs)
}

func TestHealTask_FixedOnSecondAttempt(t *testing.T) {
	f := newHealFixture()
	f.runner.Results[testCmd] = []domain.CommandResult{testutil.Fail(1, "--- FAIL: TestLogin"), testutil.Pass("ok")}
	f.ai.Fixes = []string{"package auth // v2\n"}
	var events []HealEvent

	result := f.heal(t, HealTaskInput{OnAttempt: func(e HealEvent) { events = append(events, e) }})

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, "package auth // v2\n", f.files.Files[loginFile])

	require.Len(t, f.ai.FixRequests, 1)
	req := f.ai.FixRequests[0]
	assert.Equal(t, loginFile, req.FilePath)
	assert.Equal(t, "package auth // v1\n", req.Content)
	assert.Equal(t, "COMMAND FAILED: go test ./auth/...\nEXIT CODE: 1\nSTDERR:\n--- FAIL: TestLogin", req.ErrorLog)
	assert.Contains(t, req.TaskContext, "Go service")

	require.Len(t, events, 2)
	assert.True(t, events[0].Fixed)
	assert.False(t, events[0].Passed)
	assert.True(t, events[1].Passed)
}

func TestHealTask_MaxAttemptsReached(t *testing.T) {
	f := newHealFixture()
	f.runner.Results[buildCmd] = []domain.CommandResult{testutil.Fail(2, "undefined: x")}
	f.ai.Fixes = []string{"package auth // v2\n", "package auth // v3\n"}

	result := f.heal(t, HealTaskInput{})

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, domain.HealReasonMaxAttempts, result.Error)
	assert.Len(t, f.ai.FixRequests, 2)
	// Validation stops at the first failing command
	assert.Equal(t, []string{buildCmd, buildCmd, buildCmd}, f.runner.Calls)
	require.Len(t, result.Validations, 1)
	assert.Equal(t, 2, result.Validations[0].ExitCode)
	assert.Equal(t, "package auth // v3\n", f.files.Files[loginFile])
}

func TestHealTask_MaxAttemptsOverride(t *testing.T) {
	f := newHealFixture()
	f.runner.Results[buildCmd] = []domain.CommandResult{testutil.Fail(1, "")}
	f.ai.Fixes = []string{"package auth // v2\n"}

	result := f.heal(t, HealTaskInput{MaxAttempts: 1})

	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, domain.HealReasonMaxAttempts, result.Error)
	assert.Empty(t, f.ai.FixRequests)
}

func TestHealTask_IdenticalFixStillCountsAnAttempt(t *testing.T) {
	f := newHealFixture()
	f.runner.Results[buildCmd] = []domain.CommandResult{testutil.Fail(1, "boom")}
	f.ai.Fixes = []string{"package auth // v1\n"}
	var events []HealEvent

	result := f.heal(t, HealTaskInput{MaxAttempts: 2, OnAttempt: func(e HealEvent) { events = append(events, e) }})

	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, domain.HealReasonMaxAttempts, result.Error)
	assert.Empty(t, f.files.Writes)
	require.NotEmpty(t, events)
	assert.True(t, events[0].Unchanged)
	assert.True(t, f.env.logger.Contains("fix is identical"))
}

func TestHealTask_ProviderFailures(t *testing.T) {
	tests := []struct {
		setup func(f *healFixture)
		name  string
		want  string
	}{
		{
			name:  "provider unavailable",
			setup: func(f *healFixture) { f.ai.FixErr = domain.ErrProviderUnavailable },
			want:  domain.HealReasonNoFix,
		},
		{
			name:  "malformed response",
			setup: func(f *healFixture) { f.ai.FixErr = domain.ErrMalformedResponse },
			want:  domain.HealReasonNoFix,
		},
		{
			name:  "empty fix",
			setup: func(f *healFixture) { f.ai.Fixes = []string{"  \n"} },
			want:  domain.HealReasonNoFix,
		},
		{
			name: "write failure",
			setup: func(f *healFixture) {
				f.ai.Fixes = []string{"package auth // v2\n"}
				f.files.WriteErr = errors.New("read-only file system")
			},
			want: "failed to write fix: read-only file system",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHealFixture()
			f.runner.Results[buildCmd] = []domain.CommandResult{testutil.Fail(1, "boom")}
			tt.setup(f)

			result := f.heal(t, HealTaskInput{})

			assert.False(t, result.Success)
			assert.Equal(t, 1, result.Attempts)
			assert.Equal(t, tt.want, result.Error)
		})
	}
}

func TestHealTask_MissingFile(t *testing.T) {
	f := newHealFixture()
	delete(f.files.Files, loginFile)

	result := f.heal(t, HealTaskInput{})

	assert.False(t, result.Success)
	assert.Zero(t, result.Attempts)
	assert.Equal(t, "file not found: "+loginFile, result.Error)
	assert.Empty(t, f.runner.Calls)
}

func TestHealTask_MultipleFilesWarn(t *testing.T) {
	f := newHealFixture()
	tree, ok := domain.UpdateAtPath(f.env.tree(), domain.ParsePath("Root.Backend.Auth.Login"), func(n domain.TaskNode) domain.TaskNode {
		n.Files = []string{"auth/login.go", "auth/session.go"}
		return n
	})
	require.True(t, ok)
	f.env.trees.Trees["default"] = tree

	result := f.heal(t, HealTaskInput{})

	assert.True(t, result.Success)
	assert.Equal(t, "task lists 2 files; only auth/login.go is repaired", result.Warning)
}

func TestHealTask_Errors(t *testing.T) {
	t.Run("no acceptance", func(t *testing.T) {
		f := newHealFixture()
		_, err := f.uc.Execute(context.Background(), HealTaskInput{ProjectID: "default", Path: "Docs"})
		assert.ErrorIs(t, err, domain.ErrNoAcceptance)
	})

	t.Run("unknown task", func(t *testing.T) {
		f := newHealFixture()
		_, err := f.uc.Execute(context.Background(), HealTaskInput{ProjectID: "default", Path: "Nope"})
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})
}

func TestHealTask_Spans(t *testing.T) {
	f := newHealFixture()
	f.runner.Results[buildCmd] = []domain.CommandResult{testutil.Fail(1, "boom")}
	f.ai.FixErr = domain.ErrProviderUnavailable

	f.heal(t, HealTaskInput{})

	assert.Equal(t, []string{"heal", "heal.attempt", "validate.command", "ai.fix"}, f.tracer.Spans)
	assert.Len(t, f.tracer.Errors, 3)
}

func TestHealTask_RunnerErrorIsAFailedCheck(t *testing.T) {
	f := newHealFixture()
	f.runner.Err = errors.New("sh: not found")

	result := f.heal(t, HealTaskInput{MaxAttempts: 1})

	require.Len(t, result.Validations, 1)
	assert.Equal(t, -1, result.Validations[0].ExitCode)
	assert.Equal(t, "sh: not found", result.Validations[0].Stderr)
}

func TestValidateTask_Execute(t *testing.T) {
	env := newTestEnv()
	runner := testutil.NewMockCommandRunner()
	runner.Results[buildCmd] = []domain.CommandResult{testutil.Fail(1, "undefined: x")}
	uc := NewValidateTask(env.trees, env.projects, env.config, runner, domain.NopTracer{}, env.logger, "/fallback")

	out, err := uc.Execute(context.Background(), ValidateTaskInput{ProjectID: "default"})
	require.NoError(t, err)

	assert.False(t, out.Passed)
	assert.Equal(t, "/repo", out.Dir)
	// Every command runs, even after a failure
	require.Len(t, out.Results, 2)
	assert.False(t, out.Results[0].Success)
	assert.True(t, out.Results[1].Success)
}

func TestValidateTask_FallsBackToRepoRoot(t *testing.T) {
	env := newTestEnv()
	delete(env.projects.Projects, "default")
	runner := testutil.NewMockCommandRunner()
	uc := NewValidateTask(env.trees, env.projects, env.config, runner, domain.NopTracer{}, env.logger, "/fallback")

	out, err := uc.Execute(context.Background(), ValidateTaskInput{ProjectID: "default", Path: "Backend.Auth.Login"})
	require.NoError(t, err)

	assert.True(t, out.Passed)
	assert.Equal(t, []string{"/fallback", "/fallback"}, runner.Dirs)
}

func TestValidateTask_NoAcceptance(t *testing.T) {
	env := newTestEnv()
	uc := NewValidateTask(env.trees, env.projects, env.config, testutil.NewMockCommandRunner(), domain.NopTracer{}, env.logger, "")

	_, err := uc.Execute(context.Background(), ValidateTaskInput{ProjectID: "default", Path: "Docs"})
	assert.ErrorIs(t, err, domain.ErrNoAcceptance)
}
