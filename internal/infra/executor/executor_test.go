package executor

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

func TestClient_Execute(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on Windows")
	}

	client := NewClient()

	t.Run("executes simple echo command", func(t *testing.T) {
		output, err := client.Execute(domain.NewShellCommand("", "echo hello"))
		require.NoError(t, err)
		assert.Equal(t, "hello\n", string(output))
	})

	t.Run("executes command in specified directory", func(t *testing.T) {
		dir := t.TempDir()
		output, err := client.Execute(domain.NewShellCommand(dir, "pwd"))
		require.NoError(t, err)
		assert.Contains(t, strings.TrimSpace(string(output)), dir)
	})

	t.Run("returns error for non-existent command", func(t *testing.T) {
		_, err := client.Execute(&domain.ExecCommand{Program: "nonexistent-command-xyz"})
		require.Error(t, err)
	})

	t.Run("returns error for failing command", func(t *testing.T) {
		_, err := client.Execute(domain.NewShellCommand("", "exit 1"))
		require.Error(t, err)
	})

	t.Run("captures stderr in output", func(t *testing.T) {
		output, err := client.Execute(domain.NewShellCommand("", "echo error >&2"))
		require.NoError(t, err)
		assert.Equal(t, "error\n", string(output))
	})
}

func TestClient_ExecuteWithContext(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on Windows")
	}

	client := NewClient()

	t.Run("separates stdout and stderr", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		err := client.ExecuteWithContext(context.Background(),
			domain.NewShellCommand("", "echo out; echo err >&2"), &stdout, &stderr)
		require.NoError(t, err)
		assert.Equal(t, "out\n", stdout.String())
		assert.Equal(t, "err\n", stderr.String())
	})

	t.Run("kills the process when the context expires", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		start := time.Now()
		var stdout, stderr bytes.Buffer
		err := client.ExecuteWithContext(ctx, domain.NewShellCommand("", "sleep 10"), &stdout, &stderr)
		require.Error(t, err)
		assert.Less(t, time.Since(start), 5*time.Second)
	})
}
