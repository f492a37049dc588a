// Package runner runs acceptance commands through the shell.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// Client implements domain.CommandRunner on top of a CommandExecutor.
type Client struct {
	executor domain.CommandExecutor
	timeout  time.Duration
}

// NewClient creates a runner that kills commands after timeout.
// A non-positive timeout uses domain.DefaultCommandTimeout.
func NewClient(executor domain.CommandExecutor, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = domain.DefaultCommandTimeout
	}
	return &Client{executor: executor, timeout: timeout}
}

// Ensure Client implements domain.CommandRunner interface.
var _ domain.CommandRunner = (*Client)(nil)

// Run executes command with sh -c in dir, capturing both output streams.
// Non-zero exits and timeouts are reported in the result. A timeout yields
// exit code -1 and a message on stderr.
func (c *Client) Run(ctx context.Context, dir, command string) (domain.CommandResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	err := c.executor.ExecuteWithContext(ctx, domain.NewShellCommand(dir, command), &stdout, &stderr)

	result := domain.CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		result.ExitCode = -1
		result.TimedOut = true
		result.Stderr = fmt.Sprintf("Command timed out after %ds", int(c.timeout.Seconds()))
		return result, nil
	}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	return result, fmt.Errorf("run %q: %w", command, err)
}
