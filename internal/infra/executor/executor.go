// Package executor runs external programs for the AI providers and the
// acceptance-command runner.
package executor

import (
	"context"
	"io"
	"os/exec"
	"time"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// waitDelay bounds how long a cancelled command may keep its output pipes open,
// e.g. through background children of sh.
const waitDelay = 2 * time.Second

// Client runs domain.ExecCommand values with os/exec.
type Client struct{}

var _ domain.CommandExecutor = (*Client)(nil)

// NewClient returns an executor.
func NewClient() *Client {
	return &Client{}
}

// Execute runs cmd to completion and returns stdout and stderr interleaved.
func (c *Client) Execute(cmd *domain.ExecCommand) ([]byte, error) {
	return build(context.Background(), cmd).CombinedOutput()
}

// ExecuteWithContext runs cmd with its output streamed to stdout and stderr.
// The process is killed when ctx is done.
func (c *Client) ExecuteWithContext(ctx context.Context, cmd *domain.ExecCommand, stdout, stderr io.Writer) error {
	proc := build(ctx, cmd)
	proc.Stdout = stdout
	proc.Stderr = stderr
	proc.WaitDelay = waitDelay
	return proc.Run()
}

func build(ctx context.Context, cmd *domain.ExecCommand) *exec.Cmd {
	proc := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	proc.Dir = cmd.Dir
	return proc
}
