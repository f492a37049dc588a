package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// claudeResponse is the wrapper printed by `claude -p --output-format json`.
type claudeResponse struct {
	Type    string `json:"type"`
	Result  string `json:"result"`
	IsError bool   `json:"is_error"`
}

// Claude completes prompts with the Claude CLI in print mode.
type Claude struct {
	executor domain.CommandExecutor
	command  string
}

// Ensure Claude implements Completer.
var _ Completer = (*Claude)(nil)

// NewClaude creates a completer that runs command (default "claude").
func NewClaude(executor domain.CommandExecutor, command string) *Claude {
	if command == "" {
		command = domain.DefaultClaudeCommand
	}
	return &Claude{executor: executor, command: command}
}

// Name returns "claude".
func (c *Claude) Name() string {
	return domain.ProviderClaude
}

// Available reports whether the CLI is on PATH.
func (c *Claude) Available(context.Context) bool {
	_, err := lookPath(c.command)
	return err == nil
}

// Complete runs one non-interactive prompt.
func (c *Claude) Complete(ctx context.Context, prompt string) (string, error) {
	cmd := &domain.ExecCommand{
		Program: c.command,
		Args:    []string{"-p", prompt, "--output-format", "json"},
	}

	var stdout, stderr bytes.Buffer
	if err := c.executor.ExecuteWithContext(ctx, cmd, &stdout, &stderr); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("claude timed out: %w", ctx.Err())
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("claude failed: %s", msg)
	}

	return parseClaudeOutput(stdout.String())
}

// parseClaudeOutput unwraps the JSON result envelope. Output that is not an
// envelope is returned as is.
func parseClaudeOutput(output string) (string, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return "", fmt.Errorf("%w: empty output", domain.ErrMalformedResponse)
	}

	var resp claudeResponse
	if err := json.Unmarshal([]byte(output), &resp); err != nil || resp.Type == "" {
		return output, nil
	}
	if resp.IsError {
		return "", fmt.Errorf("claude returned an error: %s", resp.Result)
	}
	return resp.Result, nil
}
