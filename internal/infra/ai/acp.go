package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	acpsdk "github.com/coder/acp-go-sdk"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// ACP completes prompts with an agent that speaks the Agent Client Protocol
// over stdio. Each prompt runs in a fresh agent process and session.
type ACP struct {
	program string
	args    []string
	dir     string
}

// Ensure ACP implements Completer.
var _ Completer = (*ACP)(nil)

// NewACP creates a completer that starts command (program and arguments,
// default "claude-code-acp") with dir as the session working directory.
func NewACP(command, dir string) *ACP {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		fields = []string{domain.DefaultACPCommand}
	}
	return &ACP{program: fields[0], args: fields[1:], dir: dir}
}

// Name returns "acp".
func (a *ACP) Name() string {
	return domain.ProviderACP
}

// Available reports whether the agent program is on PATH.
func (a *ACP) Available(context.Context) bool {
	_, err := lookPath(a.program)
	return err == nil
}

// Complete starts the agent, sends prompt as one turn and returns the text
// the agent streamed back.
func (a *ACP) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.program, a.args...)
	cmd.Dir = a.dir
	var stderr strings.Builder
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
		}
		return "", fmt.Errorf("start agent process: %w", err)
	}
	defer func() {
		_ = stdin.Close()
		cancel()
		_ = cmd.Wait()
	}()

	text, err := a.converse(ctx, stdin, stdout, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("acp agent timed out: %w", ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return text, nil
}

// converse runs the initialize, new-session and prompt exchange.
func (a *ACP) converse(ctx context.Context, w io.Writer, r io.Reader, prompt string) (string, error) {
	client := &acpClient{}
	conn := acpsdk.NewClientSideConnection(client, w, r)

	if _, err := conn.Initialize(ctx, acpsdk.InitializeRequest{
		ProtocolVersion: acpsdk.ProtocolVersionNumber,
		ClientCapabilities: acpsdk.ClientCapabilities{
			Fs:       acpsdk.FileSystemCapability{ReadTextFile: false, WriteTextFile: false},
			Terminal: false,
		},
	}); err != nil {
		return "", fmt.Errorf("acp initialize: %w", err)
	}

	session, err := conn.NewSession(ctx, acpsdk.NewSessionRequest{
		Cwd:        a.dir,
		McpServers: []acpsdk.McpServer{},
	})
	if err != nil {
		return "", fmt.Errorf("acp new session: %w", err)
	}

	resp, err := conn.Prompt(ctx, acpsdk.PromptRequest{
		SessionId: session.SessionId,
		Prompt:    []acpsdk.ContentBlock{acpsdk.TextBlock(prompt)},
	})
	if err != nil {
		return "", fmt.Errorf("acp prompt: %w", err)
	}
	if resp.StopReason != acpsdk.StopReasonEndTurn {
		return "", fmt.Errorf("acp agent stopped: %s", resp.StopReason)
	}

	text := client.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty agent response", domain.ErrMalformedResponse)
	}
	return text, nil
}

// acpClient collects agent message text. The agent gets no file system or
// terminal access, and every permission request is rejected.
type acpClient struct {
	text strings.Builder
	mu   sync.Mutex
}

var _ acpsdk.Client = (*acpClient)(nil)

// Text returns the agent message chunks received so far.
func (c *acpClient) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text.String()
}

func (c *acpClient) SessionUpdate(_ context.Context, params acpsdk.SessionNotification) error {
	chunk := params.Update.AgentMessageChunk
	if chunk == nil || chunk.Content.Text == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text.WriteString(chunk.Content.Text.Text)
	return nil
}

func (c *acpClient) RequestPermission(_ context.Context, params acpsdk.RequestPermissionRequest) (acpsdk.RequestPermissionResponse, error) {
	for _, opt := range params.Options {
		if string(opt.Kind) == "reject_once" || string(opt.Kind) == "reject_always" {
			return acpsdk.RequestPermissionResponse{
				Outcome: acpsdk.RequestPermissionOutcome{
					Selected: &acpsdk.RequestPermissionOutcomeSelected{
						OptionId: opt.OptionId,
						Outcome:  "selected",
					},
				},
			}, nil
		}
	}
	return acpsdk.RequestPermissionResponse{
		Outcome: acpsdk.RequestPermissionOutcome{
			Cancelled: &acpsdk.RequestPermissionOutcomeCancelled{Outcome: "cancelled"},
		},
	}, nil
}

func (c *acpClient) WriteTextFile(context.Context, acpsdk.WriteTextFileRequest) (acpsdk.WriteTextFileResponse, error) {
	return acpsdk.WriteTextFileResponse{}, acpsdk.NewMethodNotFound(acpsdk.ClientMethodFsWriteTextFile)
}

func (c *acpClient) ReadTextFile(context.Context, acpsdk.ReadTextFileRequest) (acpsdk.ReadTextFileResponse, error) {
	return acpsdk.ReadTextFileResponse{}, acpsdk.NewMethodNotFound(acpsdk.ClientMethodFsReadTextFile)
}

func (c *acpClient) CreateTerminal(context.Context, acpsdk.CreateTerminalRequest) (acpsdk.CreateTerminalResponse, error) {
	return acpsdk.CreateTerminalResponse{}, acpsdk.NewMethodNotFound(acpsdk.ClientMethodTerminalCreate)
}

func (c *acpClient) TerminalOutput(context.Context, acpsdk.TerminalOutputRequest) (acpsdk.TerminalOutputResponse, error) {
	return acpsdk.TerminalOutputResponse{}, acpsdk.NewMethodNotFound(acpsdk.ClientMethodTerminalOutput)
}

func (c *acpClient) ReleaseTerminal(context.Context, acpsdk.ReleaseTerminalRequest) (acpsdk.ReleaseTerminalResponse, error) {
	return acpsdk.ReleaseTerminalResponse{}, acpsdk.NewMethodNotFound(acpsdk.ClientMethodTerminalRelease)
}

func (c *acpClient) WaitForTerminalExit(context.Context, acpsdk.WaitForTerminalExitRequest) (acpsdk.WaitForTerminalExitResponse, error) {
	return acpsdk.WaitForTerminalExitResponse{}, acpsdk.NewMethodNotFound(acpsdk.ClientMethodTerminalWaitForExit)
}

func (c *acpClient) KillTerminalCommand(context.Context, acpsdk.KillTerminalCommandRequest) (acpsdk.KillTerminalCommandResponse, error) {
	return acpsdk.KillTerminalCommandResponse{}, acpsdk.NewMethodNotFound(acpsdk.ClientMethodTerminalKill)
}
