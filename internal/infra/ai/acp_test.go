package ai

import (
	"context"
	"encoding/json"
	"os/exec"
	"testing"

	acpsdk "github.com/coder/acp-go-sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

func TestNewACP_SplitsCommand(t *testing.T) {
	a := NewACP("npx @zed-industries/claude-code-acp", "/repo")
	assert.Equal(t, "npx", a.program)
	assert.Equal(t, []string{"@zed-industries/claude-code-acp"}, a.args)
	assert.Equal(t, "/repo", a.dir)

	a = NewACP("  ", "/repo")
	assert.Equal(t, domain.DefaultACPCommand, a.program)
	assert.Empty(t, a.args)
}

func TestACP_Available(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	var looked string
	lookPath = func(file string) (string, error) { looked = file; return "/usr/bin/" + file, nil }
	assert.True(t, NewACP("agent --stdio", "/repo").Available(context.Background()))
	assert.Equal(t, "agent", looked)

	lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	assert.False(t, NewACP("agent", "/repo").Available(context.Background()))
}

func TestACP_CompleteMissingProgram(t *testing.T) {
	_, err := NewACP("ralph-test-no-such-agent", t.TempDir()).Complete(context.Background(), "hi")

	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func notification(t *testing.T, payload string) acpsdk.SessionNotification {
	t.Helper()
	var n acpsdk.SessionNotification
	require.NoError(t, json.Unmarshal([]byte(payload), &n))
	return n
}

func TestACPClient_CollectsAgentText(t *testing.T) {
	c := &acpClient{}
	ctx := context.Background()

	require.NoError(t, c.SessionUpdate(ctx, notification(t,
		`{"sessionId":"s-1","update":{"sessionUpdate":"agent_message_chunk","content":{"type":"text","text":"package "}}}`)))
	require.NoError(t, c.SessionUpdate(ctx, notification(t,
		`{"sessionId":"s-1","update":{"sessionUpdate":"agent_thought_chunk","content":{"type":"text","text":"thinking"}}}`)))
	require.NoError(t, c.SessionUpdate(ctx, notification(t,
		`{"sessionId":"s-1","update":{"sessionUpdate":"agent_message_chunk","content":{"type":"text","text":"auth"}}}`)))

	assert.Equal(t, "package auth", c.Text())
}

func TestACPClient_RejectsPermissions(t *testing.T) {
	c := &acpClient{}
	req := acpsdk.RequestPermissionRequest{
		SessionId: acpsdk.SessionId("s-1"),
		ToolCall:  acpsdk.RequestPermissionToolCall{ToolCallId: acpsdk.ToolCallId("tool-1")},
		Options: []acpsdk.PermissionOption{
			{OptionId: acpsdk.PermissionOptionId("allow"), Name: "Allow once", Kind: acpsdk.PermissionOptionKind("allow_once")},
			{OptionId: acpsdk.PermissionOptionId("deny"), Name: "Reject", Kind: acpsdk.PermissionOptionKind("reject_once")},
		},
	}

	resp, err := c.RequestPermission(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.Outcome.Selected)
	assert.Equal(t, acpsdk.PermissionOptionId("deny"), resp.Outcome.Selected.OptionId)

	req.Options = req.Options[:1]
	resp, err = c.RequestPermission(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.Outcome.Cancelled)
	assert.Equal(t, "cancelled", resp.Outcome.Cancelled.Outcome)
}

func TestACPClient_DeniesFileAccess(t *testing.T) {
	_, err := (&acpClient{}).ReadTextFile(context.Background(), acpsdk.ReadTextFileRequest{})
	assert.Error(t, err)
	_, err = (&acpClient{}).WriteTextFile(context.Background(), acpsdk.WriteTextFileRequest{})
	assert.Error(t, err)
}
