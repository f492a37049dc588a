package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// Ollama completes prompts with a local Ollama server.
type Ollama struct {
	client  *http.Client
	baseURL string
	model   string
}

// Ensure Ollama implements Completer.
var _ Completer = (*Ollama)(nil)

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// NewOllama creates a completer for the server at baseURL.
func NewOllama(client *http.Client, baseURL, model string) *Ollama {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = domain.DefaultOllamaURL
	}
	if model == "" {
		model = domain.DefaultOllamaModel
	}
	return &Ollama{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

// Name returns "ollama".
func (o *Ollama) Name() string {
	return domain.ProviderOllama
}

// Available lists the local models to check that the server answers.
func (o *Ollama) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// Complete sends a non-streaming generate request.
func (o *Ollama) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: o.model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("ollama timed out: %w", ctx.Err())
		}
		return "", fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", readError(resp)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrMalformedResponse, err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: %s", out.Error)
	}
	return out.Response, nil
}

func readError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(data))
	var body generateResponse
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, msg)
}
