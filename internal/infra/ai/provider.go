// Package ai provides the planning, coding and repair providers.
package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// Completer sends one prompt to a model and returns its text response.
type Completer interface {
	// Name identifies the backend.
	Name() string

	// Available reports whether the backend can be reached.
	Available(ctx context.Context) bool

	// Complete returns the model's response to prompt.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Provider implements domain.AIProvider over a Completer by rendering the
// domain prompts and parsing the responses.
type Provider struct {
	completer Completer
	timeout   time.Duration
}

// Ensure Provider implements domain.AIProvider.
var _ domain.AIProvider = (*Provider)(nil)

// NewProvider wraps completer. Calls whose context has no deadline are
// bounded by timeout.
func NewProvider(completer Completer, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = domain.DefaultAITimeout
	}
	return &Provider{completer: completer, timeout: timeout}
}

// New returns the provider selected by the [ai] config section. dir is the
// working directory given to agent sessions.
func New(cfg domain.AIConfig, timeout time.Duration, executor domain.CommandExecutor, dir string) domain.AIProvider {
	switch cfg.Provider {
	case domain.ProviderClaude:
		return NewProvider(NewClaude(executor, cfg.ClaudeCommand), timeout)
	case domain.ProviderACP:
		return NewProvider(NewACP(cfg.ACPCommand, dir), timeout)
	case domain.ProviderOllama:
		return NewProvider(NewOllama(http.DefaultClient, cfg.OllamaURL, cfg.Model), timeout)
	default:
		return Null{}
	}
}

// Name returns the backend name.
func (p *Provider) Name() string {
	return p.completer.Name()
}

// Probe reports whether the backend can currently be used.
func (p *Provider) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.completer.Available(ctx)
}

// GenerateFix asks for the complete replacement content of the failing file.
func (p *Provider) GenerateFix(ctx context.Context, req domain.FixRequest) (string, error) {
	resp, err := p.complete(ctx, domain.RenderFixPrompt(req))
	if err != nil {
		return "", err
	}
	return ParseFileContent(resp)
}

// GeneratePlan asks for a task tree covering the requirements.
func (p *Provider) GeneratePlan(ctx context.Context, req domain.PlanRequest) (domain.Tree, error) {
	resp, err := p.complete(ctx, domain.RenderPlanPrompt(req))
	if err != nil {
		return domain.Tree{}, err
	}
	return ParsePlan(resp)
}

// GenerateCode asks for the complete content of the task's target file.
func (p *Provider) GenerateCode(ctx context.Context, req domain.CodeRequest) (string, error) {
	resp, err := p.complete(ctx, domain.RenderCodePrompt(req))
	if err != nil {
		return "", err
	}
	return ParseFileContent(resp)
}

func (p *Provider) complete(ctx context.Context, prompt string) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	resp, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.completer.Name(), err)
	}
	return resp, nil
}

// Null is the provider used when [ai] provider = "none".
type Null struct{}

// Ensure Null implements domain.AIProvider.
var _ domain.AIProvider = Null{}

func (Null) Name() string               { return domain.ProviderNone }
func (Null) Probe(context.Context) bool { return false }

func (Null) GenerateFix(context.Context, domain.FixRequest) (string, error) {
	return "", domain.ErrProviderUnavailable
}

func (Null) GeneratePlan(context.Context, domain.PlanRequest) (domain.Tree, error) {
	return domain.Tree{}, domain.ErrProviderUnavailable
}

func (Null) GenerateCode(context.Context, domain.CodeRequest) (string, error) {
	return "", domain.ErrProviderUnavailable
}
