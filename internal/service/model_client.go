package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"reportai/internal/config"
	"reportai/internal/model"
)

// InvokeRequest is one model call. CachedBlocks are long-form reference
// blocks marked for provider-side prompt caching.
type InvokeRequest struct {
	Model        string
	SystemPrompt string
	CachedBlocks []string
	Prompt       string
	MaxTokens    int
	Temperature  float64
}

// ModelClient abstracts the LLM provider so the orchestrator can be tested
// without network calls
type ModelClient interface {
	Invoke(ctx context.Context, req InvokeRequest) (*model.ModelResult, error)
}

// InvokeErrorKind classifies a model call failure
type InvokeErrorKind string

const (
	InvokeErrAuth      InvokeErrorKind = "auth"
	InvokeErrRateLimit InvokeErrorKind = "rate_limit"
	InvokeErrMalformed InvokeErrorKind = "malformed"
	InvokeErrTransient InvokeErrorKind = "transient"
)

// InvokeError wraps a provider failure with its classification. The
// orchestrator never retries; callers decide what Retryable means to them.
type InvokeError struct {
	Kind   InvokeErrorKind
	Status int
	Err    error
}

func (e *InvokeError) Error() string {
	return fmt.Sprintf("model invoke failed (%s, status %d): %v", e.Kind, e.Status, e.Err)
}

func (e *InvokeError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a later identical call could succeed
func (e *InvokeError) Retryable() bool {
	return e.Kind == InvokeErrRateLimit || e.Kind == InvokeErrTransient
}

// AnthropicClient is the production ModelClient
type AnthropicClient struct {
	client anthropic.Client
	cfg    *config.AIConfig
}

// NewAnthropicClient creates a new Anthropic-backed model client
func NewAnthropicClient(cfg *config.AIConfig) *AnthropicClient {
	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		cfg:    cfg,
	}
}

func (c *AnthropicClient) Invoke(ctx context.Context, req InvokeRequest) (*model.ModelResult, error) {
	timeout := time.Duration(c.cfg.TimeoutMS) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.cfg.MaxTokens
	}

	system := []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	for _, block := range req.CachedBlocks {
		system = append(system, anthropic.TextBlockParam{
			Text:         block,
			CacheControl: anthropic.NewCacheControlEphemeralParam(),
		})
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(maxTokens),
		System:    system,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	} else if c.cfg.Temperature > 0 {
		params.Temperature = anthropic.Float(c.cfg.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classifyInvokeError(err)
	}

	var text string
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			text += b.Text
		}
	}

	return &model.ModelResult{
		Text: text,
		Usage: model.ModelUsage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}

// classifyInvokeError maps provider failures onto InvokeError kinds.
// Unknown statuses and network failures count as transient.
func classifyInvokeError(err error) *InvokeError {
	var apierr *anthropic.Error
	if !errors.As(err, &apierr) {
		return &InvokeError{Kind: InvokeErrTransient, Err: err}
	}

	kind := InvokeErrTransient
	switch apierr.StatusCode {
	case 401, 403:
		kind = InvokeErrAuth
	case 429, 529:
		kind = InvokeErrRateLimit
	case 400, 404, 413, 422:
		kind = InvokeErrMalformed
	}
	return &InvokeError{Kind: kind, Status: apierr.StatusCode, Err: err}
}

// MockModelClient returns canned analyses when no API key is configured,
// so the full report flow works in local development
type MockModelClient struct{}

// NewMockModelClient creates the development stand-in
func NewMockModelClient() *MockModelClient {
	log.Println("[ModelClient] No API key configured, using mock responses")
	return &MockModelClient{}
}

func (c *MockModelClient) Invoke(_ context.Context, req InvokeRequest) (*model.ModelResult, error) {
	text := fmt.Sprintf("(mock analysis, model %s)\n\nThe campaign data was reviewed against the provided reference material. Configure ANTHROPIC_API_KEY to generate real reports.", req.Model)
	return &model.ModelResult{
		Text: text,
		Usage: model.ModelUsage{
			InputTokens:  estimateTokens(req.SystemPrompt + req.Prompt),
			OutputTokens: estimateTokens(text),
		},
	}, nil
}
