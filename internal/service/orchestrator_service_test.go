package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportai/internal/config"
	"reportai/internal/model"
)

// recordingClient captures every invoke and answers from a script keyed by
// a substring of the system prompt
type recordingClient struct {
	mu       sync.Mutex
	calls    []InvokeRequest
	failWhen func(req InvokeRequest) error
}

func (c *recordingClient) Invoke(_ context.Context, req InvokeRequest) (*model.ModelResult, error) {
	c.mu.Lock()
	c.calls = append(c.calls, req)
	c.mu.Unlock()

	if c.failWhen != nil {
		if err := c.failWhen(req); err != nil {
			return nil, err
		}
	}
	return &model.ModelResult{
		Text:  "analysis for " + req.Model,
		Usage: model.ModelUsage{InputTokens: 100, OutputTokens: 50},
	}, nil
}

func (c *recordingClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *recordingClient) callsForModel(modelName string) []InvokeRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []InvokeRequest
	for _, call := range c.calls {
		if call.Model == modelName {
			out = append(out, call)
		}
	}
	return out
}

func testAIConfig() *config.AIConfig {
	return &config.AIConfig{
		Models: config.AnthropicModels{
			Expert:     "expert-model",
			Synthesis:  "synthesis-model",
			SingleCall: "single-model",
		},
		MaxTokens:   1000,
		TokenBudget: 8000,
	}
}

func testInput() AnalysisInput {
	return AnalysisInput{
		SystemPrompt: "persona",
		CachedBlocks: []string{"<platform_reference>facebook</platform_reference>"},
		Prompt:       "<campaign_data>Spring Sale</campaign_data>",
	}
}

func TestRunSingleCall(t *testing.T) {
	client := &recordingClient{}
	svc := NewOrchestratorService(client, testAIConfig())

	result, err := svc.RunSingleCall(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, "analysis for single-model", result.Text)
	require.Equal(t, 1, client.callCount())
	assert.Equal(t, "single-model", client.calls[0].Model)
	assert.Equal(t, testInput().CachedBlocks, client.calls[0].CachedBlocks)
}

func TestRunMultiAgentHappyPath(t *testing.T) {
	client := &recordingClient{}
	svc := NewOrchestratorService(client, testAIConfig())

	result, err := svc.RunMultiAgent(context.Background(), []string{"paid-social", "search"}, testInput())
	require.NoError(t, err)

	// Two expert calls plus one synthesis call
	assert.Equal(t, 3, client.callCount())
	assert.Len(t, client.callsForModel("expert-model"), 2)
	require.Len(t, client.callsForModel("synthesis-model"), 1)

	// Experts get the specialization appended to the shared persona
	for _, call := range client.callsForModel("expert-model") {
		assert.True(t, strings.HasPrefix(call.SystemPrompt, "persona\n\n"))
	}

	// Synthesis sees every expert output, in selection order
	synthesis := client.callsForModel("synthesis-model")[0]
	assert.Contains(t, synthesis.Prompt, `expert="Paid Social Specialist"`)
	assert.Contains(t, synthesis.Prompt, `expert="Search Specialist"`)
	assert.Less(t,
		strings.Index(synthesis.Prompt, "Paid Social Specialist"),
		strings.Index(synthesis.Prompt, "Search Specialist"))
	assert.Contains(t, synthesis.Prompt, "<campaign_context>")

	require.Len(t, result.ExpertOutputs, 2)
	assert.Equal(t, "paid-social", result.ExpertOutputs[0].ExpertSlug)
	assert.Equal(t, "search", result.ExpertOutputs[1].ExpertSlug)

	// Usage aggregates experts plus synthesis
	assert.Equal(t, 300, result.Usage.InputTokens)
	assert.Equal(t, 150, result.Usage.OutputTokens)
}

func TestRunMultiAgentNoExperts(t *testing.T) {
	client := &recordingClient{}
	svc := NewOrchestratorService(client, testAIConfig())

	_, err := svc.RunMultiAgent(context.Background(), nil, testInput())
	assert.ErrorIs(t, err, ErrNoExperts)
	assert.Equal(t, 0, client.callCount())
}

func TestRunMultiAgentUnknownSlug(t *testing.T) {
	client := &recordingClient{}
	svc := NewOrchestratorService(client, testAIConfig())

	_, err := svc.RunMultiAgent(context.Background(), []string{"paid-social", "astrology"}, testInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "astrology")
	assert.Equal(t, 0, client.callCount())
}

func TestRunMultiAgentExpertFailureAbortsWithoutSynthesis(t *testing.T) {
	boom := &InvokeError{Kind: InvokeErrRateLimit, Status: 429, Err: errors.New("overloaded")}
	client := &recordingClient{
		failWhen: func(req InvokeRequest) error {
			if strings.Contains(req.SystemPrompt, "search marketing specialist") {
				return boom
			}
			return nil
		},
	}
	svc := NewOrchestratorService(client, testAIConfig())

	_, err := svc.RunMultiAgent(context.Background(), []string{"paid-social", "search"}, testInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expert search")

	var invokeErr *InvokeError
	require.ErrorAs(t, err, &invokeErr)
	assert.Equal(t, InvokeErrRateLimit, invokeErr.Kind)

	// Synthesis must never run on a partial expert set
	assert.Empty(t, client.callsForModel("synthesis-model"))
}

func TestRunMultiAgentSynthesisFailure(t *testing.T) {
	client := &recordingClient{
		failWhen: func(req InvokeRequest) error {
			if req.Model == "synthesis-model" {
				return &InvokeError{Kind: InvokeErrTransient, Status: 500, Err: errors.New("upstream")}
			}
			return nil
		},
	}
	svc := NewOrchestratorService(client, testAIConfig())

	_, err := svc.RunMultiAgent(context.Background(), []string{"paid-social"}, testInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "synthesis")
}
