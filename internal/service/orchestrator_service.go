package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"reportai/internal/config"
	"reportai/internal/model"
)

// ErrNoExperts means the multi-agent path was requested but no catalog
// expert matched; callers may fall back to a single call.
var ErrNoExperts = errors.New("no experts selected for multi-agent run")

// AnalysisInput is the assembled prompt material for one report run
type AnalysisInput struct {
	SystemPrompt string
	CachedBlocks []string
	Prompt       string
}

// MultiAgentResult carries the synthesized report plus the per-expert
// outputs that fed it
type MultiAgentResult struct {
	Content       string
	ExpertOutputs []model.ExpertOutput
	Usage         model.ModelUsage
}

// OrchestratorService runs either a single model call or the parallel
// expert pipeline with a final synthesis pass
type OrchestratorService struct {
	client ModelClient
	cfg    *config.AIConfig
}

// NewOrchestratorService creates a new orchestrator
func NewOrchestratorService(client ModelClient, cfg *config.AIConfig) *OrchestratorService {
	return &OrchestratorService{client: client, cfg: cfg}
}

// RunSingleCall sends the whole analysis to one model
func (s *OrchestratorService) RunSingleCall(ctx context.Context, input AnalysisInput) (*model.ModelResult, error) {
	return s.client.Invoke(ctx, InvokeRequest{
		Model:        s.cfg.Models.SingleCall,
		SystemPrompt: input.SystemPrompt,
		CachedBlocks: input.CachedBlocks,
		Prompt:       input.Prompt,
	})
}

// RunMultiAgent fans the analysis out to the named experts in parallel,
// waits for all of them, then runs one synthesis call over the combined
// outputs. Any expert failure aborts the whole run; synthesis never sees
// a partial set. There are no retries here.
func (s *OrchestratorService) RunMultiAgent(ctx context.Context, expertSlugs []string, input AnalysisInput) (*MultiAgentResult, error) {
	experts := make([]*model.ExpertDefinition, 0, len(expertSlugs))
	for _, slug := range expertSlugs {
		expert := ExpertBySlug(slug)
		if expert == nil {
			return nil, fmt.Errorf("unknown expert slug %q", slug)
		}
		experts = append(experts, expert)
	}
	if len(experts) == 0 {
		return nil, ErrNoExperts
	}

	log.Printf("[Orchestrator] Running %d experts in parallel", len(experts))

	outputs := make([]model.ExpertOutput, len(experts))
	g, gctx := errgroup.WithContext(ctx)
	for i, expert := range experts {
		i, expert := i, expert
		g.Go(func() error {
			result, err := s.client.Invoke(gctx, InvokeRequest{
				Model:        s.cfg.Models.Expert,
				SystemPrompt: input.SystemPrompt + "\n\n" + expert.SpecializationPrompt,
				CachedBlocks: input.CachedBlocks,
				Prompt:       input.Prompt,
			})
			if err != nil {
				return fmt.Errorf("expert %s: %w", expert.Slug, err)
			}
			outputs[i] = model.ExpertOutput{
				ExpertSlug: expert.Slug,
				ExpertName: expert.Name,
				Text:       result.Text,
				Usage:      result.Usage,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	synthesis, err := s.client.Invoke(ctx, InvokeRequest{
		Model:        s.cfg.Models.Synthesis,
		SystemPrompt: input.SystemPrompt,
		CachedBlocks: input.CachedBlocks,
		Prompt:       buildSynthesisPrompt(outputs, input.Prompt),
	})
	if err != nil {
		return nil, fmt.Errorf("synthesis: %w", err)
	}

	usage := synthesis.Usage
	for _, out := range outputs {
		usage.InputTokens += out.Usage.InputTokens
		usage.OutputTokens += out.Usage.OutputTokens
	}

	return &MultiAgentResult{
		Content:       synthesis.Text,
		ExpertOutputs: outputs,
		Usage:         usage,
	}, nil
}

// buildSynthesisPrompt frames the expert outputs for the synthesis pass.
// Outputs appear in expert-selection order so reruns produce the same
// framing.
func buildSynthesisPrompt(outputs []model.ExpertOutput, campaignBody string) string {
	var b strings.Builder
	b.WriteString("You are the lead analyst. Merge the specialist analyses below into one coherent campaign report.\n")
	b.WriteString("Resolve conflicts explicitly, deduplicate overlapping findings, and rank recommendations by expected impact.\n")
	b.WriteString("Do not introduce findings absent from the specialist analyses.\n\n")

	for _, out := range outputs {
		fmt.Fprintf(&b, "<specialist_analysis expert=%q>\n%s\n</specialist_analysis>\n\n", out.ExpertName, out.Text)
	}

	b.WriteString("<campaign_context>\n")
	b.WriteString(campaignBody)
	b.WriteString("\n</campaign_context>")
	return b.String()
}
