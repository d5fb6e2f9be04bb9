package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"reportai/internal/cache"
	"reportai/internal/model"
)

// DefaultPromptSlug is used when the caller does not name a prompt document
const DefaultPromptSlug = "campaign-report"

// defaultSystemPrompt is the fallback persona when no prompt document is
// published for the requested slug. Reports must still generate.
const defaultSystemPrompt = `You are an expert digital marketing analyst specializing in multi-channel campaign optimization.

For each tactic analyzed:
1. Compare metrics to provided industry benchmarks
2. Identify specific optimization opportunities with quantified impact
3. Flag warning indicators based on platform thresholds
4. Provide prioritized recommendations with expected outcomes

Ground ALL insights in provided data. Never invent metrics. Never combine metrics across different tactics. Reference specific benchmarks when making comparisons. Each recommendation must specify expected impact.`

// ErrInvalidInput marks a structurally invalid assembly request,
// rejected before any reference fetch.
var ErrInvalidInput = errors.New("invalid assembly input")

// AssembleOptions carries everything needed to build context for one campaign
type AssembleOptions struct {
	PromptSlug  string
	Platforms   []string
	Industry    string
	Tactics     []model.DetectedTactic
	Campaign    model.CampaignInfo
	Company     model.CompanyInfo
	Performance *model.FileDataset
	Pacing      *model.FileDataset
}

// AssembledContext is the fetched and pre-rendered context for one campaign
type AssembledContext struct {
	SystemPrompt  string
	PromptSlug    string
	PromptVersion int // 0 when the fallback persona was used
	Platforms     []model.PlatformKnowledge
	Industry      *model.IndustryKnowledge
	Tactics       []model.DetectedTactic
	CampaignBlock string
	CompanyBlock  string
}

// PromptSection is a transient piece of the final prompt. Lower priority
// values are packed first; required sections are always included.
type PromptSection struct {
	Content  string
	Priority int
	Required bool
}

// ContextAssembler fetches reference knowledge and packs prompt sections
// under a token budget
type ContextAssembler struct {
	prompts   cache.PromptCache
	knowledge cache.KnowledgeCache
}

// NewContextAssembler creates a new context assembler
func NewContextAssembler(prompts cache.PromptCache, knowledge cache.KnowledgeCache) *ContextAssembler {
	return &ContextAssembler{
		prompts:   prompts,
		knowledge: knowledge,
	}
}

// Assemble validates the request, fetches the prompt document, platform
// knowledge, and industry knowledge concurrently, and renders the
// campaign/company blocks. Missing reference data is not an error; the
// context simply carries less knowledge.
func (a *ContextAssembler) Assemble(ctx context.Context, opts AssembleOptions) (*AssembledContext, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	slug := opts.PromptSlug
	if slug == "" {
		slug = DefaultPromptSlug
	}

	var (
		doc       *model.SystemPromptDocument
		platforms []model.PlatformKnowledge
		industry  *model.IndustryKnowledge
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		doc, err = a.prompts.GetCurrent(gctx, slug)
		return err
	})
	g.Go(func() error {
		var err error
		platforms, err = a.knowledge.GetPlatforms(gctx, opts.Platforms)
		return err
	})
	if opts.Industry != "" {
		g.Go(func() error {
			var err error
			industry, err = a.knowledge.GetIndustry(gctx, opts.Industry)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assemble context: %w", err)
	}

	actx := &AssembledContext{
		SystemPrompt:  defaultSystemPrompt,
		PromptSlug:    slug,
		Platforms:     platforms,
		Industry:      industry,
		Tactics:       opts.Tactics,
		CampaignBlock: FormatCampaignData(opts.Campaign, opts.Performance, opts.Pacing),
		CompanyBlock:  FormatCompanyInfo(opts.Company),
	}
	if doc != nil {
		actx.SystemPrompt = doc.Content
		actx.PromptVersion = doc.Version
	}
	return actx, nil
}

func validateOptions(opts AssembleOptions) error {
	if opts.Campaign.OrderID == "" {
		return fmt.Errorf("%w: campaign order id is required", ErrInvalidInput)
	}
	if opts.Campaign.Name == "" {
		return fmt.Errorf("%w: campaign name is required", ErrInvalidInput)
	}
	for _, t := range opts.Tactics {
		if t.MatchConfidence < 0 || t.MatchConfidence > 1 {
			return fmt.Errorf("%w: tactic %q confidence %v out of range",
				ErrInvalidInput, t.DataValue, t.MatchConfidence)
		}
	}
	return nil
}

// BuildPrompt packs sections into the final prompt body. Sections are
// walked in ascending priority (insertion order breaks ties); a section is
// included if it is required, or if adding it keeps the running estimate
// within tokenBudget. Required sections go in even when they alone exceed
// the budget: the model cannot write a useful report without them.
//
// The packing is deliberately greedy in fixed priority order, not a
// best-fit: changing the order would change report content.
func (a *ContextAssembler) BuildPrompt(actx *AssembledContext, tokenBudget int) string {
	sections := a.sections(actx)

	var included []string
	total := 0
	for _, s := range sections {
		cost := estimateTokens(s.Content)
		if s.Required {
			included = append(included, s.Content)
			total += cost
			continue
		}
		if total+cost > tokenBudget {
			continue
		}
		included = append(included, s.Content)
		total += cost
	}

	return strings.Join(included, "\n\n")
}

// sections builds the ordered section list. Priorities are fixed:
// company/campaign blocks at 0, then tactic guidance, high-impact quirks,
// benchmarks, KPIs, insights, buyer notes. Empty renderings contribute
// no section.
func (a *ContextAssembler) sections(actx *AssembledContext) []PromptSection {
	ordered := []PromptSection{
		{Content: actx.CompanyBlock, Priority: 0, Required: true},
		{Content: actx.CampaignBlock, Priority: 0, Required: true},
		{Content: FormatTacticGuidance(actx.Tactics), Priority: 1, Required: true},
		{Content: FormatPlatformQuirks(actx.Platforms, model.ImpactHigh), Priority: 2, Required: true},
		{Content: FormatIndustryBenchmarks(actx.Industry), Priority: 3, Required: false},
		{Content: FormatPlatformKpis(actx.Platforms), Priority: 4, Required: false},
		{Content: FormatIndustryInsights(actx.Industry), Priority: 5, Required: false},
		{Content: FormatBuyerNotes(actx.Platforms), Priority: 6, Required: false},
	}

	sections := make([]PromptSection, 0, len(ordered))
	for _, s := range ordered {
		if s.Content == "" {
			continue
		}
		sections = append(sections, s)
	}
	return sections
}

// CacheableBlocks returns the long-form platform and industry reference
// renderings. These are stable across campaigns sharing the same
// platform/industry and are sent as provider-cacheable system blocks.
func (a *ContextAssembler) CacheableBlocks(actx *AssembledContext) []string {
	var blocks []string
	for _, p := range actx.Platforms {
		blocks = append(blocks, FormatPlatformReference(p))
	}
	if actx.Industry != nil {
		blocks = append(blocks, FormatIndustryReference(*actx.Industry))
	}
	return blocks
}

// estimateTokens is the fixed 4-characters-per-token heuristic, rounded up
func estimateTokens(s string) int {
	return (len(s) + 3) / 4
}
