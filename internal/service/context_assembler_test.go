package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportai/internal/model"
)

type fakePromptCache struct {
	docs map[string]*model.SystemPromptDocument
	err  error
}

func (f *fakePromptCache) GetCurrent(_ context.Context, slug string) (*model.SystemPromptDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs[slug], nil
}

func (f *fakePromptCache) Publish(_ context.Context, slug, name, content string) (*model.SystemPromptDocument, error) {
	if f.docs == nil {
		f.docs = make(map[string]*model.SystemPromptDocument)
	}
	version := 1
	if existing := f.docs[slug]; existing != nil {
		version = existing.Version + 1
	}
	doc := &model.SystemPromptDocument{Slug: slug, Name: name, Content: content, Version: version}
	f.docs[slug] = doc
	return doc, nil
}

type fakeKnowledgeCache struct {
	platforms  map[string]*model.PlatformKnowledge
	industries map[string]*model.IndustryKnowledge
	err        error
}

func (f *fakeKnowledgeCache) GetPlatform(_ context.Context, code string) (*model.PlatformKnowledge, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.platforms[code], nil
}

func (f *fakeKnowledgeCache) GetPlatforms(_ context.Context, codes []string) ([]model.PlatformKnowledge, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.PlatformKnowledge
	for _, code := range codes {
		if p := f.platforms[code]; p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeKnowledgeCache) SetPlatform(_ context.Context, pk *model.PlatformKnowledge) error {
	if f.platforms == nil {
		f.platforms = make(map[string]*model.PlatformKnowledge)
	}
	f.platforms[pk.Code] = pk
	return nil
}

func (f *fakeKnowledgeCache) SetPlatforms(ctx context.Context, pks []model.PlatformKnowledge) error {
	for i := range pks {
		if err := f.SetPlatform(ctx, &pks[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeKnowledgeCache) GetIndustry(_ context.Context, code string) (*model.IndustryKnowledge, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.industries[code], nil
}

func (f *fakeKnowledgeCache) SetIndustry(_ context.Context, ik *model.IndustryKnowledge) error {
	if f.industries == nil {
		f.industries = make(map[string]*model.IndustryKnowledge)
	}
	f.industries[ik.Code] = ik
	return nil
}

func newTestAssembler() (*ContextAssembler, *fakePromptCache, *fakeKnowledgeCache) {
	prompts := &fakePromptCache{docs: map[string]*model.SystemPromptDocument{
		"campaign-report": {Slug: "campaign-report", Content: "analyst persona", Version: 3},
	}}
	knowledge := &fakeKnowledgeCache{
		platforms: map[string]*model.PlatformKnowledge{
			"facebook": {
				Code: "facebook",
				Name: "Facebook",
				Quirks: []model.Quirk{
					{Text: "Q4 CPM spike", Impact: model.ImpactHigh},
				},
				Kpis:       []model.Kpi{{Name: "CTR", TypicalRange: "0.8-1.2%"}},
				BuyerNotes: []model.BuyerNote{{Text: "check placements", Priority: 5}},
			},
		},
		industries: map[string]*model.IndustryKnowledge{
			"automotive": {
				Code:       "automotive",
				Name:       "Automotive",
				Benchmarks: []model.Benchmark{{Metric: "CTR", Value: 0.6, Unit: "%"}},
				Insights:   []model.Insight{{Text: "weekend lift", Priority: 7}},
			},
		},
	}
	return NewContextAssembler(prompts, knowledge), prompts, knowledge
}

func baseOptions() AssembleOptions {
	return AssembleOptions{
		Platforms: []string{"facebook"},
		Industry:  "automotive",
		Tactics: []model.DetectedTactic{
			{Platform: "facebook", TacticType: "link_click", MatchConfidence: 0.95},
		},
		Campaign: model.CampaignInfo{Name: "Spring Sale", OrderID: "ORD-1"},
		Company:  model.CompanyInfo{ID: "c1", Name: "Metro Media", Industry: "automotive"},
	}
}

func TestAssembleFetchesAllSources(t *testing.T) {
	assembler, _, _ := newTestAssembler()

	actx, err := assembler.Assemble(context.Background(), baseOptions())
	require.NoError(t, err)

	assert.Equal(t, "analyst persona", actx.SystemPrompt)
	assert.Equal(t, 3, actx.PromptVersion)
	require.Len(t, actx.Platforms, 1)
	assert.Equal(t, "facebook", actx.Platforms[0].Code)
	require.NotNil(t, actx.Industry)
	assert.Equal(t, "automotive", actx.Industry.Code)
	assert.Contains(t, actx.CampaignBlock, "Spring Sale")
	assert.Contains(t, actx.CompanyBlock, "Metro Media")
}

func TestAssembleFallsBackToDefaultPrompt(t *testing.T) {
	assembler, prompts, _ := newTestAssembler()
	prompts.docs = nil

	actx, err := assembler.Assemble(context.Background(), baseOptions())
	require.NoError(t, err)

	assert.Equal(t, defaultSystemPrompt, actx.SystemPrompt)
	assert.Equal(t, 0, actx.PromptVersion)
	assert.Equal(t, DefaultPromptSlug, actx.PromptSlug)
}

func TestAssembleMissingKnowledgeIsNotAnError(t *testing.T) {
	assembler, _, _ := newTestAssembler()
	opts := baseOptions()
	opts.Platforms = []string{"unknown_platform"}
	opts.Industry = "unknown_industry"

	actx, err := assembler.Assemble(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, actx.Platforms)
	assert.Nil(t, actx.Industry)
}

func TestAssembleValidation(t *testing.T) {
	assembler, _, _ := newTestAssembler()

	opts := baseOptions()
	opts.Campaign.OrderID = ""
	_, err := assembler.Assemble(context.Background(), opts)
	assert.ErrorIs(t, err, ErrInvalidInput)

	opts = baseOptions()
	opts.Campaign.Name = ""
	_, err = assembler.Assemble(context.Background(), opts)
	assert.ErrorIs(t, err, ErrInvalidInput)

	opts = baseOptions()
	opts.Tactics[0].MatchConfidence = 1.4
	_, err = assembler.Assemble(context.Background(), opts)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAssemblePropagatesStoreErrors(t *testing.T) {
	assembler, _, knowledge := newTestAssembler()
	knowledge.err = errors.New("redis down")

	_, err := assembler.Assemble(context.Background(), baseOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestBuildPromptZeroBudgetKeepsRequiredOnly(t *testing.T) {
	assembler, _, _ := newTestAssembler()
	actx, err := assembler.Assemble(context.Background(), baseOptions())
	require.NoError(t, err)

	prompt := assembler.BuildPrompt(actx, 0)

	assert.Contains(t, prompt, "Metro Media")
	assert.Contains(t, prompt, "Spring Sale")
	assert.Contains(t, prompt, "<detected_tactics>")
	assert.Contains(t, prompt, "Q4 CPM spike")
	assert.NotContains(t, prompt, "<industry_benchmarks")
	assert.NotContains(t, prompt, "<platform_kpis")
	assert.NotContains(t, prompt, "<industry_insights")
	assert.NotContains(t, prompt, "<buyer_notes")
}

func TestBuildPromptLargeBudgetIncludesEverything(t *testing.T) {
	assembler, _, _ := newTestAssembler()
	actx, err := assembler.Assemble(context.Background(), baseOptions())
	require.NoError(t, err)

	prompt := assembler.BuildPrompt(actx, 100000)

	assert.Contains(t, prompt, "<industry_benchmarks")
	assert.Contains(t, prompt, "<platform_kpis")
	assert.Contains(t, prompt, "<industry_insights")
	assert.Contains(t, prompt, "<buyer_notes")

	// Fixed assembly order
	assert.Less(t, strings.Index(prompt, "<company_context>"), strings.Index(prompt, "<campaign_data>"))
	assert.Less(t, strings.Index(prompt, "<campaign_data>"), strings.Index(prompt, "<detected_tactics>"))
	assert.Less(t, strings.Index(prompt, "<detected_tactics>"), strings.Index(prompt, "<platform_quirks"))
	assert.Less(t, strings.Index(prompt, "<industry_benchmarks"), strings.Index(prompt, "<platform_kpis"))
	assert.Less(t, strings.Index(prompt, "<platform_kpis"), strings.Index(prompt, "<industry_insights"))
	assert.Less(t, strings.Index(prompt, "<industry_insights"), strings.Index(prompt, "<buyer_notes"))
}

func TestBuildPromptSkipsLaterOversizedOptional(t *testing.T) {
	assembler, _, knowledge := newTestAssembler()

	// Make KPIs huge so they cannot fit, while benchmarks still can
	huge := strings.Repeat("x", 4000)
	knowledge.platforms["facebook"].Kpis = []model.Kpi{{Name: huge}}

	actx, err := assembler.Assemble(context.Background(), baseOptions())
	require.NoError(t, err)

	// Budget covers the required sections plus the cheap optional ones,
	// but not the oversized KPI block
	budget := estimateTokens(actx.CompanyBlock) +
		estimateTokens(actx.CampaignBlock) +
		estimateTokens(FormatTacticGuidance(actx.Tactics)) +
		estimateTokens(FormatPlatformQuirks(actx.Platforms, model.ImpactHigh)) +
		estimateTokens(FormatIndustryBenchmarks(actx.Industry)) +
		estimateTokens(FormatIndustryInsights(actx.Industry)) +
		estimateTokens(FormatBuyerNotes(actx.Platforms))
	prompt := assembler.BuildPrompt(actx, budget)

	assert.Contains(t, prompt, "<industry_benchmarks")
	assert.NotContains(t, prompt, huge)
	// Later cheaper sections still fit after the oversized one is skipped
	assert.Contains(t, prompt, "<industry_insights")
	assert.Contains(t, prompt, "<buyer_notes")
}

func TestCacheableBlocks(t *testing.T) {
	assembler, _, _ := newTestAssembler()
	actx, err := assembler.Assemble(context.Background(), baseOptions())
	require.NoError(t, err)

	blocks := assembler.CacheableBlocks(actx)
	require.Len(t, blocks, 2)
	assert.Contains(t, blocks[0], "<platform_reference")
	assert.Contains(t, blocks[1], "<industry_reference")
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, estimateTokens(""))
	assert.Equal(t, 1, estimateTokens("abc"))
	assert.Equal(t, 1, estimateTokens("abcd"))
	assert.Equal(t, 2, estimateTokens("abcde"))
}
