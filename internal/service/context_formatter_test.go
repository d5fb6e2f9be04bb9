package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportai/internal/model"
)

func TestFormatCampaignData(t *testing.T) {
	campaign := model.CampaignInfo{
		Name:        "Spring Sale",
		OrderID:     "ORD-100",
		Advertiser:  "Acme Motors",
		BudgetTotal: 25000,
	}

	out := FormatCampaignData(campaign, nil, nil)
	assert.Contains(t, out, "Campaign: Spring Sale")
	assert.Contains(t, out, "Order ID: ORD-100")
	assert.Contains(t, out, "Advertiser: Acme Motors")
	assert.Contains(t, out, "$25000.00")
	assert.True(t, strings.HasPrefix(out, "<campaign_data>"))
	assert.True(t, strings.HasSuffix(out, "</campaign_data>"))
}

func TestFormatCampaignDataEmpty(t *testing.T) {
	assert.Equal(t, "", FormatCampaignData(model.CampaignInfo{}, nil, nil))
}

func TestFormatCampaignDataTruncatesLargeTables(t *testing.T) {
	rows := make([][]string, 80)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("2026-01-%02d", i%28+1), "1000", "12"}
	}
	perf := &model.FileDataset{
		Name:    "performance.csv",
		Columns: []string{"date", "impressions", "clicks"},
		Rows:    rows,
	}

	out := FormatCampaignData(model.CampaignInfo{Name: "X", OrderID: "O"}, perf, nil)
	assert.Contains(t, out, "date | impressions | clicks")
	assert.Contains(t, out, "(30 additional rows omitted)")
	assert.Equal(t, maxTableRows, strings.Count(out, "1000"))
}

func TestFormatCampaignDataDatasetsWithoutIdentity(t *testing.T) {
	pacing := &model.FileDataset{
		Name:    "pacing.csv",
		Columns: []string{"week", "spend"},
		Rows:    [][]string{{"1", "500"}},
	}

	out := FormatCampaignData(model.CampaignInfo{}, nil, pacing)
	assert.Contains(t, out, "<pacing_data")
	assert.Contains(t, out, "1 | 500")
}

func TestFormatTacticGuidanceConfidenceNote(t *testing.T) {
	tactics := []model.DetectedTactic{
		{Platform: "facebook", Product: "paid_social", TacticType: "link_click", DataValue: "fb_lc", MatchConfidence: 0.95},
		{Platform: "google_ads", TacticType: "search", MatchConfidence: 0.62},
	}

	out := FormatTacticGuidance(tactics)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.NotContains(t, lines[1], "detection confidence")
	assert.Contains(t, lines[2], "[detection confidence 0.62]")
	assert.Contains(t, lines[1], "facebook / paid_social: link_click (fb_lc)")
}

func TestFormatTacticGuidanceBoundary(t *testing.T) {
	// Exactly at the threshold gets no note
	out := FormatTacticGuidance([]model.DetectedTactic{
		{Platform: "tiktok", TacticType: "social", MatchConfidence: 0.9},
	})
	assert.NotContains(t, out, "detection confidence")
}

func TestFormatPlatformQuirksFiltersByImpact(t *testing.T) {
	platforms := []model.PlatformKnowledge{
		{
			Code: "facebook",
			Quirks: []model.Quirk{
				{Text: "Q4 CPM spike", Impact: model.ImpactHigh, Recommendation: "Adjust baselines"},
				{Text: "CTR decay at high frequency", Impact: model.ImpactMedium},
			},
		},
		{
			Code: "bing",
			Quirks: []model.Quirk{
				{Text: "Lower volume", Impact: model.ImpactLow},
			},
		},
	}

	out := FormatPlatformQuirks(platforms, model.ImpactHigh)
	assert.Contains(t, out, "Q4 CPM spike")
	assert.Contains(t, out, "Recommendation: Adjust baselines")
	assert.NotContains(t, out, "CTR decay")
	assert.NotContains(t, out, "bing")

	assert.Equal(t, "", FormatPlatformQuirks(nil, model.ImpactHigh))
}

func TestFormatIndustryInsightsRankedAndCapped(t *testing.T) {
	industry := &model.IndustryKnowledge{
		Code: "ecommerce",
		Insights: []model.Insight{
			{Text: "third", Priority: 3},
			{Text: "first", Priority: 9},
			{Text: "seventh", Priority: 1},
			{Text: "second", Priority: 7},
			{Text: "fourth", Priority: 3},
			{Text: "fifth", Priority: 2},
			{Text: "sixth", Priority: 2},
		},
	}

	out := FormatIndustryInsights(industry)
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "fifth")
	assert.NotContains(t, out, "seventh")
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))
	assert.Less(t, strings.Index(out, "second"), strings.Index(out, "third"))

	// Equal priorities keep input order
	assert.Less(t, strings.Index(out, "third"), strings.Index(out, "fourth"))
}

func TestFormatBuyerNotesTopTwoPerPlatform(t *testing.T) {
	platforms := []model.PlatformKnowledge{
		{
			Code: "facebook",
			BuyerNotes: []model.BuyerNote{
				{Text: "low note", Priority: 2},
				{Text: "top note", Priority: 9},
				{Text: "mid note", Priority: 5},
			},
		},
	}

	out := FormatBuyerNotes(platforms)
	assert.Contains(t, out, "top note")
	assert.Contains(t, out, "mid note")
	assert.NotContains(t, out, "low note")
	assert.Less(t, strings.Index(out, "top note"), strings.Index(out, "mid note"))
}

func TestFormatPlatformReferenceIsCampaignIndependent(t *testing.T) {
	p := model.PlatformKnowledge{
		Code:        "programmatic",
		Name:        "Programmatic Display",
		Description: "DSP-bought display inventory",
		Quirks: []model.Quirk{
			{Text: "Low viewability means supply issues", Impact: model.ImpactHigh},
		},
		Thresholds: []model.Threshold{
			{Metric: "viewability", Type: model.ThresholdMinimum, Value: 0.5},
		},
	}

	out := FormatPlatformReference(p)
	assert.Contains(t, out, `<platform_reference code="programmatic"`)
	assert.Contains(t, out, "[high] Low viewability")
	assert.Contains(t, out, "viewability (minimum): 0.5")
	assert.NotContains(t, out, "campaign")
}

func TestFormatCompanyInfo(t *testing.T) {
	out := FormatCompanyInfo(model.CompanyInfo{
		Name:               "Metro Media",
		Industry:           "automotive",
		CustomInstructions: "Always reference dealership footfall.",
	})
	assert.Contains(t, out, "Company: Metro Media")
	assert.Contains(t, out, "<custom_instructions>")
	assert.Contains(t, out, "dealership footfall")

	assert.Equal(t, "", FormatCompanyInfo(model.CompanyInfo{}))
}
