package service

import (
	"strings"

	"reportai/internal/model"
)

// complexTacticMarkers flag tactic types that need specialist treatment.
// Matching is case-insensitive substring.
var complexTacticMarkers = []string{"retargeting", "dynamic", "programmatic", "ctv", "ott"}

// ExpertCatalog is the fixed roster of specialist analysts. Order matters:
// selected experts always come out in catalog order regardless of which
// tactic triggered them.
var ExpertCatalog = []model.ExpertDefinition{
	{
		Name:             "Paid Social Specialist",
		Slug:             "paid-social",
		Platforms:        []string{"facebook", "instagram", "meta", "tiktok", "linkedin", "snapchat", "pinterest"},
		TacticSubstrings: []string{"social"},
		SpecializationPrompt: `You are a paid social specialist with deep expertise in Meta, TikTok, LinkedIn, Snapchat, and Pinterest advertising.

Focus areas:
- Creative fatigue detection via frequency and CTR decay
- Audience saturation and overlap analysis
- Platform-specific engagement benchmarks
- Placement-level performance differences (feed, stories, reels)

Analyze only the social tactics in the provided data. Quantify every recommendation.`,
	},
	{
		Name:             "Search Specialist",
		Slug:             "search",
		Platforms:        []string{"google_ads", "google", "bing", "microsoft_ads"},
		TacticSubstrings: []string{"search", "sem", "shopping", "performance_max", "pmax"},
		SpecializationPrompt: `You are a search marketing specialist with deep expertise in Google Ads and Microsoft Advertising.

Focus areas:
- Quality score drivers and CPC efficiency
- Search impression share and lost-IS diagnosis
- Shopping feed and Performance Max signal quality
- Query intent alignment and negative keyword hygiene

Analyze only the search tactics in the provided data. Quantify every recommendation.`,
	},
	{
		Name:             "Programmatic Specialist",
		Slug:             "programmatic",
		Platforms:        []string{"programmatic", "display", "dsp", "tradedesk", "dv360"},
		TacticSubstrings: []string{"programmatic", "dynamic", "native", "display"},
		SpecializationPrompt: `You are a programmatic display specialist with deep expertise in DSP buying, native, and dynamic creative.

Focus areas:
- Viewability and invalid traffic rates against exchange norms
- Win rate, bid density, and supply path efficiency
- Frequency capping across deal types
- Dynamic creative element performance

Analyze only the programmatic tactics in the provided data. Quantify every recommendation.`,
	},
	{
		Name:             "Video & CTV Specialist",
		Slug:             "video-ctv",
		Platforms:        []string{"youtube", "ctv", "ott", "hulu", "roku"},
		TacticSubstrings: []string{"ctv", "ott", "video", "pre_roll", "preroll"},
		SpecializationPrompt: `You are a video and connected TV specialist with deep expertise in YouTube, CTV, and OTT campaigns.

Focus areas:
- Completion rate by pod position and device
- CPCV efficiency against format benchmarks
- Audience extension and incremental reach
- Frequency management across streaming apps

Analyze only the video and CTV tactics in the provided data. Quantify every recommendation.`,
	},
	{
		Name:             "Retargeting Specialist",
		Slug:             "retargeting",
		Platforms:        []string{},
		TacticSubstrings: []string{"retargeting", "remarketing"},
		SpecializationPrompt: `You are a retargeting specialist with deep expertise in audience recency, frequency, and conversion attribution.

Focus areas:
- Recency window segmentation and decay curves
- Burn rates and audience pool exhaustion
- Incrementality versus view-through inflation
- Cross-device matching quality

Analyze only the retargeting tactics in the provided data. Quantify every recommendation.`,
	},
}

// ComplexityService decides whether a campaign needs the multi-agent
// pipeline and which experts should staff it
type ComplexityService struct{}

// NewComplexityService creates a new complexity service
func NewComplexityService() *ComplexityService {
	return &ComplexityService{}
}

// Assess derives the complexity picture from detected tactics. The bar for
// multi-agent is deliberately low: three or more tactics, two or more
// platforms, or any complex tactic type.
func (s *ComplexityService) Assess(tactics []model.DetectedTactic) model.ComplexityAssessment {
	assessment := model.ComplexityAssessment{
		TacticCount:     len(tactics),
		UniquePlatforms: uniquePlatforms(tactics),
	}
	assessment.PlatformCount = len(assessment.UniquePlatforms)

	for _, t := range tactics {
		if hasComplexMarker(t) {
			assessment.HasComplexTactics = true
			break
		}
	}

	assessment.RequiresMultiAgent = assessment.TacticCount >= 3 ||
		assessment.PlatformCount >= 2 ||
		assessment.HasComplexTactics

	if assessment.RequiresMultiAgent {
		assessment.RecommendedExperts = s.SelectExperts(tactics)
	}
	return assessment
}

// SelectExperts maps tactics to expert slugs. A tactic activates an expert
// when its platform appears in the expert's platform list or its tactic
// type contains one of the expert's substrings. Results follow catalog
// order with no duplicates.
func (s *ComplexityService) SelectExperts(tactics []model.DetectedTactic) []string {
	var selected []string
	for _, expert := range ExpertCatalog {
		if expertMatches(expert, tactics) {
			selected = append(selected, expert.Slug)
		}
	}
	return selected
}

// ExpertBySlug looks up a catalog entry. Returns nil for unknown slugs.
func ExpertBySlug(slug string) *model.ExpertDefinition {
	for i := range ExpertCatalog {
		if ExpertCatalog[i].Slug == slug {
			return &ExpertCatalog[i]
		}
	}
	return nil
}

func expertMatches(expert model.ExpertDefinition, tactics []model.DetectedTactic) bool {
	for _, t := range tactics {
		platform := strings.ToLower(t.Platform)
		for _, p := range expert.Platforms {
			if platform == p {
				return true
			}
		}
		tacticType := strings.ToLower(t.TacticType)
		for _, sub := range expert.TacticSubstrings {
			if strings.Contains(tacticType, sub) {
				return true
			}
		}
	}
	return false
}

func hasComplexMarker(t model.DetectedTactic) bool {
	tacticType := strings.ToLower(t.TacticType)
	for _, marker := range complexTacticMarkers {
		if strings.Contains(tacticType, marker) {
			return true
		}
	}
	return false
}

// uniquePlatforms preserves first-seen order and lowercases for stability
func uniquePlatforms(tactics []model.DetectedTactic) []string {
	seen := make(map[string]bool)
	var platforms []string
	for _, t := range tactics {
		p := strings.ToLower(t.Platform)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		platforms = append(platforms, p)
	}
	return platforms
}
