package model

import "time"

// ReportStatus tracks a report through async generation
type ReportStatus string

const (
	ReportPending    ReportStatus = "pending"
	ReportGenerating ReportStatus = "generating"
	ReportReady      ReportStatus = "ready"
	ReportFailed     ReportStatus = "failed"
)

// Strategy names which execution path produced a report
type Strategy string

const (
	StrategySingleCall Strategy = "single_call"
	StrategyMultiAgent Strategy = "multi_agent"
)

// ModelUsage is the token accounting for one model invocation
type ModelUsage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// ModelResult is the contract every model call must satisfy
type ModelResult struct {
	Text  string     `json:"text"`
	Usage ModelUsage `json:"usage"`
}

// ExpertOutput is one specialist's analysis inside a multi-agent run
type ExpertOutput struct {
	ExpertSlug string     `json:"expertSlug"`
	ExpertName string     `json:"expertName"`
	Text       string     `json:"text"`
	Usage      ModelUsage `json:"usage"`
}

// ExpertDefinition is a static catalog entry for one specialization.
// Applicability: platform intersection OR case-insensitive tactic-type
// substring match. The catalog is fixed configuration, never campaign data.
type ExpertDefinition struct {
	Name                 string   `json:"name"`
	Slug                 string   `json:"slug"`
	Platforms            []string `json:"platforms,omitempty"`
	TacticSubstrings     []string `json:"tacticSubstrings,omitempty"`
	SpecializationPrompt string   `json:"-"`
}

// ComplexityAssessment is the derived routing decision for one campaign
type ComplexityAssessment struct {
	TacticCount        int      `json:"tacticCount"`
	UniquePlatforms    []string `json:"uniquePlatforms"`
	PlatformCount      int      `json:"platformCount"`
	HasComplexTactics  bool     `json:"hasComplexTactics"`
	RequiresMultiAgent bool     `json:"requiresMultiAgent"`
	RecommendedExperts []string `json:"recommendedExperts"`
}

// Report is the persisted system-of-record row for one generated report
type Report struct {
	ID            string       `json:"id"`
	CompanyID     string       `json:"companyId"`
	OrderID       string       `json:"orderId"`
	Status        ReportStatus `json:"status"`
	Strategy      Strategy     `json:"strategy,omitempty"`
	Content       string       `json:"content,omitempty"`
	PromptSlug    string       `json:"promptSlug"`
	PromptVersion int          `json:"promptVersion"`
	ExpertSlugs   []string     `json:"expertSlugs,omitempty"`
	InputTokens   int          `json:"inputTokens"`
	OutputTokens  int          `json:"outputTokens"`
	Error         string       `json:"error,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	ReadyAt       *time.Time   `json:"readyAt,omitempty"`
}
