package model

import "time"

// ImpactLevel grades how strongly a quirk or seasonality window affects results
type ImpactLevel string

const (
	ImpactHigh   ImpactLevel = "high"
	ImpactMedium ImpactLevel = "medium"
	ImpactLow    ImpactLevel = "low"
)

// Quirk is a platform behavior that changes how metrics should be read
type Quirk struct {
	Text           string      `json:"text"`
	Impact         ImpactLevel `json:"impact"`
	Recommendation string      `json:"recommendation,omitempty"`
}

// Kpi describes a metric the platform is typically judged on
type Kpi struct {
	Name          string `json:"name"`
	TypicalRange  string `json:"typicalRange,omitempty"`
	GoodThreshold string `json:"goodThreshold,omitempty"`
	BadThreshold  string `json:"badThreshold,omitempty"`
}

// ThresholdType says which side of the value is the bad side
type ThresholdType string

const (
	ThresholdMinimum ThresholdType = "minimum"
	ThresholdMaximum ThresholdType = "maximum"
	ThresholdRange   ThresholdType = "range"
)

// Threshold is a warning boundary for a single metric
type Threshold struct {
	Metric  string        `json:"metric"`
	Type    ThresholdType `json:"type"`
	Value   float64       `json:"value"`
	Context string        `json:"context,omitempty"`
}

// BuyerNote is internal guidance from media buyers, surfaced to the model
type BuyerNote struct {
	Text     string `json:"text"`
	Priority int    `json:"priority"`
}

// PlatformKnowledge is one platform's cached expertise snapshot.
// Published by an external sync job; immutable once fetched.
type PlatformKnowledge struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Active      bool        `json:"active"`
	Quirks      []Quirk     `json:"quirks,omitempty"`
	Kpis        []Kpi       `json:"kpis,omitempty"`
	Thresholds  []Threshold `json:"thresholds,omitempty"`
	BuyerNotes  []BuyerNote `json:"buyerNotes,omitempty"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Benchmark is an industry reference value for one metric
type Benchmark struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit,omitempty"`
	Source string  `json:"source,omitempty"`
}

// Insight is a free-text industry observation, ranked by priority
type Insight struct {
	Text     string `json:"text"`
	Category string `json:"category,omitempty"`
	Priority int    `json:"priority"`
}

// Seasonality describes a recurring demand window for the vertical
type Seasonality struct {
	Period      string      `json:"period"`
	Impact      ImpactLevel `json:"impact"`
	Description string      `json:"description,omitempty"`
}

// IndustryKnowledge is one vertical's cached benchmark snapshot
type IndustryKnowledge struct {
	Code        string        `json:"code"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Benchmarks  []Benchmark   `json:"benchmarks,omitempty"`
	Insights    []Insight     `json:"insights,omitempty"`
	Seasonality []Seasonality `json:"seasonality,omitempty"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// SystemPromptDocument is a versioned instruction document. At most one
// version is current per slug; the version used is recorded on each report.
type SystemPromptDocument struct {
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Content     string    `json:"content"`
	Version     int       `json:"version"`
	PublishedAt time.Time `json:"publishedAt"`
}
