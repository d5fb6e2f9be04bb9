package model

// DetectedTactic is one line-item type recognized from uploaded files.
// MatchConfidence is the detector's confidence that the file/column mapping
// identified the right tactic, in [0,1].
type DetectedTactic struct {
	Platform        string  `json:"platform"`
	Product         string  `json:"product"`
	Subproduct      string  `json:"subproduct,omitempty"`
	TacticType      string  `json:"tacticType"`
	DataValue       string  `json:"dataValue"`
	MatchConfidence float64 `json:"matchConfidence"`
}

// CampaignInfo carries the campaign identity fields the wizard collected
type CampaignInfo struct {
	OrderID     string  `json:"orderId"`
	Name        string  `json:"name"`
	Advertiser  string  `json:"advertiser,omitempty"`
	FlightStart string  `json:"flightStart,omitempty"`
	FlightEnd   string  `json:"flightEnd,omitempty"`
	BudgetTotal float64 `json:"budgetTotal,omitempty"`
}

// CompanyInfo is the media company's configuration for report generation
type CompanyInfo struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Industry           string `json:"industry,omitempty"`
	Website            string `json:"website,omitempty"`
	CustomInstructions string `json:"customInstructions,omitempty"`
}

// FileDataset is a pre-parsed tabular upload (performance or pacing data).
// Parsing happens upstream; rows arrive as plain strings.
type FileDataset struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}
