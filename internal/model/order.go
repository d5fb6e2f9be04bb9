package model

import "time"

// OrderLineItem is one purchased line on an upstream order
type OrderLineItem struct {
	Platform   string  `json:"platform"`
	Product    string  `json:"product"`
	Subproduct string  `json:"subproduct,omitempty"`
	TacticType string  `json:"tacticType"`
	DataValue  string  `json:"dataValue"`
	Budget     float64 `json:"budget,omitempty"`
}

// OrderSnapshot is a short-lived cached view of an upstream order.
// The order-management API is the source of truth; this only avoids
// re-fetching while the wizard is open.
type OrderSnapshot struct {
	OrderID      string          `json:"orderId"`
	CampaignName string          `json:"campaignName"`
	Advertiser   string          `json:"advertiser,omitempty"`
	FlightStart  string          `json:"flightStart,omitempty"`
	FlightEnd    string          `json:"flightEnd,omitempty"`
	BudgetTotal  float64         `json:"budgetTotal,omitempty"`
	LineItems    []OrderLineItem `json:"lineItems,omitempty"`
	FetchedAt    time.Time       `json:"fetchedAt"`
}
