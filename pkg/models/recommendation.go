package models

import "time"

// RecommendationType represents the type of recommendation
type RecommendationType string

const (
	RecommendationBillingMode RecommendationType = "BILLING_MODE"
	RecommendationTableClass  RecommendationType = "TABLE_CLASS"
	RecommendationUtilization RecommendationType = "UTILIZATION"
	RecommendationUnusedIndex RecommendationType = "UNUSED_GSI"
)

// Recommendation is one surfaced line of the aggregate report
type Recommendation struct {
	ID        string             `json:"id,omitempty"`
	Region    string             `json:"region"`
	TableName string             `json:"tableName"`
	Type      RecommendationType `json:"type"`

	// Display label, e.g. "Utilization (by-email)"
	Label string `json:"label"`

	// Index name for GSI-scoped recommendations
	Resource string `json:"resource,omitempty"`

	Change         string  `json:"change"`
	SavingsMonthly float64 `json:"savingsMonthly"`
	Impact         string  `json:"impact"` // HIGH, MEDIUM, LOW

	CreatedAt time.Time `json:"createdAt"`
}

// Impact buckets a monthly saving
func Impact(savings float64) string {
	switch {
	case savings > 50:
		return "HIGH"
	case savings > 20:
		return "MEDIUM"
	default:
		return "LOW"
	}
}
