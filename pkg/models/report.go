package models

import "time"

// TableRecommendations groups the surfaced lines of one table
type TableRecommendations struct {
	TaskIndex       int              `json:"-"`
	Region          string           `json:"region"`
	TableName       string           `json:"tableName"`
	Label           string           `json:"label"`
	Recommendations []Recommendation `json:"recommendations"`
	TotalSavings    float64          `json:"totalSavings"`
}

// TableRef names a table in the optimized bucket
type TableRef struct {
	Region    string `json:"region"`
	TableName string `json:"tableName"`
	Label     string `json:"label"`
}

// TableErrors lists the analyzer failures of one table
type TableErrors struct {
	Region    string            `json:"region"`
	TableName string            `json:"tableName"`
	Label     string            `json:"label"`
	Errors    []AnalyzerFailure `json:"errors"`
}

// AggregateReport is the read-only view over every bundle of a run
type AggregateReport struct {
	GeneratedAt  time.Time `json:"generatedAt"`
	AnalysisDays int       `json:"analysisDays"`
	Regions      []string  `json:"regions"`
	TableCount   int       `json:"tableCount"`

	Recommended []TableRecommendations `json:"recommended"`
	Optimized   []TableRef             `json:"optimized"`
	Errored     []TableErrors          `json:"errored"`

	TotalMonthlySavings float64 `json:"totalMonthlySavings"`
}

// YearlySavings extrapolates the monthly total
func (r *AggregateReport) YearlySavings() float64 {
	return r.TotalMonthlySavings * 12
}

// RecommendationCount counts surfaced lines across tables
func (r *AggregateReport) RecommendationCount() int {
	count := 0
	for _, t := range r.Recommended {
		count += len(t.Recommendations)
	}
	return count
}

// Run is an archived analysis run
type Run struct {
	ID                  string    `json:"id"`
	GeneratedAt         time.Time `json:"generatedAt"`
	Regions             []string  `json:"regions"`
	AnalysisDays        int       `json:"analysisDays"`
	TableCount          int       `json:"tableCount"`
	RecommendationCount int       `json:"recommendationCount"`
	ErrorCount          int       `json:"errorCount"`
	TotalMonthlySavings float64   `json:"totalMonthlySavings"`
}
