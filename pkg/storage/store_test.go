package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

func sampleReport() *models.AggregateReport {
	return &models.AggregateReport{
		GeneratedAt:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		AnalysisDays: 14,
		Regions:      []string{"eu-west-1", "us-east-1"},
		TableCount:   4,
		Recommended: []models.TableRecommendations{
			{TableName: "orders", Recommendations: []models.Recommendation{
				{TableName: "orders", Type: models.RecommendationBillingMode, SavingsMonthly: 90},
				{TableName: "orders", Type: models.RecommendationUnusedIndex, Resource: "legacy"},
			}},
			{TableName: "users", Recommendations: []models.Recommendation{
				{TableName: "users", Type: models.RecommendationTableClass, SavingsMonthly: 10},
			}},
		},
		Errored:             []models.TableErrors{{TableName: "events"}},
		TotalMonthlySavings: 100,
	}
}

func TestNewRun(t *testing.T) {
	report := sampleReport()
	run := NewRun("abc", report)

	assert.Equal(t, "abc", run.ID)
	assert.Equal(t, report.GeneratedAt, run.GeneratedAt)
	assert.Equal(t, []string{"eu-west-1", "us-east-1"}, run.Regions)
	assert.Equal(t, 14, run.AnalysisDays)
	assert.Equal(t, 4, run.TableCount)
	assert.Equal(t, 3, run.RecommendationCount)
	assert.Equal(t, 1, run.ErrorCount)
	assert.Equal(t, 100.0, run.TotalMonthlySavings)

	// The run owns its region slice
	run.Regions[0] = "changed"
	assert.Equal(t, "eu-west-1", report.Regions[0])
}

func TestFlattenKeepsReportOrder(t *testing.T) {
	recs := flatten(sampleReport())
	assert.Len(t, recs, 3)
	assert.Equal(t, "orders", recs[0].TableName)
	assert.Equal(t, "legacy", recs[1].Resource)
	assert.Equal(t, "users", recs[2].TableName)
}

func TestNewStoreUnsupportedType(t *testing.T) {
	_, err := NewStore(Config{Type: "sqlite"})
	assert.Error(t, err)
}
