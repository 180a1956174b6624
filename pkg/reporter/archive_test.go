package reporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

func TestFromArchive(t *testing.T) {
	run := &models.Run{
		ID:                  "run-1",
		GeneratedAt:         time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Regions:             []string{"us-east-1", "eu-west-1"},
		AnalysisDays:        14,
		TableCount:          5,
		TotalMonthlySavings: 60,
	}
	recs := []models.Recommendation{
		{Region: "us-east-1", TableName: "orders", Type: models.RecommendationBillingMode, SavingsMonthly: 40},
		{Region: "eu-west-1", TableName: "users", Type: models.RecommendationTableClass, SavingsMonthly: 15},
		{Region: "us-east-1", TableName: "orders", Type: models.RecommendationUnusedIndex, SavingsMonthly: 5},
	}

	report := FromArchive(run, recs)

	require.Len(t, report.Recommended, 2)
	assert.Equal(t, "orders (us-east-1)", report.Recommended[0].Label)
	assert.Len(t, report.Recommended[0].Recommendations, 2)
	assert.Equal(t, 45.0, report.Recommended[0].TotalSavings)
	assert.Equal(t, "users (eu-west-1)", report.Recommended[1].Label)
	assert.Equal(t, 60.0, report.TotalMonthlySavings)
	assert.Equal(t, 3, report.RecommendationCount())
	assert.Empty(t, report.Errored)
}

func TestFromArchiveSingleRegionLabels(t *testing.T) {
	run := &models.Run{Regions: []string{"us-east-1"}}
	report := FromArchive(run, []models.Recommendation{{Region: "us-east-1", TableName: "orders"}})

	require.Len(t, report.Recommended, 1)
	assert.Equal(t, "orders", report.Recommended[0].Label)
}
