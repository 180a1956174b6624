package recommender

import (
	"time"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/config"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/simulator"
)

const gib = 1024 * 1024 * 1024

var seriesStart = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func testPrices() models.PriceTable {
	return models.PriceTable{
		models.PriceReadRequest:     0.00000025,
		models.PriceWriteRequest:    0.00000125,
		models.PriceRCUHour:         0.00013,
		models.PriceWCUHour:         0.00065,
		models.PriceIARead:          0.00000031,
		models.PriceIAWrite:         0.00000156,
		models.PriceIARCUHour:       0.00016,
		models.PriceIAWCUHour:       0.00081,
		models.PriceStandardStorage: 0.25,
		models.PriceIAStorage:       0.10,
	}.WithAliases()
}

func newTestRecommender() *Recommender {
	return New(config.DefaultThresholds(), simulator.DefaultPolicy())
}

// constant returns n samples of v spaced step apart
func constant(v float64, n int, step time.Duration) models.Series {
	s := make(models.Series, n)
	for i := range s {
		s[i] = models.Sample{Timestamp: seriesStart.Add(time.Duration(i) * step), Value: v}
	}
	return s
}

// generate returns n samples spaced step apart with values from fn
func generate(n int, step time.Duration, fn func(i int) float64) models.Series {
	s := make(models.Series, n)
	for i := range s {
		s[i] = models.Sample{Timestamp: seriesStart.Add(time.Duration(i) * step), Value: fn(i)}
	}
	return s
}

func daily(values ...float64) models.Series {
	return generate(len(values), 24*time.Hour, func(i int) float64 { return values[i] })
}

func provisionedTable(read, write int64) *models.Table {
	return &models.Table{
		Region:           "us-east-1",
		Name:             "test",
		BillingMode:      models.BillingProvisioned,
		Class:            models.ClassStandard,
		ProvisionedRead:  read,
		ProvisionedWrite: write,
	}
}

func onDemandTable() *models.Table {
	return &models.Table{
		Region:      "us-east-1",
		Name:        "test",
		BillingMode: models.BillingOnDemand,
		Class:       models.ClassStandard,
	}
}

func int64Ptr(v int64) *int64 { return &v }
