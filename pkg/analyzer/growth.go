package analyzer

import (
	"fmt"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// MinTrendSamples is the shortest series a trend is fitted to
const MinTrendSamples = 100

// GrowingRatePerMonth is the monthly growth above which a series counts as growing
const GrowingRatePerMonth = 20.0

// CalculateGrowthTrend fits a line through the series and reports growth per 30 days
func CalculateGrowthTrend(series models.Series) (*GrowthTrend, error) {
	if len(series) < MinTrendSamples {
		return &GrowthTrend{}, fmt.Errorf("insufficient data for trend analysis (need %d+ samples, got %d)", MinTrendSamples, len(series))
	}

	start := series[0].Timestamp
	x := make([]float64, len(series)) // hours since start
	y := make([]float64, len(series))
	for i, sample := range series {
		x[i] = sample.Timestamp.Sub(start).Hours()
		y[i] = sample.Value
	}

	slope, _, r2 := linearRegression(x, y)

	avg := Mean(y)
	var rate float64
	if avg > 0 {
		rate = slope * 24 * 30 / avg * 100
	}

	return &GrowthTrend{
		RatePerMonth: rate,
		Confidence:   r2,
		IsGrowing:    rate > GrowingRatePerMonth,
	}, nil
}

// linearRegression returns slope, intercept and R² clamped to [0, 1]
func linearRegression(x, y []float64) (slope, intercept, r2 float64) {
	if len(x) == 0 {
		return 0, 0, 0
	}

	meanX := Mean(x)
	meanY := Mean(y)

	numerator, denominator := 0.0, 0.0
	for i := range x {
		numerator += (x[i] - meanX) * (y[i] - meanY)
		denominator += (x[i] - meanX) * (x[i] - meanX)
	}
	if denominator == 0 {
		return 0, meanY, 0
	}

	slope = numerator / denominator
	intercept = meanY - slope*meanX

	ssTotal, ssRes := 0.0, 0.0
	for i := range x {
		predicted := slope*x[i] + intercept
		ssRes += (y[i] - predicted) * (y[i] - predicted)
		ssTotal += (y[i] - meanY) * (y[i] - meanY)
	}
	if ssTotal == 0 {
		return slope, intercept, 0
	}

	r2 = 1.0 - ssRes/ssTotal
	if r2 < 0 {
		r2 = 0
	} else if r2 > 1 {
		r2 = 1
	}
	return slope, intercept, r2
}
