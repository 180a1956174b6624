// Package recommender turns table metadata and consumption metrics into cost recommendations.
//
// Every analyzer here is a pure function of its input. Metric collection lives in the scanner.
package recommender

import (
	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/config"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/simulator"
)

const (
	// HoursPerMonth prices provisioned capacity
	HoursPerMonth = 730
	// DaysPerMonth scales window totals to a month
	DaysPerMonth = 30.4
	// SecondsPerMonth converts an average rate to monthly request units
	SecondsPerMonth = DaysPerMonth * 86400
)

// Recommender holds the thresholds and autoscaling policy shared by all analyzers
type Recommender struct {
	thresholds config.Thresholds
	policy     simulator.Policy
}

// New creates a recommender. The thresholds are copied and never modified.
func New(thresholds config.Thresholds, policy simulator.Policy) *Recommender {
	return &Recommender{
		thresholds: thresholds,
		policy:     policy,
	}
}

// toMonthly scales a cost observed over the window to a 30.4-day month
func toMonthly(windowCost float64, days int) float64 {
	return windowCost / float64(days) * DaysPerMonth
}

func checkInput(table *models.Table, days int) error {
	if table == nil {
		return apperrors.InvalidInput("table metadata is required")
	}
	if days < 1 {
		return apperrors.InvalidInput("analysis window must be at least 1 day, got %d", days)
	}
	return nil
}

// requirePrices fails with PriceTableIncomplete when any key is absent
func requirePrices(region string, prices models.PriceTable, keys ...models.PriceKey) error {
	var missing []string
	for _, key := range keys {
		if _, ok := prices[key]; !ok {
			missing = append(missing, string(key))
		}
	}
	if len(missing) > 0 {
		return apperrors.PriceTableIncomplete(region, missing)
	}
	return nil
}

// priceOf returns the first key present in the table
func priceOf(prices models.PriceTable, keys ...models.PriceKey) float64 {
	for _, key := range keys {
		if v, ok := prices[key]; ok {
			return v
		}
	}
	return 0
}

// requestPrices returns the per-request on-demand prices for a storage class
func requestPrices(class models.TableClass, prices models.PriceTable) (read, write float64) {
	if class == models.ClassInfrequentAccess {
		return prices.Get(models.PriceIARead), prices.Get(models.PriceIAWrite)
	}
	return priceOf(prices, models.PriceOnDemandRead, models.PriceReadRequest),
		priceOf(prices, models.PriceOnDemandWrite, models.PriceWriteRequest)
}
