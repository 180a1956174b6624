package recommender

import (
	"github.com/opscart/dynamodb-cost-optimizer/pkg/analyzer"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// IndexUsage is the daily consumption of one GSI
type IndexUsage struct {
	IndexName string

	// ConsumedReadCapacityUnits daily Sum
	Reads models.Series
	// ConsumedWriteCapacityUnits daily Sum, on-demand tables only
	Writes models.Series
	// ProvisionedRead/WriteCapacityUnits daily Average, provisioned tables only
	ProvisionedReads  models.Series
	ProvisionedWrites models.Series
}

// UnusedIndexInput is everything the unused-GSI detector needs for one table
type UnusedIndexInput struct {
	Table *models.Table
	Usage []IndexUsage
	Days  int

	// Savings are reported as zero when nil
	Prices models.PriceTable
}

// UnusedIndexes flags GSIs that were never read during the window and estimates
// what dropping each would save.
func (r *Recommender) UnusedIndexes(in UnusedIndexInput) (*models.UnusedIndexResult, error) {
	if err := checkInput(in.Table, in.Days); err != nil {
		return nil, err
	}

	result := &models.UnusedIndexResult{
		TableName:    in.Table.Name,
		HasIndexes:   len(in.Table.Indexes) > 0,
		TotalIndexes: len(in.Table.Indexes),
		Unused:       []models.UnusedIndex{},
		AnalysisDays: in.Days,
	}
	if !result.HasIndexes {
		return result, nil
	}

	usage := make(map[string]IndexUsage, len(in.Usage))
	for _, u := range in.Usage {
		usage[u.IndexName] = u
	}

	keys := models.KeysForClass(in.Table.Class)
	if in.Prices != nil {
		required := []models.PriceKey{keys.RCUHour, keys.WCUHour}
		if in.Table.IsOnDemand() {
			required = []models.PriceKey{keys.WriteRequest}
		}
		if err := requirePrices(in.Table.Region, in.Prices, required...); err != nil {
			return nil, err
		}
	}

	total := 0.0
	for _, idx := range in.Table.Indexes {
		u := usage[idx.Name]
		if u.Reads.Sum() > 0 {
			continue
		}

		savings := 0.0
		if in.Prices != nil {
			if in.Table.IsOnDemand() {
				savings = toMonthly(u.Writes.Sum()*in.Prices.Get(keys.WriteRequest), in.Days)
			} else {
				savings = (analyzer.Mean(u.ProvisionedReads.Values())*in.Prices.Get(keys.RCUHour) +
					analyzer.Mean(u.ProvisionedWrites.Values())*in.Prices.Get(keys.WCUHour)) * HoursPerMonth
			}
		}

		total += savings
		result.Unused = append(result.Unused, models.UnusedIndex{
			IndexName:      idx.Name,
			MonthlySavings: analyzer.Round(savings, 2),
		})
	}
	result.TotalMonthlySavings = analyzer.Round(total, 2)

	return result, nil
}
