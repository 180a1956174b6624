package recommender

import (
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// TableClassInput is everything the storage-class analyzer needs for one table
type TableClassInput struct {
	Table *models.Table

	// Window totals from daily ConsumedRead/WriteCapacityUnits sums
	Reads  models.Series
	Writes models.Series

	Days     int
	Prices   models.PriceTable
	Reserved models.ReservedStatus

	// Overrides Thresholds.MinSavings when set
	MinSavings *float64
}

// TableClass weighs storage against throughput cost and recommends the storage class
// with the lower projected bill.
func (r *Recommender) TableClass(in TableClassInput) (*models.TableClassResult, error) {
	if err := checkInput(in.Table, in.Days); err != nil {
		return nil, err
	}

	current := in.Table.Class
	result := &models.TableClassResult{
		TableName:        in.Table.Name,
		CurrentClass:     current,
		RecommendedClass: current,
		AnalysisDays:     in.Days,
	}

	switch in.Reserved {
	case models.ReservedYes:
		result.Notes = []models.AdvisoryNote{models.NoteReservedCapacity}
		return result, nil
	case models.ReservedUnknown:
		result.Notes = []models.AdvisoryNote{models.NoteReservedUnknown}
	}

	if err := requirePrices(in.Table.Region, in.Prices, models.PriceStandardStorage, models.PriceReadRequest, models.PriceWriteRequest); err != nil {
		return nil, err
	}

	t := r.thresholds
	floor := t.MinSavings
	if in.MinSavings != nil {
		floor = *in.MinSavings
	}

	storage := in.Table.SizeGiB() * in.Prices.Get(models.PriceStandardStorage)
	throughput := toMonthly(
		in.Reads.Sum()*priceOf(in.Prices, models.PriceStandardRead, models.PriceReadRequest)+
			in.Writes.Sum()*priceOf(in.Prices, models.PriceStandardWrite, models.PriceWriteRequest),
		in.Days)
	result.MonthlyStorageCost = storage
	result.MonthlyThroughputCost = throughput

	total := storage + throughput
	if total == 0 {
		return result, nil
	}

	ratio := t.NegligibleThroughputRatio
	if throughput > t.ThroughputEpsilon {
		ratio = storage / throughput
	}
	result.StorageToThroughputRatio = ratio

	var target models.TableClass
	var projected float64
	switch current {
	case models.ClassStandard:
		if ratio > t.StandardToIARatio || (throughput <= t.ThroughputEpsilon && storage > t.StorageOnlyCost) {
			target = models.ClassInfrequentAccess
			projected = storage*t.IAStorageFactor + throughput*t.IAThroughputFactor
		}
	case models.ClassInfrequentAccess:
		if ratio < t.IAToStandardRatio {
			target = models.ClassStandard
			projected = storage/t.IAStorageFactor + throughput/t.IAThroughputFactor
		}
	}

	if target != "" {
		if savings := total - projected; savings >= floor {
			result.RecommendedClass = target
			result.PotentialMonthlySavings = savings
		}
	}
	return result, nil
}
