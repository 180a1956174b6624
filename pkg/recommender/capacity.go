package recommender

import (
	"math"
	"time"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/analyzer"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/simulator"
)

// trendConfidence is the minimum R² for a growth note
const trendConfidence = 0.5

// CapacityModeInput is everything the capacity-mode analyzer needs for one table
type CapacityModeInput struct {
	Table *models.Table

	// ConsumedRead/WriteCapacityUnits Sum, one sample per Period
	Reads  models.Series
	Writes models.Series
	Period time.Duration

	Days   int
	Prices models.PriceTable
}

// CapacityMode compares the on-demand bill with the cost of provisioned capacity
// under simulated autoscaling and recommends the cheaper billing mode.
func (r *Recommender) CapacityMode(in CapacityModeInput) (*models.CapacityModeResult, error) {
	if err := checkInput(in.Table, in.Days); err != nil {
		return nil, err
	}
	if in.Period <= 0 {
		return nil, apperrors.InvalidInput("metric period must be positive, got %v", in.Period)
	}

	keys := models.KeysForClass(in.Table.Class)
	if err := requirePrices(in.Table.Region, in.Prices, keys.ReadRequest, keys.WriteRequest, keys.RCUHour, keys.WCUHour); err != nil {
		return nil, err
	}
	rcuHour := in.Prices.Get(keys.RCUHour)
	wcuHour := in.Prices.Get(keys.WCUHour)

	totalReads := in.Reads.Sum()
	totalWrites := in.Writes.Sum()

	onDemand := toMonthly(totalReads*in.Prices.Get(keys.ReadRequest)+totalWrites*in.Prices.Get(keys.WriteRequest), in.Days)
	currentProvisioned := float64(in.Table.ProvisionedRead)*HoursPerMonth*rcuHour +
		float64(in.Table.ProvisionedWrite)*HoursPerMonth*wcuHour

	var simReads, simWrites []float64
	var err error
	if len(in.Reads) > 0 {
		if simReads, err = simulator.Simulate(in.Reads.Scaled(in.Period.Seconds()), r.policy); err != nil {
			return nil, err
		}
	}
	if len(in.Writes) > 0 {
		if simWrites, err = simulator.Simulate(in.Writes.Scaled(in.Period.Seconds()), r.policy); err != nil {
			return nil, err
		}
	}
	simulated := len(simReads) > 0 && len(simWrites) > 0

	optimal := currentProvisioned
	if simulated {
		optimal = analyzer.Mean(simReads)*HoursPerMonth*rcuHour + analyzer.Mean(simWrites)*HoursPerMonth*wcuHour
	}

	recommended := models.BillingProvisioned
	if (totalReads == 0 && totalWrites == 0) || onDemand < optimal {
		recommended = models.BillingOnDemand
	}

	current := onDemand
	if in.Table.BillingMode == models.BillingProvisioned {
		current = currentProvisioned
	}
	savings := math.Max(0, current-math.Min(onDemand, optimal))

	result := &models.CapacityModeResult{
		TableName:                     in.Table.Name,
		CurrentMode:                   in.Table.BillingMode,
		RecommendedMode:               recommended,
		CurrentMonthlyCost:            current,
		OnDemandMonthlyCost:           onDemand,
		CurrentProvisionedMonthlyCost: currentProvisioned,
		OptimalProvisionedMonthlyCost: optimal,
		PotentialMonthlySavings:       savings,
		AnalysisDays:                  in.Days,
	}
	if current > 0 {
		result.SavingsPercentage = savings / current * 100
	}

	if recommended == models.BillingProvisioned && simulated {
		result.Bounds = &models.CapacityBounds{
			MinRead:  max(1, int64(analyzer.Min(simReads))),
			MaxRead:  int64(analyzer.Max(simReads)),
			MinWrite: max(1, int64(analyzer.Min(simWrites))),
			MaxWrite: int64(analyzer.Max(simWrites)),
		}
		result.Notes = workloadNotes(in.Reads, in.Writes)
	}

	return result, nil
}

// workloadNotes flags consumption shapes that make a provisioned estimate optimistic
func workloadNotes(series ...models.Series) []models.AdvisoryNote {
	var variable, growing bool
	for _, s := range series {
		if analyzer.AnalyzeUsagePattern(s.Values()).Type == analyzer.PatternHighlyVariable {
			variable = true
		}
		if trend, err := analyzer.CalculateGrowthTrend(s); err == nil && trend.IsGrowing && trend.Confidence >= trendConfidence {
			growing = true
		}
	}

	var notes []models.AdvisoryNote
	if variable {
		notes = append(notes, models.NoteVariableWorkload)
	}
	if growing {
		notes = append(notes, models.NoteGrowingWorkload)
	}
	return notes
}
