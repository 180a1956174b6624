package recommender

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

const fiveMinutes = 5 * time.Minute

// 14 days of 5 minute samples
const twoWeeks = 4032

func TestCapacityMode_ZeroUsageRecommendsOnDemand(t *testing.T) {
	r := newTestRecommender()

	result, err := r.CapacityMode(CapacityModeInput{
		Table:  provisionedTable(100, 50),
		Period: fiveMinutes,
		Days:   14,
		Prices: testPrices(),
	})
	require.NoError(t, err)

	assert.Equal(t, models.BillingProvisioned, result.CurrentMode)
	assert.Equal(t, models.BillingOnDemand, result.RecommendedMode)
	assert.Equal(t, 0.0, result.OnDemandMonthlyCost)
	// Without consumption data the optimal cost falls back to the current one
	assert.Equal(t, result.CurrentProvisionedMonthlyCost, result.OptimalProvisionedMonthlyCost)
	assert.InDelta(t, result.CurrentProvisionedMonthlyCost, result.PotentialMonthlySavings, 1e-9)
	assert.InDelta(t, 100.0, result.SavingsPercentage, 1e-9)
	assert.Nil(t, result.Bounds)
}

func TestCapacityMode_OnDemandWithoutUsageSavesNothing(t *testing.T) {
	r := newTestRecommender()

	result, err := r.CapacityMode(CapacityModeInput{
		Table:  onDemandTable(),
		Period: fiveMinutes,
		Days:   14,
		Prices: testPrices(),
	})
	require.NoError(t, err)

	assert.Equal(t, models.BillingOnDemand, result.RecommendedMode)
	assert.Equal(t, 0.0, result.PotentialMonthlySavings)
	assert.Equal(t, 0.0, result.SavingsPercentage)
}

func TestCapacityMode_InfrequentAccessUsesIAPrices(t *testing.T) {
	r := newTestRecommender()
	table := provisionedTable(100, 50)
	table.Class = models.ClassInfrequentAccess

	result, err := r.CapacityMode(CapacityModeInput{
		Table:  table,
		Period: fiveMinutes,
		Days:   14,
		Prices: testPrices(),
	})
	require.NoError(t, err)

	expected := 100*730*0.00016 + 50*730*0.00081
	assert.InDelta(t, expected, result.CurrentProvisionedMonthlyCost, 0.005)
}

func TestCapacityMode_SteadyHighUsageRecommendsProvisioned(t *testing.T) {
	r := newTestRecommender()
	usage := constant(50000, twoWeeks, fiveMinutes)

	result, err := r.CapacityMode(CapacityModeInput{
		Table:  onDemandTable(),
		Reads:  usage,
		Writes: usage,
		Period: fiveMinutes,
		Days:   14,
		Prices: testPrices(),
	})
	require.NoError(t, err)

	expectedOnDemand := (twoWeeks*50000*0.00000025 + twoWeeks*50000*0.00000125) / 14 * 30.4
	capacity := 50000.0 / 300 / 0.7
	expectedOptimal := capacity*730*0.00013 + capacity*730*0.00065

	assert.Equal(t, models.BillingOnDemand, result.CurrentMode)
	assert.Equal(t, models.BillingProvisioned, result.RecommendedMode)
	assert.InDelta(t, expectedOnDemand, result.OnDemandMonthlyCost, 1e-6)
	assert.InDelta(t, expectedOptimal, result.OptimalProvisionedMonthlyCost, 1e-6)
	assert.InDelta(t, expectedOnDemand-expectedOptimal, result.PotentialMonthlySavings, 1e-6)

	require.NotNil(t, result.Bounds)
	assert.Equal(t, int64(capacity), result.Bounds.MinRead)
	assert.Equal(t, int64(capacity), result.Bounds.MaxRead)
	assert.Equal(t, int64(capacity), result.Bounds.MinWrite)
	assert.Equal(t, int64(capacity), result.Bounds.MaxWrite)
	assert.Empty(t, result.Notes)
}

func TestCapacityMode_BoundsFloorAtOne(t *testing.T) {
	r := newTestRecommender()
	// 0.5 units per second needs well under one unit of capacity
	usage := constant(150, twoWeeks, fiveMinutes)

	result, err := r.CapacityMode(CapacityModeInput{
		Table:  onDemandTable(),
		Reads:  usage,
		Writes: usage,
		Period: fiveMinutes,
		Days:   14,
		Prices: testPrices(),
	})
	require.NoError(t, err)

	if result.RecommendedMode == models.BillingProvisioned {
		require.NotNil(t, result.Bounds)
		assert.GreaterOrEqual(t, result.Bounds.MinRead, int64(1))
		assert.GreaterOrEqual(t, result.Bounds.MinWrite, int64(1))
	}
}

func TestCapacityMode_MissingSeriesFallsBackToCurrentCost(t *testing.T) {
	r := newTestRecommender()

	result, err := r.CapacityMode(CapacityModeInput{
		Table:  provisionedTable(10, 10),
		Reads:  constant(300, 100, fiveMinutes),
		Period: fiveMinutes,
		Days:   14,
		Prices: testPrices(),
	})
	require.NoError(t, err)

	assert.Equal(t, result.CurrentProvisionedMonthlyCost, result.OptimalProvisionedMonthlyCost)
	assert.Nil(t, result.Bounds)
}

func TestCapacityMode_VariableWorkloadNote(t *testing.T) {
	r := newTestRecommender()
	// A short burst every tenth sample never sustains a scale-out
	usage := generate(twoWeeks, fiveMinutes, func(i int) float64 {
		if i%10 == 9 {
			return 100000
		}
		return 1000
	})

	result, err := r.CapacityMode(CapacityModeInput{
		Table:  onDemandTable(),
		Reads:  usage,
		Writes: usage,
		Period: fiveMinutes,
		Days:   14,
		Prices: testPrices(),
	})
	require.NoError(t, err)

	assert.Equal(t, models.BillingProvisioned, result.RecommendedMode)
	assert.Contains(t, result.Notes, models.NoteVariableWorkload)
}

func TestCapacityMode_GrowingWorkloadNote(t *testing.T) {
	r := newTestRecommender()
	usage := generate(twoWeeks, fiveMinutes, func(i int) float64 {
		return 1000 + 4000*float64(i)/twoWeeks
	})

	result, err := r.CapacityMode(CapacityModeInput{
		Table:  onDemandTable(),
		Reads:  usage,
		Writes: usage,
		Period: fiveMinutes,
		Days:   14,
		Prices: testPrices(),
	})
	require.NoError(t, err)

	assert.Equal(t, models.BillingProvisioned, result.RecommendedMode)
	assert.Contains(t, result.Notes, models.NoteGrowingWorkload)
	assert.NotContains(t, result.Notes, models.NoteVariableWorkload)
}

func TestCapacityMode_SavingsInvariant(t *testing.T) {
	r := newTestRecommender()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 25; i++ {
		table := provisionedTable(rng.Int63n(500), rng.Int63n(500))
		if i%2 == 0 {
			table = onDemandTable()
		}
		scale := rng.Float64() * 100000
		reads := generate(500, fiveMinutes, func(int) float64 { return rng.Float64() * scale })
		writes := generate(500, fiveMinutes, func(int) float64 { return rng.Float64() * scale / 4 })

		result, err := r.CapacityMode(CapacityModeInput{
			Table:  table,
			Reads:  reads,
			Writes: writes,
			Period: fiveMinutes,
			Days:   2,
			Prices: testPrices(),
		})
		require.NoError(t, err)

		cheapest := result.OnDemandMonthlyCost
		if result.OptimalProvisionedMonthlyCost < cheapest {
			cheapest = result.OptimalProvisionedMonthlyCost
		}
		expected := result.CurrentMonthlyCost - cheapest
		if expected < 0 {
			expected = 0
		}
		assert.GreaterOrEqual(t, result.PotentialMonthlySavings, 0.0)
		assert.InDelta(t, expected, result.PotentialMonthlySavings, 1e-9)
		if result.OnDemandMonthlyCost < result.OptimalProvisionedMonthlyCost {
			assert.Equal(t, models.BillingOnDemand, result.RecommendedMode)
		}
	}
}

func TestCapacityMode_InvalidInput(t *testing.T) {
	r := newTestRecommender()

	tests := []struct {
		name  string
		input CapacityModeInput
		check func(error) bool
	}{
		{
			name:  "missing table",
			input: CapacityModeInput{Period: fiveMinutes, Days: 14, Prices: testPrices()},
			check: apperrors.IsInvalidInput,
		},
		{
			name:  "zero days",
			input: CapacityModeInput{Table: onDemandTable(), Period: fiveMinutes, Prices: testPrices()},
			check: apperrors.IsInvalidInput,
		},
		{
			name:  "zero period",
			input: CapacityModeInput{Table: onDemandTable(), Days: 14, Prices: testPrices()},
			check: apperrors.IsInvalidInput,
		},
		{
			name: "IA prices missing",
			input: CapacityModeInput{
				Table:  &models.Table{Name: "t", Region: "us-east-1", Class: models.ClassInfrequentAccess},
				Period: fiveMinutes, Days: 14,
				Prices: models.PriceTable{models.PriceRCUHour: 1, models.PriceWCUHour: 1},
			},
			check: apperrors.IsPriceTableIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.CapacityMode(tt.input)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error kind: %v", err)
		})
	}
}
