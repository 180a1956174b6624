package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

func repeat(v float64, n int) models.Series {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return daily(values...)
}

func sizedTable(class models.TableClass, sizeGiB float64) *models.Table {
	table := onDemandTable()
	table.Class = class
	table.SizeBytes = int64(sizeGiB * gib)
	return table
}

func TestTableClass_LargeStorageLowThroughputRecommendsIA(t *testing.T) {
	r := newTestRecommender()

	result, err := r.TableClass(TableClassInput{
		Table:    sizedTable(models.ClassStandard, 100),
		Reads:    repeat(100, 14),
		Writes:   repeat(50, 14),
		Days:     14,
		Prices:   testPrices(),
		Reserved: models.ReservedNo,
	})
	require.NoError(t, err)

	storage := 100 * 0.25
	throughput := (1400*0.00000025 + 700*0.00000125) * 30.4 / 14

	assert.Equal(t, models.ClassInfrequentAccess, result.RecommendedClass)
	assert.InDelta(t, storage, result.MonthlyStorageCost, 1e-9)
	assert.InDelta(t, throughput, result.MonthlyThroughputCost, 1e-9)
	assert.Equal(t, 999.99, result.StorageToThroughputRatio)
	assert.InDelta(t, storage+throughput-(storage*0.4+throughput*2.5), result.PotentialMonthlySavings, 1e-9)
	assert.Empty(t, result.Notes)
}

func TestTableClass_HighThroughputStaysStandard(t *testing.T) {
	r := newTestRecommender()

	result, err := r.TableClass(TableClassInput{
		Table:    sizedTable(models.ClassStandard, 1),
		Reads:    repeat(999999999, 14),
		Writes:   repeat(999999999, 14),
		Days:     14,
		Prices:   testPrices(),
		Reserved: models.ReservedNo,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ClassStandard, result.RecommendedClass)
	assert.Equal(t, 0.0, result.PotentialMonthlySavings)
	assert.Less(t, result.StorageToThroughputRatio, 0.01)
}

func TestTableClass_ThroughputHeavyIAMovesToStandard(t *testing.T) {
	r := newTestRecommender()

	result, err := r.TableClass(TableClassInput{
		Table:    sizedTable(models.ClassInfrequentAccess, 1),
		Reads:    repeat(10000000, 14),
		Writes:   repeat(10000000, 14),
		Days:     14,
		Prices:   testPrices(),
		Reserved: models.ReservedNo,
	})
	require.NoError(t, err)

	storage := result.MonthlyStorageCost
	throughput := result.MonthlyThroughputCost
	assert.Equal(t, models.ClassStandard, result.RecommendedClass)
	assert.InDelta(t, storage+throughput-(storage*2.5+throughput*0.4), result.PotentialMonthlySavings, 1e-9)
}

func TestTableClass_Hysteresis(t *testing.T) {
	r := newTestRecommender()

	// storage 2.5 against throughput 2.5/0.3: between both breakeven ratios
	reads := (2.5 / 0.3) / (0.00000025 * 30.4 / 14)

	for _, class := range []models.TableClass{models.ClassStandard, models.ClassInfrequentAccess} {
		t.Run(string(class), func(t *testing.T) {
			result, err := r.TableClass(TableClassInput{
				Table:    sizedTable(class, 10),
				Reads:    daily(reads),
				Days:     14,
				Prices:   testPrices(),
				Reserved: models.ReservedNo,
			})
			require.NoError(t, err)

			assert.InDelta(t, 0.3, result.StorageToThroughputRatio, 1e-6)
			assert.Equal(t, class, result.RecommendedClass)
			assert.Equal(t, 0.0, result.PotentialMonthlySavings)
		})
	}
}

func TestTableClass_SavingsFloor(t *testing.T) {
	r := newTestRecommender()
	// 2 GiB with no traffic saves 0.5 - 0.2 = 0.3 per month
	input := TableClassInput{
		Table:    sizedTable(models.ClassStandard, 2),
		Days:     14,
		Prices:   testPrices(),
		Reserved: models.ReservedNo,
	}

	result, err := r.TableClass(input)
	require.NoError(t, err)
	assert.Equal(t, models.ClassStandard, result.RecommendedClass)
	assert.Equal(t, 0.0, result.PotentialMonthlySavings)

	lower := 0.1
	input.MinSavings = &lower
	result, err = r.TableClass(input)
	require.NoError(t, err)
	assert.Equal(t, models.ClassInfrequentAccess, result.RecommendedClass)
	assert.InDelta(t, 0.3, result.PotentialMonthlySavings, 1e-9)
}

func TestTableClass_ReservedCapacity(t *testing.T) {
	r := newTestRecommender()

	tests := []struct {
		name            string
		reserved        models.ReservedStatus
		wantClass       models.TableClass
		wantNote        models.AdvisoryNote
		wantSavingsZero bool
	}{
		{
			name:            "reserved capacity skips the analysis",
			reserved:        models.ReservedYes,
			wantClass:       models.ClassStandard,
			wantNote:        models.NoteReservedCapacity,
			wantSavingsZero: true,
		},
		{
			name:      "unknown status proceeds with a note",
			reserved:  models.ReservedUnknown,
			wantClass: models.ClassInfrequentAccess,
			wantNote:  models.NoteReservedUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := r.TableClass(TableClassInput{
				Table:    sizedTable(models.ClassStandard, 100),
				Days:     14,
				Prices:   testPrices(),
				Reserved: tt.reserved,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantClass, result.RecommendedClass)
			assert.Equal(t, []models.AdvisoryNote{tt.wantNote}, result.Notes)
			if tt.wantSavingsZero {
				assert.Equal(t, 0.0, result.PotentialMonthlySavings)
			} else {
				assert.Greater(t, result.PotentialMonthlySavings, 0.0)
			}
		})
	}
}

func TestTableClass_EmptyTable(t *testing.T) {
	r := newTestRecommender()

	result, err := r.TableClass(TableClassInput{
		Table:    sizedTable(models.ClassStandard, 0),
		Days:     14,
		Prices:   testPrices(),
		Reserved: models.ReservedNo,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ClassStandard, result.RecommendedClass)
	assert.Equal(t, 0.0, result.PotentialMonthlySavings)
}

func TestTableClass_MissingPrices(t *testing.T) {
	r := newTestRecommender()

	_, err := r.TableClass(TableClassInput{
		Table:    sizedTable(models.ClassStandard, 10),
		Days:     14,
		Reserved: models.ReservedNo,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsPriceTableIncomplete(err))
	assert.Contains(t, err.Error(), "standard_storage")
}
