package config

// Thresholds are the decision constants shared by every recommender.
// The value is copied into each analyzer and never mutated during a run.
type Thresholds struct {
	// Utilization percentages for the right-sizer
	UtilizationUpper float64 `yaml:"utilizationUpper"`
	UtilizationLower float64 `yaml:"utilizationLower"`

	// Minimum monthly saving (USD) for a recommendation to be surfaced
	MinSavings float64 `yaml:"minMonthlySavings"`

	// Storage-to-throughput cost ratios. The gap between them is hysteresis.
	StandardToIARatio float64 `yaml:"standardToIARatio"`
	IAToStandardRatio float64 `yaml:"iaToStandardRatio"`

	// Cost multipliers when moving from standard to infrequent access.
	// The reverse move applies their reciprocals.
	IAStorageFactor    float64 `yaml:"iaStorageFactor"`
	IAThroughputFactor float64 `yaml:"iaThroughputFactor"`

	// Throughput cost at or below this is negligible
	ThroughputEpsilon float64 `yaml:"throughputEpsilon"`
	// Ratio reported when throughput cost is negligible
	NegligibleThroughputRatio float64 `yaml:"negligibleThroughputRatio"`
	// Storage cost that justifies IA on its own when throughput is negligible
	StorageOnlyCost float64 `yaml:"storageOnlyCost"`

	// Right-sizing floor and headroom over observed peak
	MinProvisionedCapacity int64   `yaml:"minProvisionedCapacity"`
	PeakHeadroom           float64 `yaml:"peakHeadroom"`
}

// DefaultThresholds derives the storage ratios from list prices: IA storage is 60%
// cheaper than standard while IA throughput costs about 2.5x as much.
func DefaultThresholds() Thresholds {
	return Thresholds{
		UtilizationUpper:          45,
		UtilizationLower:          30,
		MinSavings:                1.0,
		StandardToIARatio:         0.25 / 0.6,
		IAToStandardRatio:         0.2 / 1.5,
		IAStorageFactor:           0.4,
		IAThroughputFactor:        2.5,
		ThroughputEpsilon:         0.01,
		NegligibleThroughputRatio: 999.99,
		StorageOnlyCost:           1.0,
		MinProvisionedCapacity:    5,
		PeakHeadroom:              1.2,
	}
}
