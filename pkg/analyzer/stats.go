package analyzer

import (
	"fmt"
	"math"
	"sort"
)

// CalculatePercentiles computes P50, P90, P95, P99, and peak from values
func CalculatePercentiles(values []float64) (*Percentiles, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return &Percentiles{
		Average: Mean(sorted),
		P50:     calculatePercentile(sorted, 50),
		P90:     calculatePercentile(sorted, 90),
		P95:     calculatePercentile(sorted, 95),
		P99:     calculatePercentile(sorted, 99),
		Peak:    sorted[len(sorted)-1],
		Min:     sorted[0],
	}, nil
}

// calculatePercentile computes the Nth percentile using linear interpolation
func calculatePercentile(sortedValues []float64, percentile float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if len(sortedValues) == 1 {
		return sortedValues[0]
	}

	rank := (percentile / 100.0) * float64(len(sortedValues)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sortedValues[lower]
	}

	fraction := rank - float64(lower)
	return sortedValues[lower] + (sortedValues[upper]-sortedValues[lower])*fraction
}

// Mean returns the arithmetic mean, 0 for no values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Max returns the largest value, 0 for no values
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		m = math.Max(m, v)
	}
	return m
}

// Min returns the smallest value, 0 for no values
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		m = math.Min(m, v)
	}
	return m
}

// Round rounds half away from zero to the given number of decimals
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// CalculateCoefficientOfVariation measures the relative variability
// High CV (>0.5) = spiky workload
// Low CV (<0.2) = steady workload
func CalculateCoefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	mean := Mean(values)
	if mean == 0 {
		return 0
	}

	sumSquaredDiff := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}

	return math.Sqrt(sumSquaredDiff/float64(len(values))) / mean
}

// AnalyzeUsagePattern classifies a series as steady, moderate, spiky or highly variable
func AnalyzeUsagePattern(values []float64) UsagePattern {
	if len(values) < 10 {
		return UsagePattern{Type: "unknown"}
	}

	cv := CalculateCoefficientOfVariation(values)

	switch {
	case cv < 0.15:
		return UsagePattern{Type: "steady", Variation: cv, Confidence: 0.95}
	case cv < 0.35:
		return UsagePattern{Type: "moderate", Variation: cv, Confidence: 0.85}
	case cv < 0.70:
		return UsagePattern{Type: "spiky", Variation: cv, Confidence: 0.80}
	default:
		return UsagePattern{Type: PatternHighlyVariable, Variation: cv, Confidence: 0.75}
	}
}
