package models

import (
	"sort"
	"time"
)

// Sample represents a single metric sample
type Sample struct {
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Value     float64   `json:"value" yaml:"value"`
}

// Series is a timestamp-ordered sequence of samples for one metric
type Series []Sample

// Values returns the sample values in order
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, sample := range s {
		values[i] = sample.Value
	}
	return values
}

// Sum adds up every sample value
func (s Series) Sum() float64 {
	total := 0.0
	for _, sample := range s {
		total += sample.Value
	}
	return total
}

// Scaled divides every value by divisor, e.g. a 300s Sum into units per second
func (s Series) Scaled(divisor float64) []float64 {
	values := make([]float64, len(s))
	for i, sample := range s {
		values[i] = sample.Value / divisor
	}
	return values
}

// SortByTime orders the series by timestamp in place
func (s Series) SortByTime() {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Timestamp.Before(s[j].Timestamp)
	})
}
