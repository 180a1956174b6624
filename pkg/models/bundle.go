package models

import "encoding/json"

// AnalyzerName identifies one of the per-table analyzers
type AnalyzerName string

const (
	AnalyzerCapacityMode AnalyzerName = "capacityMode"
	AnalyzerTableClass   AnalyzerName = "tableClass"
	AnalyzerUtilization  AnalyzerName = "utilization"
	AnalyzerUnusedIndex  AnalyzerName = "unusedGsi"
)

// Analyzers lists every analyzer in the order they run
var Analyzers = []AnalyzerName{
	AnalyzerCapacityMode,
	AnalyzerTableClass,
	AnalyzerUtilization,
	AnalyzerUnusedIndex,
}

// Outcome is the result or the error of one analyzer call. Exactly one field is set.
type Outcome[T any] struct {
	Result *T
	Err    error
}

// Succeeded wraps a result
func Succeeded[T any](result *T) Outcome[T] {
	return Outcome[T]{Result: result}
}

// Failed wraps an error marker
func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{Err: err}
}

// OK reports whether the analyzer produced a result
func (o Outcome[T]) OK() bool {
	return o.Err == nil && o.Result != nil
}

func (o Outcome[T]) MarshalJSON() ([]byte, error) {
	if o.Err != nil {
		return json.Marshal(map[string]string{"error": o.Err.Error()})
	}
	return json.Marshal(o.Result)
}

// AnalyzerFailure records why one analyzer slot holds an error
type AnalyzerFailure struct {
	Analyzer AnalyzerName `json:"analyzer"`
	Kind     string       `json:"kind"`
	Message  string       `json:"message"`
}

// Bundle holds every analyzer outcome for one table
type Bundle struct {
	// Position of the originating task, used for stable ordering
	TaskIndex int    `json:"-"`
	Region    string `json:"region"`
	TableName string `json:"tableName"`

	CapacityMode Outcome[CapacityModeResult] `json:"capacityMode"`
	TableClass   Outcome[TableClassResult]   `json:"tableClass"`
	Utilization  Outcome[UtilizationResult]  `json:"utilization"`
	UnusedIndex  Outcome[UnusedIndexResult]  `json:"unusedGsi"`

	Errors []AnalyzerFailure `json:"errors"`
}

// HasErrors reports whether any analyzer failed
func (b *Bundle) HasErrors() bool {
	return len(b.Errors) > 0
}
