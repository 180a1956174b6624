// Package apperrors classifies failures so the scanner can decide how far they propagate.
package apperrors

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the propagation class of an error
type Kind int

const (
	// KindUnknown is any error that was never classified
	KindUnknown Kind = iota
	// KindInvalidInput aborts a run before any task executes
	KindInvalidInput
	// KindUpstreamService is a metric, metadata or pricing fetch failure
	KindUpstreamService
	// KindPriceTableIncomplete fails every task of the affected region
	KindPriceTableIncomplete
	// KindAnalyzer is unexpected data or a bug inside one analyzer
	KindAnalyzer
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindUpstreamService:
		return "UpstreamServiceError"
	case KindPriceTableIncomplete:
		return "PriceTableIncomplete"
	case KindAnalyzer:
		return "AnalyzerError"
	default:
		return "Unknown"
	}
}

// Error is a classified error
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Cause lets errors.Cause stop at the classified error
func (e *Error) Cause() error {
	return e.Err
}

func newError(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// InvalidInput builds a fatal input validation error
func InvalidInput(format string, args ...interface{}) error {
	return newError(KindInvalidInput, "", errors.Errorf(format, args...))
}

// Upstream classifies a fetch failure from an external collaborator
func Upstream(err error, op string) error {
	return newError(KindUpstreamService, op, errors.WithStack(err))
}

// Upstreamf classifies and annotates a fetch failure
func Upstreamf(err error, format string, args ...interface{}) error {
	return Upstream(err, fmt.Sprintf(format, args...))
}

// PriceTableIncomplete reports required price keys that could not be resolved
func PriceTableIncomplete(region string, missing []string) error {
	return newError(KindPriceTableIncomplete, "pricing",
		errors.Errorf("could not fetch pricing for: %v in %s", missing, region))
}

// Analyzer classifies a failure inside one analyzer
func Analyzer(err error, analyzer string) error {
	return newError(KindAnalyzer, analyzer, err)
}

// KindOf returns the kind of the outermost classified error in the chain.
// Context deadlines and cancellations are upstream failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return KindUpstreamService
	}
	return KindUnknown
}

// IsInvalidInput reports whether err aborts the run
func IsInvalidInput(err error) bool {
	return KindOf(err) == KindInvalidInput
}

// IsPriceTableIncomplete reports whether err fails a whole region
func IsPriceTableIncomplete(err error) bool {
	return KindOf(err) == KindPriceTableIncomplete
}

// IsUpstream reports whether err came from an external collaborator
func IsUpstream(err error) bool {
	return KindOf(err) == KindUpstreamService
}
