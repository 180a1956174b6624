package scanner

import (
	"context"

	"github.com/pkg/errors"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// runAnalyzer runs one analyzer and captures its result or error in an Outcome.
// A panic becomes an AnalyzerError and never escapes the task.
func runAnalyzer[T any](ctx context.Context, name models.AnalyzerName, fn func(context.Context) (*T, error)) (outcome models.Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			outcome = models.Failed[T](apperrors.Analyzer(errors.Errorf("panic: %v", r), string(name)))
		}
	}()

	result, err := fn(ctx)
	if err != nil {
		return models.Failed[T](classify(ctx, name, err))
	}
	if result == nil {
		return models.Failed[T](apperrors.Analyzer(errors.New("no result"), string(name)))
	}
	return models.Succeeded(result)
}

// classify keeps classified errors as they are. Unclassified ones are upstream
// failures when the task context is done and analyzer failures otherwise.
func classify(ctx context.Context, name models.AnalyzerName, err error) error {
	if apperrors.KindOf(err) != apperrors.KindUnknown {
		return err
	}
	if ctx.Err() != nil {
		return apperrors.Upstream(err, string(name))
	}
	return apperrors.Analyzer(err, string(name))
}

func failure(name models.AnalyzerName, err error) models.AnalyzerFailure {
	return models.AnalyzerFailure{
		Analyzer: name,
		Kind:     apperrors.KindOf(err).String(),
		Message:  err.Error(),
	}
}

// record appends the failure of a failed outcome to the bundle
func record[T any](b *models.Bundle, name models.AnalyzerName, o models.Outcome[T]) {
	if o.Err != nil {
		b.Errors = append(b.Errors, failure(name, o.Err))
	}
}

// failAll puts err in every analyzer slot
func failAll(b *models.Bundle, err error) {
	b.CapacityMode = models.Failed[models.CapacityModeResult](err)
	b.TableClass = models.Failed[models.TableClassResult](err)
	b.Utilization = models.Failed[models.UtilizationResult](err)
	b.UnusedIndex = models.Failed[models.UnusedIndexResult](err)
	b.Errors = b.Errors[:0]
	for _, name := range models.Analyzers {
		b.Errors = append(b.Errors, failure(name, err))
	}
}
