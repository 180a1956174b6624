package storage

import (
	"context"
	"fmt"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// Store archives finished analysis runs. Nothing in the analysis reads it back.
type Store interface {
	SaveRun(ctx context.Context, report *models.AggregateReport) (*models.Run, error)
	ListRuns(ctx context.Context, limit int) ([]models.Run, error)
	GetRun(ctx context.Context, id string) (*models.Run, []models.Recommendation, error)

	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	Type string
	URL  string
}

// NewStore opens the configured store
func NewStore(cfg Config) (Store, error) {
	switch cfg.Type {
	case "postgres", "":
		return NewPostgresStore(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
}

// NewRun summarizes a report as an archive row
func NewRun(id string, report *models.AggregateReport) models.Run {
	return models.Run{
		ID:                  id,
		GeneratedAt:         report.GeneratedAt,
		Regions:             append([]string(nil), report.Regions...),
		AnalysisDays:        report.AnalysisDays,
		TableCount:          report.TableCount,
		RecommendationCount: report.RecommendationCount(),
		ErrorCount:          len(report.Errored),
		TotalMonthlySavings: report.TotalMonthlySavings,
	}
}

// flatten lists the report's recommendations in report order
func flatten(report *models.AggregateReport) []models.Recommendation {
	var out []models.Recommendation
	for _, t := range report.Recommended {
		out = append(out, t.Recommendations...)
	}
	return out
}
