package scanner

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/config"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// Discover describes every table of the plan. A table that cannot be described is
// reported with its error instead of failing the inventory.
func (s *Scanner) Discover(ctx context.Context, plan config.RegionPlan) ([]models.TableSummary, error) {
	if len(plan) == 0 {
		return nil, apperrors.InvalidInput("no regions to discover")
	}
	expanded, err := s.expand(ctx, plan)
	if err != nil {
		return nil, err
	}

	type ref struct{ region, table string }
	var refs []ref
	for _, rt := range expanded {
		for _, table := range rt.Tables {
			refs = append(refs, ref{rt.Region, table})
		}
	}

	summaries := make([]models.TableSummary, len(refs))
	if len(refs) == 0 {
		return summaries, nil
	}

	var g errgroup.Group
	g.SetLimit(min(s.opts.Workers, len(refs)))
	for i, r := range refs {
		i, r := i, r
		g.Go(func() error {
			table, err := s.sources.Metadata.DescribeTable(ctx, r.region, r.table)
			if err != nil {
				summaries[i] = models.TableSummary{TableName: r.table, Region: r.region, Error: err.Error()}
				return nil
			}
			summaries[i] = table.Summarize()
			return nil
		})
	}
	_ = g.Wait()
	return summaries, nil
}
