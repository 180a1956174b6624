package scanner

import (
	"time"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/config"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// Plan is one analysis run: which tables, over how many days, ending when
type Plan struct {
	Regions config.RegionPlan
	Days    int

	// End of the analysis window, now when zero
	End time.Time
}

// Validate rejects plans that cannot produce a single task
func (p Plan) Validate() error {
	if len(p.Regions) == 0 {
		return apperrors.InvalidInput("no regions to analyze")
	}
	if p.Days < 1 || p.Days > config.MaxWindowDays {
		return apperrors.InvalidInput("analysis window must be 1-%d days, got %d", config.MaxWindowDays, p.Days)
	}
	seen := make(map[string]bool, len(p.Regions))
	for _, rt := range p.Regions {
		if rt.Region == "" {
			return apperrors.InvalidInput("region name must not be empty")
		}
		if seen[rt.Region] {
			return apperrors.InvalidInput("region %s listed twice", rt.Region)
		}
		seen[rt.Region] = true
		for _, table := range rt.Tables {
			if table == "" {
				return apperrors.InvalidInput("empty table name in region %s", rt.Region)
			}
		}
	}
	return nil
}

// Task is the analysis of one table. Prices are shared read-only within a region.
type Task struct {
	Index      int
	Region     string
	Table      string
	WindowDays int
	Start      time.Time
	End        time.Time

	Prices   models.PriceTable
	Reserved models.ReservedStatus

	// Set when the region's price table could not be resolved
	RegionErr error
}
