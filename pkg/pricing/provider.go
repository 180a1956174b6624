package pricing

import (
	"context"
	"time"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// Provider defines the interface for DynamoDB pricing data
type Provider interface {
	// PriceTable returns the region's unit prices with aliases filled in. It fails
	// with PriceTableIncomplete when a required key cannot be resolved.
	PriceTable(ctx context.Context, region string) (models.PriceTable, error)
	Name() string
}

type Config struct {
	// aws, file or default
	Provider   string
	PricesFile string

	// Static prices used for every region, bypassing Provider
	Prices models.PriceTable

	CacheTTL time.Duration
	// AWS shared config profile
	Profile string
}

// complete checks the required keys and fills the aliases
func complete(region string, table models.PriceTable) (models.PriceTable, error) {
	if missing := table.Missing(); len(missing) > 0 {
		return nil, apperrors.PriceTableIncomplete(region, missing)
	}
	return table.WithAliases(), nil
}
