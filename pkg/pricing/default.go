package pricing

import (
	"context"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/logger"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// usEast1Prices are the published us-east-1 list prices
var usEast1Prices = models.PriceTable{
	models.PriceReadRequest:     0.00000025,
	models.PriceWriteRequest:    0.00000125,
	models.PriceRCUHour:         0.00013,
	models.PriceWCUHour:         0.00065,
	models.PriceIARead:          0.00000031,
	models.PriceIAWrite:         0.00000156,
	models.PriceIARCUHour:       0.00016,
	models.PriceIAWCUHour:       0.00081,
	models.PriceStandardStorage: 0.25,
	models.PriceIAStorage:       0.10,
}

// DefaultProvider provides fallback pricing when the Pricing API is unreachable.
// Every region gets us-east-1 prices.
type DefaultProvider struct{}

func NewDefaultProvider() *DefaultProvider {
	return &DefaultProvider{}
}

func (d *DefaultProvider) Name() string {
	return "default"
}

func (d *DefaultProvider) PriceTable(ctx context.Context, region string) (models.PriceTable, error) {
	if region != "us-east-1" {
		logger.Warnf("Using us-east-1 list prices for %s; savings are approximate", region)
	}
	return usEast1Prices.WithAliases(), nil
}

// StaticProvider serves one configured price table for all regions
type StaticProvider struct {
	prices models.PriceTable
}

func NewStaticProvider(prices models.PriceTable) *StaticProvider {
	return &StaticProvider{prices: prices.Clone()}
}

func (s *StaticProvider) Name() string {
	return "static"
}

func (s *StaticProvider) PriceTable(ctx context.Context, region string) (models.PriceTable, error) {
	return complete(region, s.prices)
}
