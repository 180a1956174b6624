package pricing

import (
	"time"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
)

// DefaultCacheTTL keeps fetched prices for one run and a bit beyond
const DefaultCacheTTL = 24 * time.Hour

// NewProvider creates a pricing provider from config. Every provider is wrapped
// in a cache so each region is fetched once.
func NewProvider(config *Config) (Provider, error) {
	var provider Provider

	switch {
	case len(config.Prices) > 0:
		provider = NewStaticProvider(config.Prices)
	case config.Provider == "aws" || config.Provider == "":
		provider = NewAWSProvider(config.Profile)
	case config.Provider == "file":
		fp, err := NewFileProvider(config.PricesFile)
		if err != nil {
			return nil, err
		}
		provider = fp
	case config.Provider == "default":
		provider = NewDefaultProvider()
	default:
		return nil, apperrors.InvalidInput("unknown pricing provider: %s", config.Provider)
	}

	ttl := config.CacheTTL
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	return NewCachedProvider(provider, ttl), nil
}
