package pricing

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/pricing"
	"github.com/aws/aws-sdk-go/service/pricing/pricingiface"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/datasource"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/logger"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// The Pricing API is only served from a few regions
const pricingRegion = "us-east-1"

const (
	serviceCode      = "AmazonDynamoDB"
	pageSize         = 100
	familyThroughput = "Amazon DynamoDB PayPerRequest Throughput"
	familyIOPS       = "Provisioned IOPS"
	familyStorage    = "Database Storage"
)

// AWSProvider reads DynamoDB list prices from the AWS Pricing API
type AWSProvider struct {
	client func() (pricingiface.PricingAPI, error)
}

func NewAWSProvider(profile string) *AWSProvider {
	sessions := datasource.NewSessions(profile)
	return &AWSProvider{
		client: func() (pricingiface.PricingAPI, error) {
			sess, err := sessions.Get(pricingRegion)
			if err != nil {
				return nil, err
			}
			return pricing.New(sess), nil
		},
	}
}

func (a *AWSProvider) Name() string {
	return "aws"
}

func (a *AWSProvider) PriceTable(ctx context.Context, region string) (models.PriceTable, error) {
	client, err := a.client()
	if err != nil {
		return nil, apperrors.Upstream(err, "pricing client")
	}

	table := make(models.PriceTable)
	for _, family := range []string{familyThroughput, familyIOPS, familyStorage} {
		if err := a.fetchFamily(ctx, client, region, family, table); err != nil {
			return nil, err
		}
	}

	logger.WithFields(logrus.Fields{
		"region": region,
		"keys":   len(table),
	}).Debug("Fetched DynamoDB prices")

	return complete(region, table)
}

func (a *AWSProvider) fetchFamily(ctx context.Context, client pricingiface.PricingAPI, region, family string, table models.PriceTable) error {
	input := &pricing.GetProductsInput{
		ServiceCode: aws.String(serviceCode),
		Filters: []*pricing.Filter{
			{Type: aws.String(pricing.FilterTypeTermMatch), Field: aws.String("regionCode"), Value: aws.String(region)},
			{Type: aws.String(pricing.FilterTypeTermMatch), Field: aws.String("productFamily"), Value: aws.String(family)},
		},
		MaxResults: aws.Int64(pageSize),
	}

	for {
		var out *pricing.GetProductsOutput
		err := datasource.RetryThrottled(ctx, "GetProducts", func() error {
			var err error
			out, err = client.GetProductsWithContext(ctx, input)
			return err
		})
		if err != nil {
			return apperrors.Upstreamf(err, "pricing %s %s", region, family)
		}

		for _, raw := range out.PriceList {
			item, err := decodeProduct(raw)
			if err != nil {
				return apperrors.Upstreamf(err, "pricing %s %s", region, family)
			}
			key, ok := priceKeyFor(family, item.Product.Attributes)
			if !ok {
				continue
			}
			if _, seen := table[key]; seen {
				continue
			}
			if price, ok := item.firstPositivePrice(); ok {
				table[key] = price
			}
		}

		if aws.StringValue(out.NextToken) == "" {
			return nil
		}
		input.NextToken = out.NextToken
	}
}

type productAttributes struct {
	Group      string `json:"group"`
	UsageType  string `json:"usagetype"`
	VolumeType string `json:"volumeType"`
}

type priceListItem struct {
	Product struct {
		ProductFamily string            `json:"productFamily"`
		Attributes    productAttributes `json:"attributes"`
	} `json:"product"`
	Terms struct {
		OnDemand map[string]struct {
			PriceDimensions map[string]struct {
				PricePerUnit map[string]string `json:"pricePerUnit"`
			} `json:"priceDimensions"`
		} `json:"OnDemand"`
	} `json:"terms"`
}

// decodeProduct converts the SDK's generic JSON document into a typed item
func decodeProduct(raw aws.JSONValue) (*priceListItem, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode price list item")
	}
	var item priceListItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, errors.Wrap(err, "failed to decode price list item")
	}
	return &item, nil
}

// firstPositivePrice skips free-tier dimensions priced at zero
func (p *priceListItem) firstPositivePrice() (float64, bool) {
	for _, term := range p.Terms.OnDemand {
		for _, dim := range term.PriceDimensions {
			usd, ok := dim.PricePerUnit["USD"]
			if !ok {
				continue
			}
			price, err := strconv.ParseFloat(usd, 64)
			if err != nil || price <= 0 {
				continue
			}
			return price, true
		}
	}
	return 0, false
}

var throughputGroups = map[string]models.PriceKey{
	"DDB-ReadUnits":    models.PriceReadRequest,
	"DDB-WriteUnits":   models.PriceWriteRequest,
	"DDB-ReadUnitsIA":  models.PriceIARead,
	"DDB-WriteUnitsIA": models.PriceIAWrite,
}

// priceKeyFor maps a product's attributes to the price key it provides
func priceKeyFor(family string, attrs productAttributes) (models.PriceKey, bool) {
	switch family {
	case familyThroughput:
		if key, ok := throughputGroups[attrs.Group]; ok {
			return key, true
		}
		for group, key := range throughputGroups {
			if strings.HasSuffix(attrs.UsageType, group) {
				return key, true
			}
		}
	case familyIOPS:
		ia := strings.Contains(attrs.UsageType, "IA-")
		switch {
		case strings.Contains(attrs.UsageType, "ReadCapacityUnit-Hrs"):
			if ia {
				return models.PriceIARCUHour, true
			}
			return models.PriceRCUHour, true
		case strings.Contains(attrs.UsageType, "WriteCapacityUnit-Hrs"):
			if ia {
				return models.PriceIAWCUHour, true
			}
			return models.PriceWCUHour, true
		}
	case familyStorage:
		if strings.Contains(attrs.VolumeType, "- IA") {
			return models.PriceIAStorage, true
		}
		return models.PriceStandardStorage, true
	}
	return "", false
}
