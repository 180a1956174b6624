package datasource

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/costexplorer"
	"github.com/aws/aws-sdk-go/service/costexplorer/costexploreriface"
	"github.com/sirupsen/logrus"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/logger"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// costExplorerRegion hosts the Cost Explorer endpoint
const costExplorerRegion = "us-east-1"

// reservedLookback is how far back billed usage is searched for reserved capacity
const reservedLookback = 30 * 24 * time.Hour

// CostExplorerSource detects DynamoDB reserved capacity from billed usage types.
// Reserved capacity shows up as usage types containing "Commit".
type CostExplorerSource struct {
	client func() (costexploreriface.CostExplorerAPI, error)
	now    func() time.Time
}

func NewCostExplorerSource(sessions *Sessions) *CostExplorerSource {
	return &CostExplorerSource{
		client: func() (costexploreriface.CostExplorerAPI, error) {
			sess, err := sessions.Get(costExplorerRegion)
			if err != nil {
				return nil, err
			}
			return costexplorer.New(sess), nil
		},
		now: time.Now,
	}
}

// ReservedCapacity returns ReservedUnknown when Cost Explorer cannot be queried
func (c *CostExplorerSource) ReservedCapacity(ctx context.Context, region string) models.ReservedStatus {
	log := logger.WithFields(logrus.Fields{"region": region})

	client, err := c.client()
	if err != nil {
		log.Warnf("reserved capacity check unavailable: %v", err)
		return models.ReservedUnknown
	}

	now := c.now().UTC()
	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &costexplorer.DateInterval{
			Start: aws.String(now.Add(-reservedLookback).Format("2006-01-02")),
			End:   aws.String(now.Format("2006-01-02")),
		},
		Granularity: aws.String(costexplorer.GranularityMonthly),
		Metrics:     aws.StringSlice([]string{"UnblendedCost"}),
		Filter: &costexplorer.Expression{And: []*costexplorer.Expression{
			{Dimensions: &costexplorer.DimensionValues{
				Key:    aws.String(costexplorer.DimensionService),
				Values: aws.StringSlice([]string{"Amazon DynamoDB"}),
			}},
			{Dimensions: &costexplorer.DimensionValues{
				Key:    aws.String(costexplorer.DimensionRegion),
				Values: aws.StringSlice([]string{region}),
			}},
		}},
		GroupBy: []*costexplorer.GroupDefinition{{
			Type: aws.String(costexplorer.GroupDefinitionTypeDimension),
			Key:  aws.String(costexplorer.DimensionUsageType),
		}},
	}

	for {
		var out *costexplorer.GetCostAndUsageOutput
		err := RetryThrottled(ctx, "GetCostAndUsage", func() error {
			var err error
			out, err = client.GetCostAndUsageWithContext(ctx, input)
			return err
		})
		if err != nil {
			log.Warnf("reserved capacity check failed: %v", err)
			return models.ReservedUnknown
		}

		for _, period := range out.ResultsByTime {
			for _, group := range period.Groups {
				if len(group.Keys) > 0 && strings.Contains(aws.StringValue(group.Keys[0]), "Commit") {
					return models.ReservedYes
				}
			}
		}

		if aws.StringValue(out.NextPageToken) == "" {
			return models.ReservedNo
		}
		input.NextPageToken = out.NextPageToken
	}
}
