package datasource

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/sirupsen/logrus"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/logger"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// DynamoDBSource reads table metadata from the DynamoDB control plane
type DynamoDBSource struct {
	client func(region string) (dynamodbiface.DynamoDBAPI, error)
}

func NewDynamoDBSource(sessions *Sessions) *DynamoDBSource {
	return &DynamoDBSource{
		client: func(region string) (dynamodbiface.DynamoDBAPI, error) {
			sess, err := sessions.Get(region)
			if err != nil {
				return nil, err
			}
			return dynamodb.New(sess), nil
		},
	}
}

// ListTables returns every table name in the region
func (d *DynamoDBSource) ListTables(ctx context.Context, region string) ([]string, error) {
	client, err := d.client(region)
	if err != nil {
		return nil, apperrors.Upstream(err, "dynamodb client")
	}

	var names []string
	err = RetryThrottled(ctx, "ListTables", func() error {
		names = names[:0]
		return client.ListTablesPagesWithContext(ctx, &dynamodb.ListTablesInput{},
			func(page *dynamodb.ListTablesOutput, lastPage bool) bool {
				names = append(names, aws.StringValueSlice(page.TableNames)...)
				return true
			})
	})
	if err != nil {
		return nil, apperrors.Upstreamf(err, "ListTables in %s", region)
	}
	return names, nil
}

// DescribeTable returns the table's billing, storage and index settings.
// Point-in-time recovery is looked up separately and left false when that lookup fails.
func (d *DynamoDBSource) DescribeTable(ctx context.Context, region, name string) (*models.Table, error) {
	client, err := d.client(region)
	if err != nil {
		return nil, apperrors.Upstream(err, "dynamodb client")
	}

	var out *dynamodb.DescribeTableOutput
	err = RetryThrottled(ctx, "DescribeTable", func() error {
		var err error
		out, err = client.DescribeTableWithContext(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)})
		return err
	})
	if err != nil {
		return nil, apperrors.Upstreamf(err, "DescribeTable %s in %s", name, region)
	}

	table := tableFromDescription(region, out.Table)

	backups, err := client.DescribeContinuousBackupsWithContext(ctx, &dynamodb.DescribeContinuousBackupsInput{
		TableName: aws.String(name),
	})
	if err != nil {
		logger.WithFields(logrus.Fields{"region": region, "table": name}).Debugf("continuous backups lookup failed: %v", err)
	} else if desc := backups.ContinuousBackupsDescription; desc != nil && desc.PointInTimeRecoveryDescription != nil {
		table.PointInTimeRecovery = aws.StringValue(desc.PointInTimeRecoveryDescription.PointInTimeRecoveryStatus) == dynamodb.PointInTimeRecoveryStatusEnabled
	}

	return table, nil
}

func tableFromDescription(region string, desc *dynamodb.TableDescription) *models.Table {
	table := &models.Table{
		Region:      region,
		BillingMode: models.BillingProvisioned,
		Class:       models.ClassStandard,
	}
	if desc == nil {
		return table
	}

	table.Name = aws.StringValue(desc.TableName)
	table.SizeBytes = aws.Int64Value(desc.TableSizeBytes)
	table.ItemCount = aws.Int64Value(desc.ItemCount)
	table.DeletionProtection = aws.BoolValue(desc.DeletionProtectionEnabled)

	if desc.BillingModeSummary != nil {
		table.BillingMode = models.ParseBillingMode(aws.StringValue(desc.BillingModeSummary.BillingMode))
	}
	if desc.TableClassSummary != nil {
		table.Class = models.ParseTableClass(aws.StringValue(desc.TableClassSummary.TableClass))
	}
	if pt := desc.ProvisionedThroughput; pt != nil {
		table.ProvisionedRead = aws.Int64Value(pt.ReadCapacityUnits)
		table.ProvisionedWrite = aws.Int64Value(pt.WriteCapacityUnits)
	}

	for _, gsi := range desc.GlobalSecondaryIndexes {
		idx := models.Index{Name: aws.StringValue(gsi.IndexName)}
		if pt := gsi.ProvisionedThroughput; pt != nil {
			idx.ProvisionedRead = aws.Int64Value(pt.ReadCapacityUnits)
			idx.ProvisionedWrite = aws.Int64Value(pt.WriteCapacityUnits)
		}
		table.Indexes = append(table.Indexes, idx)
	}
	return table
}
