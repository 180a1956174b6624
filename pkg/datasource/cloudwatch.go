package datasource

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// CloudWatchSource reads DynamoDB metrics with batched GetMetricData calls
type CloudWatchSource struct {
	client func(region string) (cloudwatchiface.CloudWatchAPI, error)
}

func NewCloudWatchSource(sessions *Sessions) *CloudWatchSource {
	return &CloudWatchSource{
		client: func(region string) (cloudwatchiface.CloudWatchAPI, error) {
			sess, err := sessions.Get(region)
			if err != nil {
				return nil, err
			}
			return cloudwatch.New(sess), nil
		},
	}
}

func (c *CloudWatchSource) Name() string {
	return "CloudWatch"
}

// GetMetricData splits queries into batches of MaxQueriesPerCall, follows NextToken
// pagination and merges the datapoints per query ID.
func (c *CloudWatchSource) GetMetricData(ctx context.Context, region string, queries []MetricQuery, start, end time.Time) (map[string]models.Series, error) {
	client, err := c.client(region)
	if err != nil {
		return nil, apperrors.Upstream(err, "cloudwatch client")
	}

	results := make(map[string]models.Series)
	for i := 0; i < len(queries); i += MaxQueriesPerCall {
		batch := toMetricDataQueries(queries[i:min(i+MaxQueriesPerCall, len(queries))])

		var token *string
		for {
			input := &cloudwatch.GetMetricDataInput{
				MetricDataQueries: batch,
				StartTime:         aws.Time(start),
				EndTime:           aws.Time(end),
				NextToken:         token,
			}

			var out *cloudwatch.GetMetricDataOutput
			err := RetryThrottled(ctx, "GetMetricData", func() error {
				var err error
				out, err = client.GetMetricDataWithContext(ctx, input)
				return err
			})
			if err != nil {
				return nil, apperrors.Upstreamf(err, "GetMetricData in %s", region)
			}

			for _, r := range out.MetricDataResults {
				id := aws.StringValue(r.Id)
				for j, ts := range r.Timestamps {
					if j >= len(r.Values) {
						break
					}
					results[id] = append(results[id], models.Sample{
						Timestamp: aws.TimeValue(ts),
						Value:     aws.Float64Value(r.Values[j]),
					})
				}
			}

			if aws.StringValue(out.NextToken) == "" {
				break
			}
			token = out.NextToken
		}
	}

	for _, series := range results {
		series.SortByTime()
	}
	return results, nil
}

func toMetricDataQueries(queries []MetricQuery) []*cloudwatch.MetricDataQuery {
	out := make([]*cloudwatch.MetricDataQuery, 0, len(queries))
	for _, q := range queries {
		dims := []*cloudwatch.Dimension{{
			Name:  aws.String("TableName"),
			Value: aws.String(q.Table),
		}}
		if q.Index != "" {
			dims = append(dims, &cloudwatch.Dimension{
				Name:  aws.String("GlobalSecondaryIndexName"),
				Value: aws.String(q.Index),
			})
		}

		out = append(out, &cloudwatch.MetricDataQuery{
			Id: aws.String(q.ID),
			MetricStat: &cloudwatch.MetricStat{
				Metric: &cloudwatch.Metric{
					Namespace:  aws.String(Namespace),
					MetricName: aws.String(q.Metric),
					Dimensions: dims,
				},
				Period: aws.Int64(int64(q.Period / time.Second)),
				Stat:   aws.String(q.Stat),
			},
			ReturnData: aws.Bool(true),
		})
	}
	return out
}
