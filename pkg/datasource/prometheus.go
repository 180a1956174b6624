package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/logger"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// ExporterPeriod is the CloudWatch period the exporter requests. Every scraped
// Sum sample is the total over one such period.
const ExporterPeriod = 5 * time.Minute

// PrometheusSource reads DynamoDB metrics scraped into Prometheus by the CloudWatch exporter,
// e.g. aws_dynamodb_consumed_read_capacity_units_sum{table_name="orders"}.
type PrometheusSource struct {
	client v1.API
	url    string

	// period of the exporter's samples
	period time.Duration
}

func NewPrometheusSource(url string) (*PrometheusSource, error) {
	client, err := api.NewClient(api.Config{
		Address: url,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	return &PrometheusSource{
		client: v1.NewAPI(client),
		url:    url,
		period: ExporterPeriod,
	}, nil
}

func (p *PrometheusSource) Name() string {
	return "Prometheus"
}

// IsAvailable checks that the server answers queries
func (p *PrometheusSource) IsAvailable(ctx context.Context) bool {
	_, _, err := p.client.Query(ctx, "up", time.Now())
	return err == nil
}

// GetMetricData runs one range query per metric query. Each step aggregates the
// exporter samples inside it, and samples are stamped with the start of their
// step like CloudWatch datapoints. The exporter does not carry the region, so
// region only annotates errors.
func (p *PrometheusSource) GetMetricData(ctx context.Context, region string, queries []MetricQuery, start, end time.Time) (map[string]models.Series, error) {
	results := make(map[string]models.Series, len(queries))
	for _, q := range queries {
		r := v1.Range{Start: start.Add(q.Period), End: end, Step: q.Period}
		series, err := p.queryRange(ctx, promQuery(q), r)
		if err != nil {
			return nil, apperrors.Upstreamf(err, "prometheus %s for %s in %s", q.Metric, q.Table, region)
		}
		if len(series) == 0 {
			continue
		}

		// An average exporter sample times the samples per step is the step total
		scale := 1.0
		if q.Stat == StatSum {
			scale = q.Period.Seconds() / p.exporterPeriod().Seconds()
		}
		for i := range series {
			series[i].Timestamp = series[i].Timestamp.Add(-q.Period)
			series[i].Value *= scale
		}
		results[q.ID] = series
	}
	return results, nil
}

func (p *PrometheusSource) exporterPeriod() time.Duration {
	if p.period <= 0 {
		return ExporterPeriod
	}
	return p.period
}

func (p *PrometheusSource) queryRange(ctx context.Context, query string, r v1.Range) (models.Series, error) {
	result, warnings, err := p.client.QueryRange(ctx, query, r)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	if len(warnings) > 0 {
		logger.Warnf("Prometheus: %v", warnings)
	}

	matrix, ok := result.(model.Matrix)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %s for query: %s", result.Type(), query)
	}

	var series models.Series
	for _, stream := range matrix {
		for _, pair := range stream.Values {
			series = append(series, models.Sample{
				Timestamp: pair.Timestamp.Time().UTC(),
				Value:     float64(pair.Value),
			})
		}
	}
	series.SortByTime()
	return series, nil
}

// promQuery aggregates the exporter series for one table or GSI over each step.
// Sum is averaged so the result does not depend on the scrape interval; the caller
// scales it to a step total. An empty index label matcher selects the base table.
func promQuery(q MetricQuery) string {
	name := fmt.Sprintf("aws_dynamodb_%s_%s", snakeCase(q.Metric), strings.ToLower(q.Stat))
	selector := fmt.Sprintf(`%s{table_name=%q,global_secondary_index_name=%q}[%s]`,
		name, q.Table, q.Index, model.Duration(q.Period))

	switch q.Stat {
	case StatMaximum:
		return fmt.Sprintf("max(max_over_time(%s))", selector)
	case StatAverage:
		return fmt.Sprintf("avg(avg_over_time(%s))", selector)
	default:
		return fmt.Sprintf("sum(avg_over_time(%s))", selector)
	}
}

// snakeCase turns a CloudWatch metric name into the exporter's spelling
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
