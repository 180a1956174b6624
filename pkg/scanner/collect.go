package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/datasource"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/recommender"
)

// dailyPeriod aggregates metrics per day for window totals
const dailyPeriod = 24 * time.Hour

// collector gathers the metrics one analyzer needs for one table
type collector struct {
	source datasource.MetricSource
	period time.Duration
	task   Task
	table  *models.Table
}

func (c *collector) fetch(ctx context.Context, queries []datasource.MetricQuery) (map[string]models.Series, error) {
	if len(queries) == 0 {
		return map[string]models.Series{}, nil
	}
	return c.source.GetMetricData(ctx, c.task.Region, queries, c.task.Start, c.task.End)
}

func (c *collector) query(id, index, metric, stat string, period time.Duration) datasource.MetricQuery {
	return datasource.MetricQuery{
		ID:     id,
		Table:  c.table.Name,
		Index:  index,
		Metric: metric,
		Stat:   stat,
		Period: period,
	}
}

func (c *collector) capacityMode(ctx context.Context) (recommender.CapacityModeInput, error) {
	metrics, err := c.fetch(ctx, []datasource.MetricQuery{
		c.query("cr", "", datasource.MetricConsumedRead, datasource.StatSum, c.period),
		c.query("cw", "", datasource.MetricConsumedWrite, datasource.StatSum, c.period),
	})
	if err != nil {
		return recommender.CapacityModeInput{}, err
	}
	return recommender.CapacityModeInput{
		Table:  c.table,
		Reads:  metrics["cr"],
		Writes: metrics["cw"],
		Period: c.period,
		Days:   c.task.WindowDays,
		Prices: c.task.Prices,
	}, nil
}

func (c *collector) tableClass(ctx context.Context) (recommender.TableClassInput, error) {
	metrics, err := c.fetch(ctx, []datasource.MetricQuery{
		c.query("cr", "", datasource.MetricConsumedRead, datasource.StatSum, dailyPeriod),
		c.query("cw", "", datasource.MetricConsumedWrite, datasource.StatSum, dailyPeriod),
	})
	if err != nil {
		return recommender.TableClassInput{}, err
	}
	return recommender.TableClassInput{
		Table:    c.table,
		Reads:    metrics["cr"],
		Writes:   metrics["cw"],
		Days:     c.task.WindowDays,
		Prices:   c.task.Prices,
		Reserved: c.task.Reserved,
	}, nil
}

// utilization queries Sum and Maximum for the table and every GSI in one batch.
// On-demand tables need no metrics.
func (c *collector) utilization(ctx context.Context) (recommender.UtilizationInput, error) {
	in := recommender.UtilizationInput{
		Table:  c.table,
		Period: c.period,
		Days:   c.task.WindowDays,
		Prices: c.task.Prices,
	}
	if c.table.IsOnDemand() {
		return in, nil
	}

	indexes := []string{""}
	for _, idx := range c.table.Indexes {
		indexes = append(indexes, idx.Name)
	}

	var queries []datasource.MetricQuery
	for i, index := range indexes {
		queries = append(queries,
			c.query(fmt.Sprintf("r%d", i), index, datasource.MetricConsumedRead, datasource.StatSum, c.period),
			c.query(fmt.Sprintf("w%d", i), index, datasource.MetricConsumedWrite, datasource.StatSum, c.period),
			c.query(fmt.Sprintf("rm%d", i), index, datasource.MetricConsumedRead, datasource.StatMaximum, c.period),
			c.query(fmt.Sprintf("wm%d", i), index, datasource.MetricConsumedWrite, datasource.StatMaximum, c.period),
		)
	}
	metrics, err := c.fetch(ctx, queries)
	if err != nil {
		return in, err
	}

	for i, index := range indexes {
		in.Usage = append(in.Usage, recommender.ResourceUsage{
			IndexName: index,
			ReadSum:   metrics[fmt.Sprintf("r%d", i)],
			WriteSum:  metrics[fmt.Sprintf("w%d", i)],
			ReadMax:   metrics[fmt.Sprintf("rm%d", i)],
			WriteMax:  metrics[fmt.Sprintf("wm%d", i)],
		})
	}
	return in, nil
}

// unusedIndexes reads daily GSI read sums. Savings come from write sums on
// on-demand tables and from provisioned capacity averages otherwise.
func (c *collector) unusedIndexes(ctx context.Context) (recommender.UnusedIndexInput, error) {
	in := recommender.UnusedIndexInput{
		Table:  c.table,
		Days:   c.task.WindowDays,
		Prices: c.task.Prices,
	}
	if len(c.table.Indexes) == 0 {
		return in, nil
	}

	onDemand := c.table.IsOnDemand()
	var queries []datasource.MetricQuery
	for i, idx := range c.table.Indexes {
		queries = append(queries, c.query(fmt.Sprintf("r%d", i), idx.Name, datasource.MetricConsumedRead, datasource.StatSum, dailyPeriod))
		if onDemand {
			queries = append(queries, c.query(fmt.Sprintf("w%d", i), idx.Name, datasource.MetricConsumedWrite, datasource.StatSum, dailyPeriod))
		} else {
			queries = append(queries,
				c.query(fmt.Sprintf("pr%d", i), idx.Name, datasource.MetricProvisionedRead, datasource.StatAverage, dailyPeriod),
				c.query(fmt.Sprintf("pw%d", i), idx.Name, datasource.MetricProvisionedWrite, datasource.StatAverage, dailyPeriod),
			)
		}
	}
	metrics, err := c.fetch(ctx, queries)
	if err != nil {
		return in, err
	}

	for i, idx := range c.table.Indexes {
		in.Usage = append(in.Usage, recommender.IndexUsage{
			IndexName:         idx.Name,
			Reads:             metrics[fmt.Sprintf("r%d", i)],
			Writes:            metrics[fmt.Sprintf("w%d", i)],
			ProvisionedReads:  metrics[fmt.Sprintf("pr%d", i)],
			ProvisionedWrites: metrics[fmt.Sprintf("pw%d", i)],
		})
	}
	return in, nil
}
