// Package metrics counts what an analysis run did and writes it as a Prometheus
// textfile for node_exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

const namespace = "ddb_cost_optimizer"

// Task statuses
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

type Collector struct {
	registry *prometheus.Registry

	tasks     *prometheus.CounterVec
	analyzers *prometheus.CounterVec
	duration  prometheus.Histogram

	savings         prometheus.Gauge
	recommendations prometheus.Gauge
	lastRun         prometheus.Gauge
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Analyzed tables by region and status.",
		}, []string{"region", "status"}),
		analyzers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyzer_outcomes_total",
			Help:      "Analyzer outcomes by analyzer, status and error kind.",
		}, []string{"analyzer", "status", "kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Wall time to analyze one table.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		savings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monthly_savings_usd",
			Help:      "Total projected monthly savings of the last run.",
		}),
		recommendations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "recommendations",
			Help:      "Recommendations surfaced by the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	c.registry.MustRegister(c.tasks, c.analyzers, c.duration, c.savings, c.recommendations, c.lastRun)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveTask counts one finished table analysis. Safe for concurrent use.
func (c *Collector) ObserveTask(b *models.Bundle, elapsed time.Duration) {
	c.duration.Observe(elapsed.Seconds())

	failed := len(b.Errors)
	status := StatusOK
	switch {
	case failed == len(models.Analyzers):
		status = StatusFailed
	case failed > 0:
		status = StatusPartial
	}
	c.tasks.WithLabelValues(b.Region, status).Inc()

	c.observe(models.AnalyzerCapacityMode, b.CapacityMode.Err)
	c.observe(models.AnalyzerTableClass, b.TableClass.Err)
	c.observe(models.AnalyzerUtilization, b.Utilization.Err)
	c.observe(models.AnalyzerUnusedIndex, b.UnusedIndex.Err)
}

func (c *Collector) observe(name models.AnalyzerName, err error) {
	if err == nil {
		c.analyzers.WithLabelValues(string(name), StatusOK, "none").Inc()
		return
	}
	c.analyzers.WithLabelValues(string(name), "error", apperrors.KindOf(err).String()).Inc()
}

// ObserveReport records the run totals
func (c *Collector) ObserveReport(r *models.AggregateReport) {
	c.savings.Set(r.TotalMonthlySavings)
	c.recommendations.Set(float64(r.RecommendationCount()))
	c.lastRun.Set(float64(r.GeneratedAt.Unix()))
}

// WriteTextfile writes every metric to path atomically
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.Wrapf(err, "failed to write metrics to %s", path)
	}
	return nil
}
