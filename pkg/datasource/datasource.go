package datasource

import (
	"context"
	"time"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// Namespace is the CloudWatch namespace of every DynamoDB metric
const Namespace = "AWS/DynamoDB"

// DynamoDB metric names
const (
	MetricConsumedRead     = "ConsumedReadCapacityUnits"
	MetricConsumedWrite    = "ConsumedWriteCapacityUnits"
	MetricProvisionedRead  = "ProvisionedReadCapacityUnits"
	MetricProvisionedWrite = "ProvisionedWriteCapacityUnits"
)

// Statistics
const (
	StatSum     = "Sum"
	StatMaximum = "Maximum"
	StatAverage = "Average"
)

// MaxQueriesPerCall is the GetMetricData limit on queries per request
const MaxQueriesPerCall = 500

// MetricQuery asks for one statistic of one table or GSI metric
type MetricQuery struct {
	// ID keys the result. It must start with a lowercase letter.
	ID     string
	Table  string
	Index  string
	Metric string
	Stat   string
	Period time.Duration
}

// MetricSource fetches DynamoDB metric series
type MetricSource interface {
	// GetMetricData returns one timestamp-ordered series per query ID. Queries with
	// no datapoints may be absent from the map.
	GetMetricData(ctx context.Context, region string, queries []MetricQuery, start, end time.Time) (map[string]models.Series, error)
	Name() string
}

// MetadataSource lists and describes tables
type MetadataSource interface {
	ListTables(ctx context.Context, region string) ([]string, error)
	DescribeTable(ctx context.Context, region, name string) (*models.Table, error)
}

// ReservedCapacitySource reports whether a region bills DynamoDB reserved capacity.
// It never fails; lookup errors are reported as ReservedUnknown.
type ReservedCapacitySource interface {
	ReservedCapacity(ctx context.Context, region string) models.ReservedStatus
}

// Sources bundles the collaborators one analysis run needs
type Sources struct {
	Metrics  MetricSource
	Metadata MetadataSource
	Reserved ReservedCapacitySource
}

// Config selects and configures the data sources
type Config struct {
	// cloudwatch, prometheus or fixture
	Source        string
	PrometheusURL string
	FixturePath   string

	// AWS shared config profile, empty for the default chain
	Profile string
}

// New builds the sources named by cfg. Table metadata and the reserved-capacity
// signal come from AWS unless a fixture supplies everything.
func New(cfg Config) (*Sources, error) {
	if cfg.Source == "fixture" {
		fixture, err := LoadFixture(cfg.FixturePath)
		if err != nil {
			return nil, err
		}
		return &Sources{Metrics: fixture, Metadata: fixture, Reserved: fixture}, nil
	}

	sessions := NewSessions(cfg.Profile)
	sources := &Sources{
		Metadata: NewDynamoDBSource(sessions),
		Reserved: NewCostExplorerSource(sessions),
	}

	switch cfg.Source {
	case "", "cloudwatch":
		sources.Metrics = NewCloudWatchSource(sessions)
	case "prometheus":
		prom, err := NewPrometheusSource(cfg.PrometheusURL)
		if err != nil {
			return nil, err
		}
		sources.Metrics = prom
	default:
		return nil, apperrors.InvalidInput("unknown metrics source: %s", cfg.Source)
	}
	return sources, nil
}
