package datasource

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// Fixture serves tables, metrics and the reserved-capacity signal from a YAML file.
// It backs offline runs and demos.
//
//	reserved: false
//	regions:
//	  us-east-1:
//	    - name: orders
//	      billingMode: PROVISIONED
//	      provisionedRead: 100
//	      provisionedWrite: 50
//	      indexes:
//	        - name: by-email
//	      metrics:
//	        - metric: ConsumedReadCapacityUnits
//	          stat: Sum
//	          constant: 1500
type Fixture struct {
	// Nil means unknown
	Reserved *bool                     `yaml:"reserved"`
	Regions  map[string][]FixtureTable `yaml:"regions"`
}

// FixtureTable describes one table and its canned metrics
type FixtureTable struct {
	Name                string          `yaml:"name"`
	BillingMode         string          `yaml:"billingMode"`
	Class               string          `yaml:"class"`
	ProvisionedRead     int64           `yaml:"provisionedRead"`
	ProvisionedWrite    int64           `yaml:"provisionedWrite"`
	SizeBytes           int64           `yaml:"sizeBytes"`
	ItemCount           int64           `yaml:"itemCount"`
	DeletionProtection  bool            `yaml:"deletionProtection"`
	PointInTimeRecovery bool            `yaml:"pointInTimeRecovery"`
	Indexes             []FixtureIndex  `yaml:"indexes"`
	Metrics             []FixtureMetric `yaml:"metrics"`

	// Error makes DescribeTable fail, to exercise error reporting
	Error string `yaml:"error"`
}

type FixtureIndex struct {
	Name             string `yaml:"name"`
	ProvisionedRead  int64  `yaml:"provisionedRead"`
	ProvisionedWrite int64  `yaml:"provisionedWrite"`
}

// FixtureMetric is a canned series. Values are laid out one per query period from
// the window start; Constant fills the whole window. Period restricts the entry to
// queries with that period.
type FixtureMetric struct {
	Metric   string        `yaml:"metric"`
	Stat     string        `yaml:"stat"`
	Index    string        `yaml:"index"`
	Period   time.Duration `yaml:"period"`
	Values   []float64     `yaml:"values"`
	Constant *float64      `yaml:"constant"`
}

// LoadFixture reads a fixture file
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read fixture %s", path)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, apperrors.InvalidInput("fixture %s: %v", path, err)
	}
	return &f, nil
}

func (f *Fixture) Name() string {
	return "Fixture"
}

func (f *Fixture) table(region, name string) (*FixtureTable, bool) {
	for i := range f.Regions[region] {
		if f.Regions[region][i].Name == name {
			return &f.Regions[region][i], true
		}
	}
	return nil, false
}

// ListTables returns the region's table names sorted
func (f *Fixture) ListTables(_ context.Context, region string) ([]string, error) {
	names := make([]string, 0, len(f.Regions[region]))
	for _, t := range f.Regions[region] {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *Fixture) DescribeTable(_ context.Context, region, name string) (*models.Table, error) {
	ft, ok := f.table(region, name)
	if !ok {
		return nil, apperrors.Upstreamf(errors.Errorf("table not found: %s", name), "DescribeTable %s in %s", name, region)
	}
	if ft.Error != "" {
		return nil, apperrors.Upstreamf(errors.New(ft.Error), "DescribeTable %s in %s", name, region)
	}

	table := &models.Table{
		Region:              region,
		Name:                ft.Name,
		BillingMode:         models.ParseBillingMode(ft.BillingMode),
		Class:               models.ParseTableClass(ft.Class),
		ProvisionedRead:     ft.ProvisionedRead,
		ProvisionedWrite:    ft.ProvisionedWrite,
		SizeBytes:           ft.SizeBytes,
		ItemCount:           ft.ItemCount,
		DeletionProtection:  ft.DeletionProtection,
		PointInTimeRecovery: ft.PointInTimeRecovery,
	}
	for _, idx := range ft.Indexes {
		table.Indexes = append(table.Indexes, models.Index(idx))
	}
	return table, nil
}

func (f *Fixture) GetMetricData(_ context.Context, region string, queries []MetricQuery, start, end time.Time) (map[string]models.Series, error) {
	results := make(map[string]models.Series, len(queries))
	for _, q := range queries {
		if q.Period <= 0 {
			return nil, apperrors.InvalidInput("query %s: period must be positive", q.ID)
		}
		ft, ok := f.table(region, q.Table)
		if !ok {
			continue
		}
		for _, m := range ft.Metrics {
			if m.Metric != q.Metric || m.Stat != q.Stat || m.Index != q.Index {
				continue
			}
			if m.Period != 0 && m.Period != q.Period {
				continue
			}
			if series := m.series(start, end, q.Period); len(series) > 0 {
				results[q.ID] = series
			}
			break
		}
	}
	return results, nil
}

func (m FixtureMetric) series(start, end time.Time, period time.Duration) models.Series {
	var series models.Series
	if m.Constant != nil {
		for ts := start; ts.Before(end); ts = ts.Add(period) {
			series = append(series, models.Sample{Timestamp: ts, Value: *m.Constant})
		}
		return series
	}
	for i, v := range m.Values {
		ts := start.Add(time.Duration(i) * period)
		if !ts.Before(end) {
			break
		}
		series = append(series, models.Sample{Timestamp: ts, Value: v})
	}
	return series
}

func (f *Fixture) ReservedCapacity(_ context.Context, _ string) models.ReservedStatus {
	switch {
	case f.Reserved == nil:
		return models.ReservedUnknown
	case *f.Reserved:
		return models.ReservedYes
	default:
		return models.ReservedNo
	}
}
