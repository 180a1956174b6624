package datasource

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
)

var overTime = regexp.MustCompile(`(\w+)_over_time\(.*\[(\w+)\]\)`)

// fakePromAPI evaluates <fn>_over_time(selector[range]) over one raw exporter series
type fakePromAPI struct {
	v1.API

	first   time.Time
	spacing time.Duration
	samples []float64
	err     error

	queries []string
	ranges  []v1.Range
}

func (f *fakePromAPI) QueryRange(_ context.Context, query string, r v1.Range, _ ...v1.Option) (model.Value, v1.Warnings, error) {
	f.queries = append(f.queries, query)
	f.ranges = append(f.ranges, r)
	if f.err != nil {
		return nil, nil, f.err
	}

	m := overTime.FindStringSubmatch(query)
	if m == nil {
		return nil, nil, fmt.Errorf("unsupported query: %s", query)
	}
	window, err := model.ParseDuration(m[2])
	if err != nil {
		return nil, nil, err
	}

	stream := &model.SampleStream{Metric: model.Metric{}}
	for t := r.Start; !t.After(r.End); t = t.Add(r.Step) {
		var in []float64
		for i, v := range f.samples {
			ts := f.first.Add(time.Duration(i) * f.spacing)
			if ts.After(t.Add(-time.Duration(window))) && !ts.After(t) {
				in = append(in, v)
			}
		}
		if len(in) == 0 {
			continue
		}

		var agg float64
		switch m[1] {
		case "avg":
			for _, v := range in {
				agg += v
			}
			agg /= float64(len(in))
		case "max":
			for _, v := range in {
				agg = max(agg, v)
			}
		default:
			return nil, nil, fmt.Errorf("unsupported function %s", m[1])
		}
		stream.Values = append(stream.Values, model.SamplePair{
			Timestamp: model.TimeFromUnixNano(t.UnixNano()),
			Value:     model.SampleValue(agg),
		})
	}
	return model.Matrix{stream}, nil, nil
}

func (f *fakePromAPI) Query(_ context.Context, query string, _ time.Time, _ ...v1.Option) (model.Value, v1.Warnings, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, nil, f.err
	}
	return model.Vector{}, nil, nil
}

var promWindowStart = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

// exporterSeries lays out one 5-minute sample per value after the window start
func exporterSeries(values []float64) *fakePromAPI {
	return &fakePromAPI{
		first:   promWindowStart.Add(ExporterPeriod),
		spacing: ExporterPeriod,
		samples: values,
	}
}

func filled(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func total(t *testing.T, source *PrometheusSource, q MetricQuery, days int) float64 {
	t.Helper()
	end := promWindowStart.Add(time.Duration(days) * 24 * time.Hour)
	out, err := source.GetMetricData(context.Background(), "us-east-1", []MetricQuery{q}, promWindowStart, end)
	require.NoError(t, err)

	sum := 0.0
	for _, s := range out[q.ID] {
		sum += s.Value
	}
	return sum
}

func TestPrometheusDailySumTotals(t *testing.T) {
	const days = 14
	samplesPerDay := int(24 * time.Hour / ExporterPeriod)

	spike := make([]float64, days*samplesPerDay)
	spike[7] = 600

	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		// 1 unit per second for 14 days
		{"steady load", filled(300, days*samplesPerDay), 1209600},
		{"reads between step boundaries", spike, 600},
		{"no reads", filled(0, days*samplesPerDay), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := exporterSeries(tt.values)
			source := &PrometheusSource{client: fake, period: ExporterPeriod}

			q := MetricQuery{ID: "r", Table: "orders", Metric: MetricConsumedRead, Stat: StatSum, Period: 24 * time.Hour}
			assert.InDelta(t, tt.want, total(t, source, q, days), 1e-6)
			require.Len(t, fake.queries, 1)
			assert.Contains(t, fake.queries[0], "[1d]")
		})
	}
}

func TestPrometheusFiveMinuteSumUnscaled(t *testing.T) {
	fake := exporterSeries([]float64{300, 600, 900})
	source := &PrometheusSource{client: fake, period: ExporterPeriod}

	end := promWindowStart.Add(15 * time.Minute)
	q := MetricQuery{ID: "r", Table: "orders", Metric: MetricConsumedRead, Stat: StatSum, Period: ExporterPeriod}
	out, err := source.GetMetricData(context.Background(), "us-east-1", []MetricQuery{q}, promWindowStart, end)
	require.NoError(t, err)

	require.Len(t, out["r"], 3)
	assert.Equal(t, []float64{300, 600, 900}, out["r"].Values())
	assert.True(t, out["r"][0].Timestamp.Equal(promWindowStart))
	assert.True(t, fake.ranges[0].Start.Equal(promWindowStart.Add(ExporterPeriod)))
}

func TestPrometheusMaximumNotScaled(t *testing.T) {
	values := make([]float64, 12)
	for i := range values {
		values[i] = float64(i + 1)
	}
	fake := exporterSeries(values)
	source := &PrometheusSource{client: fake, period: ExporterPeriod}

	end := promWindowStart.Add(time.Hour)
	q := MetricQuery{ID: "rm", Table: "orders", Metric: MetricConsumedRead, Stat: StatMaximum, Period: time.Hour}
	out, err := source.GetMetricData(context.Background(), "us-east-1", []MetricQuery{q}, promWindowStart, end)
	require.NoError(t, err)

	require.Len(t, out["rm"], 1)
	assert.Equal(t, 12.0, out["rm"][0].Value)
}

func TestPrometheusQueryError(t *testing.T) {
	fake := &fakePromAPI{err: fmt.Errorf("connection refused")}
	source := &PrometheusSource{client: fake, period: ExporterPeriod}

	q := MetricQuery{ID: "r", Table: "orders", Metric: MetricConsumedRead, Stat: StatSum, Period: ExporterPeriod}
	_, err := source.GetMetricData(context.Background(), "us-east-1", []MetricQuery{q}, promWindowStart, promWindowStart.Add(time.Hour))
	assert.True(t, apperrors.IsUpstream(err))
}

func TestPrometheusIsAvailable(t *testing.T) {
	up := &PrometheusSource{client: &fakePromAPI{}}
	assert.True(t, up.IsAvailable(context.Background()))

	down := &PrometheusSource{client: &fakePromAPI{err: fmt.Errorf("connection refused")}}
	assert.False(t, down.IsAvailable(context.Background()))
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{MetricConsumedRead, "consumed_read_capacity_units"},
		{MetricProvisionedWrite, "provisioned_write_capacity_units"},
		{"lower", "lower"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, snakeCase(tt.in))
	}
}

func TestPromQuery(t *testing.T) {
	tests := []struct {
		name  string
		query MetricQuery
		want  string
	}{
		{
			name:  "table sum",
			query: MetricQuery{Table: "orders", Metric: MetricConsumedRead, Stat: StatSum, Period: 5 * time.Minute},
			want:  `sum(avg_over_time(aws_dynamodb_consumed_read_capacity_units_sum{table_name="orders",global_secondary_index_name=""}[5m]))`,
		},
		{
			name:  "index maximum",
			query: MetricQuery{Table: "orders", Index: "by-email", Metric: MetricConsumedWrite, Stat: StatMaximum, Period: time.Hour},
			want:  `max(max_over_time(aws_dynamodb_consumed_write_capacity_units_maximum{table_name="orders",global_secondary_index_name="by-email"}[1h]))`,
		},
		{
			name:  "daily provisioned average",
			query: MetricQuery{Table: "orders", Index: "by-email", Metric: MetricProvisionedRead, Stat: StatAverage, Period: 24 * time.Hour},
			want:  `avg(avg_over_time(aws_dynamodb_provisioned_read_capacity_units_average{table_name="orders",global_secondary_index_name="by-email"}[1d]))`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, promQuery(tt.query))
		})
	}
}

func TestNewPrometheusSource(t *testing.T) {
	source, err := NewPrometheusSource("http://localhost:9090")
	assert.NoError(t, err)
	assert.Equal(t, "Prometheus", source.Name())
	assert.Equal(t, ExporterPeriod, source.period)
}
