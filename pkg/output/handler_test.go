package output

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/simulator"
)

func TestNewHandler(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"", "text", false},
		{"text", "text", false},
		{"json", "json", false},
		{"csv", "csv", false},
		{"html", "html", false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			h, err := NewHandler(tt.format, &bytes.Buffer{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.Format())
		})
	}
}

func TestTextHandlerTables(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler("text", &buf)
	require.NoError(t, err)

	err = h.DisplayTables(context.Background(), []models.TableSummary{
		{
			TableName: "orders", Region: "us-east-1", BillingMode: models.BillingProvisioned,
			TableClass: models.ClassStandard, ItemCount: 1234567, TableSizeBytes: 3 << 30,
			ProvisionedRead: 100, ProvisionedWrite: 50, GSICount: 2, DeletionProtection: true,
		},
		{TableName: "ghost", Region: "us-east-1", Error: "ResourceNotFoundException"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "orders")
	assert.Contains(t, out, "1,234,567")
	assert.Contains(t, out, "3.0 GiB")
	assert.Contains(t, out, "⚠ no")
	assert.Contains(t, out, "ghost (us-east-1): ResourceNotFoundException")
}

func TestTextHandlerPrices(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler("text", &buf)
	require.NoError(t, err)

	require.NoError(t, h.DisplayPrices(context.Background(), "eu-west-1", models.PriceTable{
		models.PriceWCUHour:      0.00065,
		models.PriceReadRequest:  0.00000025,
		models.PriceWriteRequest: 0.00000125,
	}))
	out := buf.String()
	assert.Contains(t, out, "Prices for eu-west-1")
	assert.Contains(t, out, "0.00000025")
	assert.Contains(t, out, "0.00000125")
	assert.Contains(t, out, "0.00065")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("read_request")), bytes.Index(buf.Bytes(), []byte("wcu_hour")))
}

func TestTextHandlerRuns(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler("text", &buf)
	require.NoError(t, err)

	require.NoError(t, h.DisplayRuns(context.Background(), nil))
	assert.Contains(t, buf.String(), "No archived runs")

	buf.Reset()
	require.NoError(t, h.DisplayRuns(context.Background(), []models.Run{{
		ID: "run-1", GeneratedAt: time.Now().Add(-time.Hour), Regions: []string{"us-east-1"},
		AnalysisDays: 14, TableCount: 3, TotalMonthlySavings: 1234.5,
	}}))
	assert.Contains(t, buf.String(), "run-1")
	assert.Contains(t, buf.String(), "$1,234.50")
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler("json", &buf)
	require.NoError(t, err)

	require.NoError(t, h.DisplayPrices(context.Background(), "us-east-1", models.PriceTable{models.PriceRCUHour: 0.00013}))

	var decoded struct {
		Region string             `json:"region"`
		Prices map[string]float64 `json:"prices"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "us-east-1", decoded.Region)
	assert.Equal(t, 0.00013, decoded.Prices["rcu_hour"])
}

func TestTextHandlerSimulation(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler("text", &buf)
	require.NoError(t, err)

	require.NoError(t, h.DisplaySimulation(context.Background(), &simulator.Summary{
		Samples:      4,
		Tick:         time.Minute,
		Consumed:     []float64{7, 7, 70, 70},
		Capacity:     []float64{10, 10, 10, 100},
		ScaleOuts:    1,
		PeakCapacity: 100,
	}))

	out := buf.String()
	assert.Contains(t, out, "Simulated 4 samples at 1m0s per sample")
	assert.Contains(t, out, "Scale-outs: 1")
	assert.Contains(t, out, "100")
}
