package reporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/config"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

func sampleReport() *models.AggregateReport {
	b := withCapacitySavings(bundle(0, "us-east-1", "orders"), 1200)
	b.UnusedIndex = models.Succeeded(&models.UnusedIndexResult{
		HasIndexes: true,
		Unused:     []models.UnusedIndex{{IndexName: "legacy"}},
	})
	bundles := []models.Bundle{
		b,
		bundle(1, "us-east-1", "users"),
		withFailure(bundle(2, "us-east-1", "events"), apperrors.Upstream(errors.New("Throttling"), "GetMetricData")),
	}
	return Aggregate(bundles, 14, config.DefaultThresholds())
}

func TestGenerateText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GenerateText(sampleReport(), &buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out,
		"Region: us-east-1 | Analysis: 14 days | Tables: 3 | Savings: $1,200.00/month ($14,400.00/year)\n"))
	assert.Contains(t, out, "Billing Mode: Provisioned → On-Demand")
	assert.Contains(t, out, "$1,200.00/mo")
	assert.Contains(t, out, "Unused GSI: Review legacy (zero reads in 14 days; verify not needed)")
	assert.Contains(t, out, "cleanup")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "Already optimized (1): users")
	assert.Contains(t, out, "Errors (1 tables):")
	assert.Contains(t, out, "  events: utilization: ")
	assert.Contains(t, out, "Throttling")
}

func TestGenerateTextNothingToRecommend(t *testing.T) {
	report := Aggregate([]models.Bundle{bundle(0, "us-east-1", "users")}, 14, config.DefaultThresholds())

	var buf bytes.Buffer
	require.NoError(t, GenerateText(report, &buf))
	out := buf.String()

	assert.Contains(t, out, "Savings: $0.00/month ($0.00/year)")
	assert.NotContains(t, out, "TOTAL")
	assert.NotContains(t, out, "Errors")
}

func TestGenerateCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GenerateCSV(sampleReport(), &buf))

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, "Region", records[0][0])
	assert.Equal(t, []string{"us-east-1", "orders", "BILLING_MODE", "", "Provisioned → On-Demand", "1200.00", "HIGH"}, records[1])
	assert.Equal(t, "legacy", records[2][3])

	var sawErrors bool
	for _, rec := range records {
		if len(rec) > 0 && rec[0] == "ERRORS" {
			sawErrors = true
		}
	}
	assert.True(t, sawErrors)
}

func TestGenerateJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GenerateJSON(sampleReport(), &buf))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 1200.0, decoded["totalMonthlySavings"])
	assert.Len(t, decoded["recommended"], 1)
	assert.Len(t, decoded["errored"], 1)
}

func TestGenerateHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, GenerateHTML(sampleReport(), &buf))
	out := buf.String()

	assert.Contains(t, out, "<title>DynamoDB Cost Report - us-east-1</title>")
	assert.Contains(t, out, "$1,200.00")
	assert.Contains(t, out, "impact-high")
	assert.Contains(t, out, "cleanup")
	assert.Contains(t, out, "UpstreamServiceError")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ReportFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"html", FormatHTML, false},
		{"markdown", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, apperrors.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderDispatchesOnFormat(t *testing.T) {
	report := sampleReport()
	for _, format := range []ReportFormat{FormatText, FormatJSON, FormatCSV, FormatHTML} {
		var buf bytes.Buffer
		r := New(format)
		assert.Equal(t, format, r.Format())
		require.NoError(t, r.Render(&buf, report))
		assert.NotEmpty(t, buf.String())
	}
}
