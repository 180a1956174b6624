package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/config"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

func TestReadSeries(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []float64
		wantErr bool
	}{
		{"json list", "[1, 2.5, 3]", []float64{1, 2.5, 3}, false},
		{"json document", `{"series": [4, 5]}`, []float64{4, 5}, false},
		{"yaml list", "- 1\n- 2\n", []float64{1, 2}, false},
		{"yaml document", "series:\n  - 7\n", []float64{7}, false},
		{"not numbers", `{"series": ["a"]}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readSeries(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.True(t, apperrors.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func resetFlags(t *testing.T) {
	t.Helper()
	cfg = config.NewConfig()
	regions, tables, regionsFile = nil, nil, ""
	outputFormat, simulateFile = "text", "-"
	t.Cleanup(func() {
		regions, tables, regionsFile = nil, nil, ""
		outputFormat, simulateFile = "text", "-"
	})
}

func TestApplyRegionFlags(t *testing.T) {
	resetFlags(t)
	regions = []string{"us-east-1", "eu-west-1"}
	tables = []string{"orders"}

	require.NoError(t, applyRegionFlags())
	assert.Equal(t, config.RegionPlan{
		{Region: "us-east-1", Tables: []string{"orders"}},
		{Region: "eu-west-1", Tables: []string{"orders"}},
	}, cfg.Regions)
}

func TestApplyRegionFlagsTablesNeedRegion(t *testing.T) {
	resetFlags(t)
	tables = []string{"orders"}

	err := applyRegionFlags()
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestApplyRegionFlagsFile(t *testing.T) {
	resetFlags(t)
	regionsFile = filepath.Join(t.TempDir(), "regions.yaml")
	require.NoError(t, os.WriteFile(regionsFile, []byte("us-west-2: [orders, users]\nap-south-1: []\n"), 0o644))
	regions = []string{"us-west-2"}
	tables = []string{"sessions"}

	require.NoError(t, applyRegionFlags())
	assert.Equal(t, config.RegionPlan{
		{Region: "us-west-2", Tables: []string{"orders", "users", "sessions"}},
		{Region: "ap-south-1", Tables: []string{}},
	}, cfg.Regions)
}

func TestApplyRegionFlagsBadFile(t *testing.T) {
	resetFlags(t)
	regionsFile = filepath.Join(t.TempDir(), "regions.yaml")
	require.NoError(t, os.WriteFile(regionsFile, []byte("just a string"), 0o644))

	err := applyRegionFlags()
	assert.True(t, apperrors.IsInvalidInput(err))
}

// Commands report failures to main instead of exiting, so deferred cleanup runs
func TestCommandsReturnErrors(t *testing.T) {
	tests := []struct {
		name        string
		setup       func()
		run         func(*cobra.Command, []string) error
		wantInvalid bool
	}{
		{
			name:        "scan without regions",
			run:         runScan,
			wantInvalid: true,
		},
		{
			name:        "scan with unknown output",
			setup:       func() { cfg.Regions.Add("us-east-1"); outputFormat = "xml" },
			run:         runScan,
			wantInvalid: true,
		},
		{
			name:        "scan with unknown source",
			setup:       func() { cfg.Regions.Add("us-east-1"); cfg.MetricsSource = "datadog" },
			run:         runScan,
			wantInvalid: true,
		},
		{
			name:        "pricing with unknown provider",
			setup:       func() { cfg.Regions.Add("us-east-1"); cfg.PricingProvider = "azure" },
			run:         runPricing,
			wantInvalid: true,
		},
		{
			name:        "discover without regions",
			run:         runDiscover,
			wantInvalid: true,
		},
		{
			name:  "simulate with missing file",
			setup: func() { simulateFile = filepath.Join(os.TempDir(), "no-such-series.yaml") },
			run:   runSimulate,
		},
		{
			name:        "simulate with bad series",
			setup:       func() { simulateFile = writeSeries(t, `{"series": ["a"]}`) },
			run:         runSimulate,
			wantInvalid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			if tt.setup != nil {
				tt.setup()
			}

			err := tt.run(&cobra.Command{}, nil)
			require.Error(t, err)
			assert.Equal(t, tt.wantInvalid, apperrors.IsInvalidInput(err))
		})
	}
}

func TestRunPricingFailedRegion(t *testing.T) {
	resetFlags(t)
	cfg.Regions.Add("eu-west-1")
	cfg.Prices = models.PriceTable{models.PriceReadRequest: 0.00000025}

	err := runPricing(&cobra.Command{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eu-west-1")
}

func writeSeries(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "series.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
