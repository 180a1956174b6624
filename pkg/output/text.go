package output

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/reporter"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/simulator"
)

// TextHandler writes tables for people
type TextHandler struct {
	w        io.Writer
	reporter *reporter.Reporter
}

func (h *TextHandler) Format() string {
	return string(h.reporter.Format())
}

func (h *TextHandler) DisplayReport(_ context.Context, report *models.AggregateReport) error {
	return h.reporter.Render(h.w, report)
}

func (h *TextHandler) newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(h.w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	return table
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "⚠ no"
}

func (h *TextHandler) DisplayTables(_ context.Context, tables []models.TableSummary) error {
	table := h.newTable("Region", "Table", "Billing", "Class", "Items", "Size", "Read", "Write", "GSIs", "Deletion Protection", "PITR")
	var failed []models.TableSummary
	for _, t := range tables {
		if t.Error != "" {
			failed = append(failed, t)
			continue
		}
		table.Append([]string{
			t.Region,
			t.TableName,
			string(t.BillingMode),
			string(t.TableClass),
			humanize.Comma(t.ItemCount),
			humanize.IBytes(uint64(t.TableSizeBytes)),
			humanize.Comma(t.ProvisionedRead),
			humanize.Comma(t.ProvisionedWrite),
			fmt.Sprintf("%d", t.GSICount),
			yesNo(t.DeletionProtection),
			yesNo(t.PointInTimeRecovery),
		})
	}
	table.Render()

	for _, t := range failed {
		fmt.Fprintf(h.w, "  %s (%s): %s\n", t.TableName, t.Region, t.Error)
	}
	return nil
}

func (h *TextHandler) DisplayPrices(_ context.Context, region string, prices models.PriceTable) error {
	keys := make([]string, 0, len(prices))
	for k := range prices {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	fmt.Fprintf(h.w, "Prices for %s (USD)\n", region)
	table := h.newTable("Key", "Price")
	for _, k := range keys {
		table.Append([]string{k, strconv.FormatFloat(prices[models.PriceKey(k)], 'f', -1, 64)})
	}
	table.Render()
	return nil
}

func (h *TextHandler) DisplayRuns(_ context.Context, runs []models.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(h.w, "No archived runs")
		return nil
	}
	table := h.newTable("Run", "Generated", "Regions", "Days", "Tables", "Recommendations", "Errors", "Savings/month")
	for _, r := range runs {
		table.Append([]string{
			r.ID,
			humanize.Time(r.GeneratedAt),
			fmt.Sprintf("%v", r.Regions),
			fmt.Sprintf("%d", r.AnalysisDays),
			fmt.Sprintf("%d", r.TableCount),
			fmt.Sprintf("%d", r.RecommendationCount),
			fmt.Sprintf("%d", r.ErrorCount),
			"$" + humanize.FormatFloat("#,###.##", r.TotalMonthlySavings),
		})
	}
	table.Render()
	return nil
}

// DisplaySimulation prints the trace summary and every tick where capacity changed
func (h *TextHandler) DisplaySimulation(_ context.Context, sim *simulator.Summary) error {
	fmt.Fprintf(h.w, "Simulated %d samples at %v per sample\n", sim.Samples, sim.Tick)
	fmt.Fprintf(h.w, "Scale-outs: %d  Scale-ins: %d  Peak: %s  Mean utilization: %.1f%%  Throttled samples: %d\n",
		sim.ScaleOuts, sim.ScaleIns, humanize.FtoaWithDigits(sim.PeakCapacity, 2), sim.MeanUtilization*100, sim.ThrottledTicks)
	fmt.Fprintf(h.w, "Capacity unit-hours: %s\n", humanize.FormatFloat("#,###.##", sim.CapacityHours))

	table := h.newTable("Sample", "Consumed", "Capacity")
	for i, c := range sim.Capacity {
		if i > 0 && c == sim.Capacity[i-1] {
			continue
		}
		table.Append([]string{
			fmt.Sprintf("%d", i),
			humanize.FtoaWithDigits(sim.Consumed[i], 2),
			humanize.FtoaWithDigits(c, 2),
		})
	}
	table.Render()
	return nil
}
