package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// GenerateText writes the console report: a summary line, one table row per
// recommendation, then the optimized tables and the failures.
func GenerateText(report *models.AggregateReport, w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Region: %s | Analysis: %d days | Tables: %d | Savings: %s/month (%s/year)\n\n",
		strings.Join(report.Regions, ", "),
		report.AnalysisDays,
		report.TableCount,
		money(report.TotalMonthlySavings),
		money(report.YearlySavings()),
	)

	if len(report.Recommended) > 0 {
		table := tablewriter.NewWriter(&b)
		table.SetHeader([]string{"Table", "Recommendation", "Savings"})
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
		table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)
		table.SetCenterSeparator("┼")
		table.SetColumnSeparator("│")
		table.SetRowSeparator("─")

		for _, t := range report.Recommended {
			for i, rec := range t.Recommendations {
				name := ""
				if i == 0 {
					name = t.Label
				}
				savings := "cleanup"
				if rec.SavingsMonthly > 0 {
					savings = money(rec.SavingsMonthly) + "/mo"
				}
				table.Append([]string{name, fmt.Sprintf("%s: %s", rec.Label, rec.Change), savings})
			}
		}
		table.SetFooter([]string{"TOTAL", "", money(report.TotalMonthlySavings) + "/mo"})
		table.Render()
		b.WriteString("\n")
	}

	if len(report.Optimized) > 0 {
		labels := make([]string, len(report.Optimized))
		for i, t := range report.Optimized {
			labels[i] = t.Label
		}
		fmt.Fprintf(&b, "Already optimized (%d): %s\n\n", len(labels), strings.Join(labels, ", "))
	}

	if len(report.Errored) > 0 {
		fmt.Fprintf(&b, "Errors (%d tables):\n", len(report.Errored))
		for _, t := range report.Errored {
			fmt.Fprintf(&b, "  %s: %s\n", t.Label, errorSummary(t.Errors))
		}
		b.WriteString("\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Wrap(err, "failed to write report")
	}
	return nil
}
