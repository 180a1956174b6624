package reporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// GenerateCSV creates a CSV report
func GenerateCSV(report *models.AggregateReport, writer io.Writer) error {
	w := csv.NewWriter(writer)

	// Write header
	header := []string{
		"Region",
		"Table",
		"Type",
		"Resource",
		"Recommendation",
		"Monthly Savings ($)",
		"Impact",
	}
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}

	// Write recommendations
	for _, t := range report.Recommended {
		for _, rec := range t.Recommendations {
			row := []string{
				rec.Region,
				rec.TableName,
				string(rec.Type),
				rec.Resource,
				rec.Change,
				fmt.Sprintf("%.2f", rec.SavingsMonthly),
				rec.Impact,
			}
			if err := w.Write(row); err != nil {
				return errors.Wrap(err, "failed to write CSV row")
			}
		}
	}

	// Write summary rows
	w.Write([]string{}) // Empty row
	w.Write([]string{"SUMMARY"})
	w.Write([]string{"Analysis Days", fmt.Sprintf("%d", report.AnalysisDays)})
	w.Write([]string{"Total Tables", fmt.Sprintf("%d", report.TableCount)})
	w.Write([]string{"Recommendations", fmt.Sprintf("%d", report.RecommendationCount())})
	w.Write([]string{"Already Optimized", fmt.Sprintf("%d", len(report.Optimized))})
	w.Write([]string{"Total Monthly Savings", fmt.Sprintf("$%.2f", report.TotalMonthlySavings)})

	if len(report.Errored) > 0 {
		w.Write([]string{}) // Empty row
		w.Write([]string{"ERRORS"})
		w.Write([]string{"Region", "Table", "Analyzer", "Kind", "Message"})
		for _, t := range report.Errored {
			for _, f := range t.Errors {
				w.Write([]string{t.Region, t.TableName, string(f.Analyzer), f.Kind, f.Message})
			}
		}
	}

	w.Flush()
	return errors.Wrap(w.Error(), "failed to write CSV report")
}
