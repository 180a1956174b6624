package output

import (
	"context"
	"io"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/reporter"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/simulator"
)

// Handler defines the interface for output formatting
type Handler interface {
	DisplayReport(ctx context.Context, report *models.AggregateReport) error
	DisplayTables(ctx context.Context, tables []models.TableSummary) error
	DisplayPrices(ctx context.Context, region string, prices models.PriceTable) error
	DisplayRuns(ctx context.Context, runs []models.Run) error
	DisplaySimulation(ctx context.Context, sim *simulator.Summary) error
	Format() string
}

// NewHandler picks the handler for a report format. CSV and HTML only change how
// the analysis report is rendered; other views fall back to text.
func NewHandler(format string, w io.Writer) (Handler, error) {
	f, err := reporter.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	switch f {
	case reporter.FormatJSON:
		return &JSONHandler{w: w}, nil
	default:
		return &TextHandler{w: w, reporter: reporter.New(f)}, nil
	}
}
