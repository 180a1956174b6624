package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/simulator"
)

// JSONHandler writes indented JSON for scripts
type JSONHandler struct {
	w io.Writer
}

func (h *JSONHandler) Format() string {
	return "json"
}

func (h *JSONHandler) encode(v interface{}) error {
	enc := json.NewEncoder(h.w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "failed to encode output")
}

func (h *JSONHandler) DisplayReport(_ context.Context, report *models.AggregateReport) error {
	return h.encode(report)
}

func (h *JSONHandler) DisplayTables(_ context.Context, tables []models.TableSummary) error {
	return h.encode(tables)
}

func (h *JSONHandler) DisplayPrices(_ context.Context, region string, prices models.PriceTable) error {
	return h.encode(map[string]interface{}{"region": region, "prices": prices})
}

func (h *JSONHandler) DisplayRuns(_ context.Context, runs []models.Run) error {
	return h.encode(runs)
}

func (h *JSONHandler) DisplaySimulation(_ context.Context, sim *simulator.Summary) error {
	return h.encode(sim)
}
