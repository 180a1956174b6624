package reporter

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// ReportFormat represents the output format
type ReportFormat string

const (
	FormatText ReportFormat = "text"
	FormatJSON ReportFormat = "json"
	FormatCSV  ReportFormat = "csv"
	FormatHTML ReportFormat = "html"
)

// ParseFormat validates a user-supplied format name
func ParseFormat(s string) (ReportFormat, error) {
	switch f := ReportFormat(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatCSV, FormatHTML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", apperrors.InvalidInput("unknown report format %q (want text, json, csv or html)", s)
	}
}

// Reporter renders aggregate reports
type Reporter struct {
	format ReportFormat
}

// New creates a new reporter
func New(format ReportFormat) *Reporter {
	return &Reporter{
		format: format,
	}
}

func (r *Reporter) Format() ReportFormat {
	return r.format
}

// Render writes the report in the reporter's format
func (r *Reporter) Render(w io.Writer, report *models.AggregateReport) error {
	switch r.format {
	case FormatJSON:
		return GenerateJSON(report, w)
	case FormatCSV:
		return GenerateCSV(report, w)
	case FormatHTML:
		return GenerateHTML(report, w)
	default:
		return GenerateText(report, w)
	}
}

// GenerateJSON writes the report as indented JSON
func GenerateJSON(report *models.AggregateReport, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return errors.Wrap(err, "failed to encode report")
	}
	return nil
}

// money formats a USD amount with thousands separators
func money(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}
