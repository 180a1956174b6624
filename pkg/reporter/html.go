package reporter

import (
	"html/template"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

const htmlTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>DynamoDB Cost Report - {{join .Regions ", "}}</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #333;
            padding: 20px;
            line-height: 1.6;
        }
        .container {
            max-width: 1200px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0, 0, 0, 0.1);
            overflow: hidden;
        }
        .header {
            background: linear-gradient(135deg, #4053d6 0%, #232f3e 100%);
            color: white;
            padding: 40px;
        }
        .header h1 { font-size: 2.4em; margin-bottom: 10px; }
        .summary {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(220px, 1fr));
            gap: 20px;
            padding: 30px 40px;
            background: #f8f9fa;
        }
        .summary-card {
            background: white;
            padding: 24px;
            border-radius: 12px;
            border: 2px solid #e8eaed;
        }
        .summary-card h3 {
            color: #5f6368;
            font-size: 0.8em;
            text-transform: uppercase;
            letter-spacing: 1.5px;
            margin-bottom: 10px;
        }
        .summary-card .value { font-size: 2.4em; font-weight: 700; line-height: 1; }
        .summary-card.savings { border-left: 6px solid #34a853; }
        .summary-card.savings .value { color: #34a853; }
        .summary-card.tables { border-left: 6px solid #4053d6; }
        .summary-card.errors { border-left: 6px solid #ea4335; }
        .section { padding: 30px 40px; }
        .section h2 { margin-bottom: 16px; color: #202124; }
        table { width: 100%; border-collapse: collapse; }
        th {
            text-align: left;
            background: #f1f3f4;
            padding: 10px 12px;
            font-size: 0.85em;
            text-transform: uppercase;
            color: #5f6368;
        }
        td { padding: 10px 12px; border-bottom: 1px solid #e8eaed; vertical-align: top; }
        td.savings { color: #34a853; font-weight: 600; text-align: right; white-space: nowrap; }
        .impact-badge {
            display: inline-block;
            padding: 2px 10px;
            border-radius: 12px;
            font-size: 0.8em;
            font-weight: 600;
        }
        .impact-high { background: #e6f4ea; color: #1e8e3e; }
        .impact-medium { background: #fef7e0; color: #b06000; }
        .impact-low { background: #f1f3f4; color: #5f6368; }
        .error { color: #c5221f; }
        .footer { background: #202124; color: #9aa0a6; padding: 24px 40px; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>DynamoDB Cost Optimization Report</h1>
            <p><strong>Regions:</strong> {{join .Regions ", "}} | <strong>Analysis window:</strong> {{.AnalysisDays}} days</p>
            <p><strong>Generated:</strong> {{.GeneratedAt.Format "January 2, 2006 15:04:05 MST"}}</p>
        </div>

        <div class="summary">
            <div class="summary-card savings">
                <h3>Monthly Savings</h3>
                <div class="value">{{money .TotalMonthlySavings}}</div>
                <p>{{money .YearlySavings}} per year</p>
            </div>
            <div class="summary-card tables">
                <h3>Tables Analyzed</h3>
                <div class="value">{{.TableCount}}</div>
                <p>{{len .Optimized}} already optimized</p>
            </div>
            <div class="summary-card errors">
                <h3>Tables With Errors</h3>
                <div class="value">{{len .Errored}}</div>
            </div>
        </div>

        {{if .Recommended}}
        <div class="section">
            <h2>Recommendations</h2>
            <table>
                <thead>
                    <tr><th>Table</th><th>Type</th><th>Recommendation</th><th>Impact</th><th>Savings</th></tr>
                </thead>
                <tbody>
                    {{range .Recommended}}{{$table := .Label}}{{range $i, $rec := .Recommendations}}
                    <tr>
                        <td>{{if eq $i 0}}<strong>{{$table}}</strong>{{end}}</td>
                        <td>{{$rec.Label}}</td>
                        <td>{{$rec.Change}}</td>
                        <td><span class="impact-badge impact-{{lower $rec.Impact}}">{{$rec.Impact}}</span></td>
                        <td class="savings">{{if gt $rec.SavingsMonthly 0.0}}{{money $rec.SavingsMonthly}}/mo{{else}}cleanup{{end}}</td>
                    </tr>
                    {{end}}{{end}}
                </tbody>
            </table>
        </div>
        {{end}}

        {{if .Optimized}}
        <div class="section">
            <h2>Already Optimized</h2>
            <p>{{range $i, $t := .Optimized}}{{if $i}}, {{end}}{{$t.Label}}{{end}}</p>
        </div>
        {{end}}

        {{if .Errored}}
        <div class="section">
            <h2>Errors</h2>
            <table>
                <thead><tr><th>Table</th><th>Analyzer</th><th>Kind</th><th>Message</th></tr></thead>
                <tbody>
                    {{range .Errored}}{{$table := .Label}}{{range .Errors}}
                    <tr class="error"><td>{{$table}}</td><td>{{.Analyzer}}</td><td>{{.Kind}}</td><td>{{.Message}}</td></tr>
                    {{end}}{{end}}
                </tbody>
            </table>
        </div>
        {{end}}

        <div class="footer">
            <p>Generated by <strong>dynamodb-cost-optimizer</strong></p>
        </div>
    </div>
</body>
</html>
`

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"lower": strings.ToLower,
	"join":  strings.Join,
	"money": money,
}).Parse(htmlTemplate))

// GenerateHTML creates an HTML report
func GenerateHTML(report *models.AggregateReport, writer io.Writer) error {
	if err := reportTemplate.Execute(writer, report); err != nil {
		return errors.Wrap(err, "failed to execute template")
	}
	return nil
}
