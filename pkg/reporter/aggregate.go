package reporter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/config"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

var modeLabels = map[models.BillingMode]string{
	models.BillingOnDemand:    "On-Demand",
	models.BillingProvisioned: "Provisioned",
}

var classLabels = map[models.TableClass]string{
	models.ClassStandard:         "Standard",
	models.ClassInfrequentAccess: "Standard-IA",
}

func modeLabel(m models.BillingMode) string {
	if l, ok := modeLabels[m]; ok {
		return l
	}
	return string(m)
}

func classLabel(c models.TableClass) string {
	if l, ok := classLabels[c]; ok {
		return l
	}
	return string(c)
}

// Aggregate flattens bundles into a report. Bundles must be in task order; ties in
// savings keep that order.
func Aggregate(bundles []models.Bundle, days int, thresholds config.Thresholds) *models.AggregateReport {
	report := &models.AggregateReport{
		GeneratedAt:  time.Now().UTC(),
		AnalysisDays: days,
		Regions:      regionsOf(bundles),
		TableCount:   len(bundles),
		Recommended:  []models.TableRecommendations{},
		Optimized:    []models.TableRef{},
		Errored:      []models.TableErrors{},
	}
	multiRegion := len(report.Regions) > 1

	for i := range bundles {
		b := &bundles[i]
		label := tableLabel(b.Region, b.TableName, multiRegion)

		if b.HasErrors() {
			report.Errored = append(report.Errored, models.TableErrors{
				Region:    b.Region,
				TableName: b.TableName,
				Label:     label,
				Errors:    b.Errors,
			})
		}

		lines := recommendationsOf(b, days, thresholds.MinSavings)
		if len(lines) == 0 {
			if !b.HasErrors() {
				report.Optimized = append(report.Optimized, models.TableRef{
					Region:    b.Region,
					TableName: b.TableName,
					Label:     label,
				})
			}
			continue
		}

		total := 0.0
		for j := range lines {
			lines[j].CreatedAt = report.GeneratedAt
			total += lines[j].SavingsMonthly
		}
		report.Recommended = append(report.Recommended, models.TableRecommendations{
			TaskIndex:       b.TaskIndex,
			Region:          b.Region,
			TableName:       b.TableName,
			Label:           label,
			Recommendations: lines,
			TotalSavings:    total,
		})
		report.TotalMonthlySavings += total
	}

	sort.SliceStable(report.Recommended, func(i, j int) bool {
		return report.Recommended[i].TotalSavings > report.Recommended[j].TotalSavings
	})
	return report
}

func tableLabel(region, table string, multiRegion bool) string {
	if multiRegion {
		return fmt.Sprintf("%s (%s)", table, region)
	}
	return table
}

func regionsOf(bundles []models.Bundle) []string {
	seen := make(map[string]bool)
	var regions []string
	for _, b := range bundles {
		if !seen[b.Region] {
			seen[b.Region] = true
			regions = append(regions, b.Region)
		}
	}
	sort.Strings(regions)
	return regions
}

// recommendationsOf lists the surfaced lines of one bundle in analyzer order
func recommendationsOf(b *models.Bundle, days int, floor float64) []models.Recommendation {
	var lines []models.Recommendation
	add := func(t models.RecommendationType, label, resource, change string, savings float64) {
		lines = append(lines, models.Recommendation{
			Region:         b.Region,
			TableName:      b.TableName,
			Type:           t,
			Label:          label,
			Resource:       resource,
			Change:         change,
			SavingsMonthly: savings,
			Impact:         models.Impact(savings),
		})
	}
	surfaced := func(savings float64) bool {
		return savings > 0 && savings >= floor
	}

	if cm := b.CapacityMode.Result; b.CapacityMode.OK() && surfaced(cm.PotentialMonthlySavings) {
		add(models.RecommendationBillingMode, "Billing Mode", "", capacityChange(cm), cm.PotentialMonthlySavings)
	}

	// The class recommender applies the floor itself
	if tc := b.TableClass.Result; b.TableClass.OK() && tc.PotentialMonthlySavings > 0 {
		change := fmt.Sprintf("%s → %s", classLabel(tc.CurrentClass), classLabel(tc.RecommendedClass))
		add(models.RecommendationTableClass, "Table Class", "", change, tc.PotentialMonthlySavings)
	}

	if ut := b.Utilization.Result; b.Utilization.OK() {
		for _, r := range ut.Recommendations {
			if !surfaced(r.MonthlySavings) {
				continue
			}
			label := "Utilization"
			if r.ResourceType == models.ResourceGSI {
				label = fmt.Sprintf("Utilization (%s)", r.IndexName)
			}
			add(models.RecommendationUtilization, label, r.IndexName, utilizationChange(r), r.MonthlySavings)
		}
	}

	if gsi := b.UnusedIndex.Result; b.UnusedIndex.OK() {
		for _, u := range gsi.Unused {
			change := fmt.Sprintf("Review %s (zero reads in %d days; verify not needed)", u.IndexName, days)
			add(models.RecommendationUnusedIndex, "Unused GSI", u.IndexName, change, u.MonthlySavings)
		}
	}
	return lines
}

func capacityChange(cm *models.CapacityModeResult) string {
	if cm.CurrentMode == cm.RecommendedMode && cm.Bounds != nil {
		b := cm.Bounds
		return fmt.Sprintf("Adjust autoscaling (Read: %d-%d, Write: %d-%d)", b.MinRead, b.MaxRead, b.MinWrite, b.MaxWrite)
	}
	return fmt.Sprintf("%s → %s", modeLabel(cm.CurrentMode), modeLabel(cm.RecommendedMode))
}

func utilizationChange(r models.ResourceUtilization) string {
	if r.Action == models.ActionSwitchToOnDemand {
		return "Switch to On-Demand (low utilization)"
	}
	return fmt.Sprintf("Right-size (Read: %s, Write: %s)", optionalInt(r.RecommendedRead), optionalInt(r.RecommendedWrite))
}

func optionalInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

// errorSummary joins the failures of one table as "analyzer: message"
func errorSummary(failures []models.AnalyzerFailure) string {
	parts := make([]string, len(failures))
	for i, f := range failures {
		parts[i] = fmt.Sprintf("%s: %s", f.Analyzer, f.Message)
	}
	return strings.Join(parts, "; ")
}
