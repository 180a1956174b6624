package reporter

import "github.com/opscart/dynamodb-cost-optimizer/pkg/models"

// FromArchive rebuilds a report from an archived run so it renders like a fresh one.
// Optimized and errored tables are not archived and stay empty.
func FromArchive(run *models.Run, recs []models.Recommendation) *models.AggregateReport {
	report := &models.AggregateReport{
		GeneratedAt:         run.GeneratedAt,
		AnalysisDays:        run.AnalysisDays,
		Regions:             run.Regions,
		TableCount:          run.TableCount,
		Recommended:         []models.TableRecommendations{},
		Optimized:           []models.TableRef{},
		Errored:             []models.TableErrors{},
		TotalMonthlySavings: run.TotalMonthlySavings,
	}
	multiRegion := len(run.Regions) > 1

	index := make(map[string]int)
	for _, rec := range recs {
		key := rec.Region + "/" + rec.TableName
		i, ok := index[key]
		if !ok {
			i = len(report.Recommended)
			index[key] = i
			report.Recommended = append(report.Recommended, models.TableRecommendations{
				TaskIndex: i,
				Region:    rec.Region,
				TableName: rec.TableName,
				Label:     tableLabel(rec.Region, rec.TableName, multiRegion),
			})
		}
		t := &report.Recommended[i]
		t.Recommendations = append(t.Recommendations, rec)
		t.TotalSavings += rec.SavingsMonthly
	}
	return report
}
