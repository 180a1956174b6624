package recommender

import (
	"math"
	"time"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/analyzer"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
)

// NotProvisionedMessage explains why an on-demand table has no utilization verdict
const NotProvisionedMessage = "Utilization analysis only applies to PROVISIONED tables"

// ResourceUsage is the consumption of the base table or one GSI
type ResourceUsage struct {
	// Empty for the base table
	IndexName string

	// ConsumedRead/WriteCapacityUnits at Period, as Sum and Maximum
	ReadSum  models.Series
	WriteSum models.Series
	ReadMax  models.Series
	WriteMax models.Series
}

// UtilizationInput is everything the right-sizer needs for one table
type UtilizationInput struct {
	Table *models.Table

	// One entry per resource. Resources without usage are treated as idle.
	Usage  []ResourceUsage
	Period time.Duration

	Days   int
	Prices models.PriceTable
}

// Utilization compares average consumption with provisioned capacity for the
// table and each GSI.
func (r *Recommender) Utilization(in UtilizationInput) (*models.UtilizationResult, error) {
	if err := checkInput(in.Table, in.Days); err != nil {
		return nil, err
	}
	if in.Period <= 0 {
		return nil, apperrors.InvalidInput("metric period must be positive, got %v", in.Period)
	}

	result := &models.UtilizationResult{
		TableName:       in.Table.Name,
		BillingMode:     in.Table.BillingMode,
		Recommendations: []models.ResourceUtilization{},
		AnalysisDays:    in.Days,
	}
	if in.Table.IsOnDemand() {
		result.Message = NotProvisionedMessage
		return result, nil
	}
	keys := models.KeysForClass(in.Table.Class)
	if err := requirePrices(in.Table.Region, in.Prices, keys.RCUHour, keys.WCUHour); err != nil {
		return nil, err
	}
	result.Applicable = true

	usage := make(map[string]ResourceUsage, len(in.Usage))
	for _, u := range in.Usage {
		usage[u.IndexName] = u
	}

	total := 0.0
	for _, res := range resourcesOf(in.Table) {
		verdict, savings, ok := r.rightSize(res, usage[res.indexName], in.Period, in.Table.Class, in.Prices)
		if !ok {
			continue
		}
		result.Recommendations = append(result.Recommendations, verdict)
		total += savings
	}
	result.TotalMonthlySavings = analyzer.Round(total, 2)

	return result, nil
}

type resource struct {
	name      string
	kind      models.ResourceType
	indexName string
	provRead  int64
	provWrite int64
}

// resourcesOf lists the base table followed by its GSIs as table#index
func resourcesOf(table *models.Table) []resource {
	out := []resource{{
		name:      table.Name,
		kind:      models.ResourceTable,
		provRead:  table.ProvisionedRead,
		provWrite: table.ProvisionedWrite,
	}}
	for _, idx := range table.Indexes {
		out = append(out, resource{
			name:      table.Name + "#" + idx.Name,
			kind:      models.ResourceGSI,
			indexName: idx.Name,
			provRead:  idx.ProvisionedRead,
			provWrite: idx.ProvisionedWrite,
		})
	}
	return out
}

// rightSize returns false when both dimensions are already well utilized
func (r *Recommender) rightSize(res resource, u ResourceUsage, period time.Duration, class models.TableClass, prices models.PriceTable) (models.ResourceUtilization, float64, bool) {
	t := r.thresholds

	readRate := u.ReadSum.Scaled(period.Seconds())
	writeRate := u.WriteSum.Scaled(period.Seconds())
	avgRead := analyzer.Mean(readRate)
	avgWrite := analyzer.Mean(writeRate)
	peakRead := analyzer.Max(u.ReadMax.Values())
	peakWrite := analyzer.Max(u.WriteMax.Values())

	readUtil := percentOf(avgRead, res.provRead)
	writeUtil := percentOf(avgWrite, res.provWrite)

	if readUtil >= t.UtilizationUpper && writeUtil >= t.UtilizationUpper {
		return models.ResourceUtilization{}, 0, false
	}

	keys := models.KeysForClass(class)
	rcuHour := prices.Get(keys.RCUHour)
	wcuHour := prices.Get(keys.WCUHour)

	verdict := models.ResourceUtilization{
		ResourceName:     res.name,
		ResourceType:     res.kind,
		IndexName:        res.indexName,
		ReadUtilization:  analyzer.Round(readUtil, 1),
		WriteUtilization: analyzer.Round(writeUtil, 1),
		ReadP95:          p95(readRate),
		WriteP95:         p95(writeRate),
	}

	var savings float64
	if readUtil < t.UtilizationLower && writeUtil < t.UtilizationLower {
		verdict.Action = models.ActionSwitchToOnDemand
		provisioned := (float64(res.provRead)*rcuHour + float64(res.provWrite)*wcuHour) * HoursPerMonth
		readPrice, writePrice := requestPrices(class, prices)
		onDemand := avgRead*SecondsPerMonth*readPrice + avgWrite*SecondsPerMonth*writePrice
		savings = math.Max(0, provisioned-onDemand)
	} else {
		verdict.Action = models.ActionReduceCapacity
		recRead := res.provRead
		if readUtil < t.UtilizationUpper {
			recRead = r.reducedCapacity(peakRead)
		}
		recWrite := res.provWrite
		if writeUtil < t.UtilizationUpper {
			recWrite = r.reducedCapacity(peakWrite)
		}
		verdict.RecommendedRead = &recRead
		verdict.RecommendedWrite = &recWrite
		savings = math.Max(0, float64(res.provRead-recRead)*rcuHour*HoursPerMonth) +
			math.Max(0, float64(res.provWrite-recWrite)*wcuHour*HoursPerMonth)
	}
	verdict.MonthlySavings = analyzer.Round(savings, 2)

	return verdict, savings, true
}

func (r *Recommender) reducedCapacity(peak float64) int64 {
	return max(r.thresholds.MinProvisionedCapacity, int64(peak*r.thresholds.PeakHeadroom))
}

// p95 is zero for a resource with no datapoints
func p95(values []float64) float64 {
	p, err := analyzer.CalculatePercentiles(values)
	if err != nil {
		return 0
	}
	return analyzer.Round(p.P95, 2)
}

func percentOf(avg float64, provisioned int64) float64 {
	if provisioned <= 0 {
		return 0
	}
	return avg / float64(provisioned) * 100
}
