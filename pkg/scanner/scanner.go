// Package scanner fans table analyses out over a bounded worker pool and collects
// one bundle per table in plan order.
package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/config"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/datasource"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/logger"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/pricing"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/recommender"
)

// Recorder observes finished tasks
type Recorder interface {
	ObserveTask(bundle *models.Bundle, elapsed time.Duration)
}

type Options struct {
	Workers      int
	TaskTimeout  time.Duration
	MetricPeriod time.Duration

	// Called after every finished task, from worker goroutines
	OnProgress func(done, total int)
	Recorder   Recorder
}

type Scanner struct {
	sources     *datasource.Sources
	prices      pricing.Provider
	recommender *recommender.Recommender
	opts        Options
	now         func() time.Time
}

func New(sources *datasource.Sources, prices pricing.Provider, rec *recommender.Recommender, opts Options) *Scanner {
	if opts.Workers < 1 {
		opts.Workers = config.DefaultWorkers
	}
	if opts.MetricPeriod <= 0 {
		opts.MetricPeriod = 5 * time.Minute
	}
	return &Scanner{
		sources:     sources,
		prices:      prices,
		recommender: rec,
		opts:        opts,
		now:         time.Now,
	}
}

// NewFromConfig wires a scanner from the run configuration
func NewFromConfig(cfg *config.Config, sources *datasource.Sources, prices pricing.Provider) *Scanner {
	return New(sources, prices, recommender.New(cfg.Thresholds, cfg.Policy()), Options{
		Workers:      cfg.Workers,
		TaskTimeout:  cfg.TaskTimeout,
		MetricPeriod: cfg.MetricPeriod,
	})
}

// OnProgress sets the progress callback
func (s *Scanner) OnProgress(fn func(done, total int)) {
	s.opts.OnProgress = fn
}

// SetRecorder sets the task observer
func (s *Scanner) SetRecorder(r Recorder) {
	s.opts.Recorder = r
}

type regionState struct {
	prices   models.PriceTable
	reserved models.ReservedStatus
	err      error
}

// Run analyzes every table of the plan. Only invalid input or a failed table listing
// returns an error; every other failure is recorded in the affected bundle slots.
// Bundles are returned in plan order whatever order the workers finish in.
func (s *Scanner) Run(ctx context.Context, plan Plan) ([]models.Bundle, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	expanded, err := s.expand(ctx, plan.Regions)
	if err != nil {
		return nil, err
	}

	end := plan.End
	if end.IsZero() {
		end = s.now()
	}
	end = end.UTC()
	start := end.Add(-time.Duration(plan.Days) * 24 * time.Hour)

	regions := make(map[string]*regionState, len(expanded))
	var tasks []Task
	for _, rt := range expanded {
		state := s.regionState(ctx, rt.Region)
		regions[rt.Region] = state
		for _, table := range rt.Tables {
			tasks = append(tasks, Task{
				Index:      len(tasks),
				Region:     rt.Region,
				Table:      table,
				WindowDays: plan.Days,
				Start:      start,
				End:        end,
				Prices:     state.prices,
				Reserved:   state.reserved,
				RegionErr:  state.err,
			})
		}
	}

	logger.WithFields(logrus.Fields{
		"regions": len(expanded),
		"tables":  len(tasks),
		"days":    plan.Days,
		"workers": s.opts.Workers,
	}).Debug("Starting analysis")

	results := make([]models.Bundle, len(tasks))
	if len(tasks) == 0 {
		return results, nil
	}

	var g errgroup.Group
	g.SetLimit(min(s.opts.Workers, len(tasks)))

	var mu sync.Mutex
	done := 0
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			began := time.Now()
			bundle := s.runTask(ctx, task)
			results[task.Index] = bundle

			if s.opts.Recorder != nil {
				s.opts.Recorder.ObserveTask(&bundle, time.Since(began))
			}
			if s.opts.OnProgress != nil {
				mu.Lock()
				done++
				n := done
				mu.Unlock()
				s.opts.OnProgress(n, len(tasks))
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// expand lists every table of regions declared without tables
func (s *Scanner) expand(ctx context.Context, plan config.RegionPlan) (config.RegionPlan, error) {
	out := make(config.RegionPlan, 0, len(plan))
	for _, rt := range plan {
		if len(rt.Tables) > 0 {
			out = append(out, rt)
			continue
		}
		tables, err := s.sources.Metadata.ListTables(ctx, rt.Region)
		if err != nil {
			return nil, apperrors.Upstreamf(err, "list tables in %s", rt.Region)
		}
		logger.Debugf("Found %d tables in %s", len(tables), rt.Region)
		out = append(out, config.RegionTables{Region: rt.Region, Tables: tables})
	}
	return out, nil
}

// regionState resolves the price table and reserved-capacity signal of a region once
func (s *Scanner) regionState(ctx context.Context, region string) *regionState {
	state := &regionState{reserved: models.ReservedUnknown}

	prices, err := s.prices.PriceTable(ctx, region)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindUnknown {
			err = apperrors.Upstreamf(err, "pricing %s", region)
		}
		logger.WithFields(logrus.Fields{"region": region}).Warnf("Pricing unavailable, skipping region: %v", err)
		state.err = err
		return state
	}
	state.prices = prices

	if s.sources.Reserved != nil {
		state.reserved = s.sources.Reserved.ReservedCapacity(ctx, region)
	}
	return state
}

func (s *Scanner) runTask(ctx context.Context, task Task) models.Bundle {
	bundle := models.Bundle{
		TaskIndex: task.Index,
		Region:    task.Region,
		TableName: task.Table,
	}
	log := logger.WithFields(logrus.Fields{"region": task.Region, "table": task.Table})

	if task.RegionErr != nil {
		failAll(&bundle, task.RegionErr)
		return bundle
	}

	if s.opts.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.TaskTimeout)
		defer cancel()
	}

	log.Debug("Analyzing table")

	table, err := s.sources.Metadata.DescribeTable(ctx, task.Region, task.Table)
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindUpstreamService {
			err = apperrors.Upstreamf(err, "describe %s", task.Table)
		}
		log.Warnf("Failed to describe table: %v", err)
		failAll(&bundle, err)
		return bundle
	}

	c := &collector{source: s.sources.Metrics, period: s.opts.MetricPeriod, task: task, table: table}
	rec := s.recommender

	bundle.CapacityMode = runAnalyzer(ctx, models.AnalyzerCapacityMode, func(ctx context.Context) (*models.CapacityModeResult, error) {
		in, err := c.capacityMode(ctx)
		if err != nil {
			return nil, err
		}
		return rec.CapacityMode(in)
	})
	record(&bundle, models.AnalyzerCapacityMode, bundle.CapacityMode)

	bundle.TableClass = runAnalyzer(ctx, models.AnalyzerTableClass, func(ctx context.Context) (*models.TableClassResult, error) {
		in, err := c.tableClass(ctx)
		if err != nil {
			return nil, err
		}
		return rec.TableClass(in)
	})
	record(&bundle, models.AnalyzerTableClass, bundle.TableClass)

	bundle.Utilization = runAnalyzer(ctx, models.AnalyzerUtilization, func(ctx context.Context) (*models.UtilizationResult, error) {
		in, err := c.utilization(ctx)
		if err != nil {
			return nil, err
		}
		return rec.Utilization(in)
	})
	record(&bundle, models.AnalyzerUtilization, bundle.Utilization)

	bundle.UnusedIndex = runAnalyzer(ctx, models.AnalyzerUnusedIndex, func(ctx context.Context) (*models.UnusedIndexResult, error) {
		in, err := c.unusedIndexes(ctx)
		if err != nil {
			return nil, err
		}
		return rec.UnusedIndexes(in)
	})
	record(&bundle, models.AnalyzerUnusedIndex, bundle.UnusedIndex)

	for _, f := range bundle.Errors {
		log.WithField("analyzer", f.Analyzer).Warnf("Analyzer failed: %s", f.Message)
	}
	return bundle
}
