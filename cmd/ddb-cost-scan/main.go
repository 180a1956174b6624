package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/config"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/datasource"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/logger"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/metrics"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/output"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/pricing"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/reporter"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/scanner"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/simulator"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/storage"
)

var (
	// Plan flags
	regions     []string
	regionsFile string
	tables      []string
	days        int
	workers     int
	preset      string

	// Source flags
	metricsSource   string
	fixturePath     string
	pricingProvider string
	pricesFile      string
	profile         string

	// Output flags
	outputFormat string
	reportOutput string
	saveResults  bool
	metricsFile  string
	noProgress   bool

	configFile string
	logLevel   string

	// Global config
	cfg   *config.Config
	store storage.Store

	// History command vars
	historyLimit int

	// Simulate command vars
	simulateFile string
)

func main() {
	// Initialize config
	cfg = config.NewConfig()

	var rootCmd = &cobra.Command{
		Use:   "ddb-cost-scan",
		Short: "DynamoDB cost optimization scanner",
		Long: `Analyze DynamoDB tables across regions and recommend cheaper capacity modes,
table classes, provisioned capacity and the removal of unused global secondary indexes.`,
		PersistentPreRunE: setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
		RunE:              runScan,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringSliceVar(&regions, "region", nil, "Region to analyze (repeatable)")
	rootCmd.PersistentFlags().StringVar(&regionsFile, "regions-file", "", "YAML file mapping regions to table lists")
	rootCmd.PersistentFlags().StringSliceVar(&tables, "tables", nil, "Tables to analyze in every --region (default: all tables)")
	rootCmd.PersistentFlags().StringVar(&metricsSource, "source", "", "Metric source: cloudwatch, prometheus, fixture")
	rootCmd.PersistentFlags().StringVar(&fixturePath, "fixture", "", "Fixture file for --source fixture")
	rootCmd.PersistentFlags().StringVar(&pricingProvider, "pricing", "", "Pricing provider: aws, file, default")
	rootCmd.PersistentFlags().StringVar(&pricesFile, "prices", "", "YAML price file, implies --pricing file")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "AWS shared config profile")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, csv, html")

	rootCmd.Flags().IntVar(&days, "days", config.DefaultWindowDays, "Analysis window in days (1-90)")
	rootCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "Tables analyzed concurrently")
	rootCmd.Flags().StringVar(&preset, "preset", "", "Configuration preset: dev, production")
	rootCmd.Flags().StringVar(&reportOutput, "report-output", "", "Write the report to a file instead of stdout")
	rootCmd.Flags().BoolVar(&saveResults, "save", false, "Archive the run to the database")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write run metrics as a Prometheus textfile")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Hide the progress bar")

	discoverCmd := &cobra.Command{
		Use:   "discover",
		Short: "List tables with their billing settings",
		RunE:  runDiscover,
	}

	pricingCmd := &cobra.Command{
		Use:   "pricing",
		Short: "Print the price table of each region",
		RunE:  runPricing,
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay autoscaling over a consumption series",
		Long: `Read a series of consumed capacity units per second as JSON or YAML, either a bare
list or {"series": [...]}, and print the capacity target tracking would have provisioned.`,
		RunE: runSimulate,
	}
	simulateCmd.Flags().StringVarP(&simulateFile, "file", "f", "-", "Series file, - for stdin")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List archived runs",
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of runs to show")

	showCmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the recommendations of an archived run",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(pricingCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup layers configuration: environment defaults, then --config, then flags
func setup(cmd *cobra.Command, args []string) error {
	if err := logger.SetLogLevel(logLevel); err != nil {
		return err
	}

	if configFile != "" {
		if err := cfg.LoadFile(configFile); err != nil {
			return err
		}
	}
	switch preset {
	case "":
	case "dev":
		cfg.UseDevPreset()
	case "production":
		cfg.UseProductionPreset()
	default:
		return apperrors.InvalidInput("unknown preset: %s", preset)
	}

	flags := cmd.Flags()
	if flags.Changed("days") {
		cfg.WindowDays = days
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if metricsSource != "" {
		cfg.MetricsSource = metricsSource
	}
	if fixturePath != "" {
		cfg.FixturePath = fixturePath
		if metricsSource == "" {
			cfg.MetricsSource = config.SourceFixture
		}
	}
	if pricesFile != "" {
		cfg.PricesFile = pricesFile
		cfg.PricingProvider = "file"
	}
	if pricingProvider != "" {
		cfg.PricingProvider = pricingProvider
	}
	if saveResults {
		cfg.StorageEnabled = true
	}
	if metricsFile != "" {
		cfg.MetricsFile = metricsFile
	}

	if err := applyRegionFlags(); err != nil {
		return err
	}
	return cfg.Validate()
}

func applyRegionFlags() error {
	if regionsFile != "" {
		data, err := os.ReadFile(regionsFile)
		if err != nil {
			return errors.Wrapf(err, "failed to read regions file %s", regionsFile)
		}
		var plan config.RegionPlan
		if err := yaml.Unmarshal(data, &plan); err != nil {
			return apperrors.InvalidInput("regions file %s: %v", regionsFile, err)
		}
		cfg.Regions = plan
	}

	if len(regions) == 0 {
		if len(tables) > 0 {
			return apperrors.InvalidInput("--tables needs at least one --region")
		}
		return nil
	}
	if regionsFile == "" {
		cfg.Regions = nil
	}
	for _, r := range regions {
		cfg.Regions.Add(r, tables...)
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// infof stays off stdout when stdout carries a machine-readable report
func infof(format string, args ...interface{}) {
	if outputFormat == "text" || reportOutput != "" {
		logger.Infof(format, args...)
	}
}

func newSources() (*datasource.Sources, error) {
	return datasource.New(datasource.Config{
		Source:        cfg.MetricsSource,
		PrometheusURL: cfg.PrometheusURL,
		FixturePath:   cfg.FixturePath,
		Profile:       profile,
	})
}

// checkSources fails fast when the Prometheus server does not answer
func checkSources(ctx context.Context, sources *datasource.Sources) error {
	prom, ok := sources.Metrics.(*datasource.PrometheusSource)
	if !ok {
		return nil
	}
	if !prom.IsAvailable(ctx) {
		return apperrors.Upstreamf(errors.New("no response to query"), "Prometheus at %s is not available", cfg.PrometheusURL)
	}
	return nil
}

func newPriceProvider() (pricing.Provider, error) {
	return pricing.NewProvider(&pricing.Config{
		Provider:   cfg.PricingProvider,
		PricesFile: cfg.PricesFile,
		Prices:     cfg.Prices,
		Profile:    profile,
	})
}

func initStorage() error {
	var err error
	store, err = storage.NewStore(storage.Config{Type: "postgres", URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	return nil
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Analyzing tables..."),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(20),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(500*time.Millisecond),
	)
}

func runScan(cmd *cobra.Command, args []string) error {
	if len(cfg.Regions) == 0 {
		return apperrors.InvalidInput("no regions to analyze: use --region, --regions-file or a config file")
	}

	// Reject a bad --output before the analysis runs
	if _, err := reporter.ParseFormat(outputFormat); err != nil {
		return err
	}
	sources, err := newSources()
	if err != nil {
		return err
	}
	prices, err := newPriceProvider()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := checkSources(ctx, sources); err != nil {
		return err
	}
	if cfg.StorageEnabled {
		if err := initStorage(); err != nil {
			return err
		}
		defer store.Close()
	}

	scan := scanner.NewFromConfig(cfg, sources, prices)
	collector := metrics.New()
	scan.SetRecorder(collector)

	var (
		mu  sync.Mutex
		bar *progressbar.ProgressBar
	)
	if !noProgress {
		scan.OnProgress(func(done, total int) {
			mu.Lock()
			defer mu.Unlock()
			if bar == nil {
				bar = newProgressBar(total)
			}
			_ = bar.Set(done)
		})
	}

	infof("Analyzing %d region(s) over %d days with %d workers", len(cfg.Regions), cfg.Days(), cfg.Workers)
	bundles, err := scan.Run(ctx, scanner.Plan{Regions: cfg.Regions, Days: cfg.Days()})
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	report := reporter.Aggregate(bundles, cfg.Days(), cfg.Thresholds)
	collector.ObserveReport(report)

	var w io.Writer = os.Stdout
	if reportOutput != "" {
		f, err := os.Create(reportOutput)
		if err != nil {
			return errors.Wrapf(err, "failed to create report file %s", reportOutput)
		}
		defer f.Close()
		w = f
	}
	handler, err := output.NewHandler(outputFormat, w)
	if err != nil {
		return err
	}
	if err := handler.DisplayReport(ctx, report); err != nil {
		return err
	}
	if reportOutput != "" {
		infof("Report written to %s", reportOutput)
	}

	if cfg.StorageEnabled {
		run, err := store.SaveRun(ctx, report)
		if err != nil {
			logger.Errorf("Failed to archive run: %v", err)
		} else {
			infof("Saved run %s (%d recommendations)", run.ID, run.RecommendationCount)
		}
	}

	if cfg.MetricsFile != "" {
		if err := collector.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Errorf("Failed to write metrics: %v", err)
		}
	}
	return nil
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if len(cfg.Regions) == 0 {
		return apperrors.InvalidInput("no regions to discover: use --region or --regions-file")
	}
	handler, err := output.NewHandler(outputFormat, os.Stdout)
	if err != nil {
		return err
	}
	sources, err := newSources()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	summaries, err := scanner.NewFromConfig(cfg, sources, nil).Discover(ctx, cfg.Regions)
	if err != nil {
		return err
	}
	return handler.DisplayTables(ctx, summaries)
}

func runPricing(cmd *cobra.Command, args []string) error {
	if len(cfg.Regions) == 0 {
		return apperrors.InvalidInput("no regions to price: use --region or --regions-file")
	}
	handler, err := output.NewHandler(outputFormat, os.Stdout)
	if err != nil {
		return err
	}
	prices, err := newPriceProvider()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	var failed []string
	for _, region := range cfg.Regions.Regions() {
		table, err := prices.PriceTable(ctx, region)
		if err != nil {
			logger.Errorf("%s: %v", region, err)
			failed = append(failed, region)
			continue
		}
		if err := handler.DisplayPrices(ctx, region, table); err != nil {
			return err
		}
	}
	if len(failed) > 0 {
		return errors.Errorf("no prices for %d region(s): %v", len(failed), failed)
	}
	return nil
}

type seriesFile struct {
	Series []float64 `yaml:"series"`
}

// readSeries accepts a bare list or a {series: [...]} document. YAML is a superset
// of JSON so one decoder serves both.
func readSeries(r io.Reader) ([]float64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read series")
	}
	var list []float64
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var doc seriesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.InvalidInput("series must be a list of numbers or {series: [...]}: %v", err)
	}
	return doc.Series, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	handler, err := output.NewHandler(outputFormat, os.Stdout)
	if err != nil {
		return err
	}

	var r io.Reader = os.Stdin
	if simulateFile != "-" {
		f, err := os.Open(simulateFile)
		if err != nil {
			return errors.Wrapf(err, "failed to open %s", simulateFile)
		}
		defer f.Close()
		r = f
	}

	series, err := readSeries(r)
	if err != nil {
		return err
	}
	summary, err := simulator.Summarize(series, cfg.Policy())
	if err != nil {
		return err
	}
	return handler.DisplaySimulation(context.Background(), summary)
}

func runHistory(cmd *cobra.Command, args []string) error {
	handler, err := output.NewHandler(outputFormat, os.Stdout)
	if err != nil {
		return err
	}
	if err := initStorage(); err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	runs, err := store.ListRuns(ctx, historyLimit)
	if err != nil {
		return err
	}
	return handler.DisplayRuns(ctx, runs)
}

func runShow(cmd *cobra.Command, args []string) error {
	handler, err := output.NewHandler(outputFormat, os.Stdout)
	if err != nil {
		return err
	}
	if err := initStorage(); err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	run, recs, err := store.GetRun(ctx, args[0])
	if err != nil {
		return err
	}

	if err := handler.DisplayRuns(ctx, []models.Run{*run}); err != nil {
		return err
	}
	return handler.DisplayReport(ctx, reporter.FromArchive(run, recs))
}
