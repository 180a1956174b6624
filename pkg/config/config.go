package config

import (
	"os"
	"strconv"
	"time"

	"github.com/opscart/dynamodb-cost-optimizer/pkg/apperrors"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/models"
	"github.com/opscart/dynamodb-cost-optimizer/pkg/simulator"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWindowDays = 14
	MaxWindowDays     = 90
	DefaultWorkers    = 10
)

// Metric sources
const (
	SourceCloudWatch = "cloudwatch"
	SourcePrometheus = "prometheus"
	SourceFixture    = "fixture"
)

// AutoscalingConfig is the simulated autoscaling policy
type AutoscalingConfig struct {
	TargetUtilization float64       `yaml:"targetUtilization"`
	MinCapacity       float64       `yaml:"minCapacity"`
	MaxCapacity       float64       `yaml:"maxCapacity"`
	Tick              time.Duration `yaml:"tick"`
}

// Config holds application configuration
type Config struct {
	// Analysis plan
	Regions      RegionPlan    `yaml:"regions"`
	WindowDays   int           `yaml:"days"`
	Workers      int           `yaml:"workers"`
	TaskTimeout  time.Duration `yaml:"taskTimeout"`
	MetricPeriod time.Duration `yaml:"metricPeriod"`

	Thresholds  Thresholds        `yaml:"thresholds"`
	Autoscaling AutoscalingConfig `yaml:"autoscaling"`

	// Metric and metadata source
	MetricsSource string `yaml:"metricsSource"`
	PrometheusURL string `yaml:"prometheusURL"`
	FixturePath   string `yaml:"fixture"`

	// Pricing
	PricingProvider string            `yaml:"pricingProvider"`
	PricesFile      string            `yaml:"pricesFile"`
	Prices          models.PriceTable `yaml:"prices"`

	// Storage
	StorageEnabled bool   `yaml:"storageEnabled"`
	DatabaseURL    string `yaml:"databaseURL"`

	// Output
	MetricsFile string `yaml:"metricsFile"`
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	return &Config{
		WindowDays:   getEnvInt("DDB_WINDOW_DAYS", DefaultWindowDays),
		Workers:      getEnvInt("DDB_WORKERS", DefaultWorkers),
		TaskTimeout:  getEnvDuration("DDB_TASK_TIMEOUT", 5*time.Minute),
		MetricPeriod: 5 * time.Minute,
		Thresholds:   envThresholds(),
		Autoscaling: AutoscalingConfig{
			TargetUtilization: getEnvFloat("DDB_TARGET_UTILIZATION", 0.7),
			MinCapacity:       1,
			MaxCapacity:       40000,
			Tick:              getEnvDuration("DDB_SIMULATION_TICK", time.Minute),
		},
		MetricsSource:   getEnv("DDB_METRICS_SOURCE", SourceCloudWatch),
		PrometheusURL:   getEnv("PROMETHEUS_URL", "http://localhost:9090"),
		FixturePath:     getEnv("DDB_FIXTURE", ""),
		PricingProvider: getEnv("DDB_PRICING_PROVIDER", "aws"),
		PricesFile:      getEnv("DDB_PRICES_FILE", ""),
		StorageEnabled:  getEnvBool("STORAGE_ENABLED", false),
		DatabaseURL:     getEnv("DATABASE_URL", "host=localhost port=5432 user=costuser password=devpassword dbname=costoptimizer sslmode=disable"),
		MetricsFile:     getEnv("DDB_METRICS_FILE", ""),
	}
}

func envThresholds() Thresholds {
	t := DefaultThresholds()
	t.UtilizationUpper = getEnvFloat("DDB_UTILIZATION_THRESHOLD", t.UtilizationUpper)
	t.UtilizationLower = getEnvFloat("DDB_ON_DEMAND_THRESHOLD", t.UtilizationLower)
	t.MinSavings = getEnvFloat("DDB_MIN_SAVINGS", t.MinSavings)
	return t
}

// LoadFile overlays a YAML file on the current configuration. Keys absent from
// the file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return apperrors.InvalidInput("config file %s: %v", path, err)
	}
	return nil
}

// UseDevPreset configures a short window for quick iterations
func (c *Config) UseDevPreset() {
	c.WindowDays = 3
	c.Workers = 4
}

// UseProductionPreset configures the standard two-week window
func (c *Config) UseProductionPreset() {
	c.WindowDays = DefaultWindowDays
	c.Workers = DefaultWorkers
}

// ClampDays limits the analysis window to [1, MaxWindowDays]
func ClampDays(days int) int {
	if days < 1 {
		return 1
	}
	if days > MaxWindowDays {
		return MaxWindowDays
	}
	return days
}

// Days returns the clamped analysis window
func (c *Config) Days() int {
	return ClampDays(c.WindowDays)
}

// Policy returns the simulated autoscaling policy
func (c *Config) Policy() simulator.Policy {
	return simulator.Policy{
		TargetUtilization: c.Autoscaling.TargetUtilization,
		MinCapacity:       c.Autoscaling.MinCapacity,
		MaxCapacity:       c.Autoscaling.MaxCapacity,
		Tick:              c.Autoscaling.Tick,
	}
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return apperrors.InvalidInput("workers must be at least 1, got %d", c.Workers)
	}
	if c.TaskTimeout <= 0 {
		return apperrors.InvalidInput("task timeout must be positive, got %v", c.TaskTimeout)
	}
	if c.MetricPeriod < time.Minute {
		return apperrors.InvalidInput("metric period must be at least 1 minute, got %v", c.MetricPeriod)
	}
	t := c.Thresholds
	if t.UtilizationLower < 0 || t.UtilizationUpper > 100 || t.UtilizationLower > t.UtilizationUpper {
		return apperrors.InvalidInput("utilization thresholds must satisfy 0 <= lower (%v) <= upper (%v) <= 100",
			t.UtilizationLower, t.UtilizationUpper)
	}
	if t.MinSavings < 0 {
		return apperrors.InvalidInput("minimum savings must be >= 0, got %v", t.MinSavings)
	}
	if t.IAToStandardRatio >= t.StandardToIARatio {
		return apperrors.InvalidInput("IA-to-standard ratio (%v) must be below standard-to-IA ratio (%v)",
			t.IAToStandardRatio, t.StandardToIARatio)
	}
	if t.IAStorageFactor <= 0 || t.IAThroughputFactor <= 0 {
		return apperrors.InvalidInput("storage class scale factors must be positive")
	}
	if err := c.Policy().Validate(); err != nil {
		return err
	}
	switch c.MetricsSource {
	case SourceCloudWatch:
	case SourcePrometheus:
		if c.PrometheusURL == "" {
			return apperrors.InvalidInput("PROMETHEUS_URL must be set when the metrics source is prometheus")
		}
	case SourceFixture:
		if c.FixturePath == "" {
			return apperrors.InvalidInput("a fixture file must be set when the metrics source is fixture")
		}
	default:
		return apperrors.InvalidInput("unknown metrics source: %s", c.MetricsSource)
	}
	if c.StorageEnabled && c.DatabaseURL == "" {
		return apperrors.InvalidInput("DATABASE_URL must be set when storage is enabled")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
