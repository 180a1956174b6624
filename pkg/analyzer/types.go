package analyzer

// Percentiles contains statistical percentiles
type Percentiles struct {
	Average float64
	P50     float64
	P90     float64
	P95     float64
	P99     float64
	Peak    float64
	Min     float64
}

// UsagePattern describes how bursty a consumption series is
type UsagePattern struct {
	Type       string  // "steady", "moderate", "spiky", "highly-variable", "unknown"
	Variation  float64 // Coefficient of variation
	Confidence float64
}

// PatternHighlyVariable is the burstiest pattern class
const PatternHighlyVariable = "highly-variable"

// GrowthTrend describes consumption growth over the window
type GrowthTrend struct {
	RatePerMonth float64 // % growth per month
	Confidence   float64 // R² of the fit
	IsGrowing    bool
}
