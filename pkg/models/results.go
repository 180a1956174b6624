package models

// AdvisoryNote flags an assumption that may not hold for a result. It is not an error.
type AdvisoryNote string

const (
	NoteReservedCapacity AdvisoryNote = "Account uses DynamoDB reserved capacity; estimate may differ"
	NoteReservedUnknown  AdvisoryNote = "Could not verify reserved capacity status; savings estimate may differ"
	NoteVariableWorkload AdvisoryNote = "Consumption is highly variable; provisioned estimate assumes autoscaling keeps up with bursts"
	NoteGrowingWorkload  AdvisoryNote = "Consumption is growing; revisit autoscaling bounds before they are reached"
)

// ReservedStatus is the tri-state answer to "does the account use reserved capacity"
type ReservedStatus int

const (
	ReservedUnknown ReservedStatus = iota
	ReservedNo
	ReservedYes
)

func (r ReservedStatus) String() string {
	switch r {
	case ReservedYes:
		return "true"
	case ReservedNo:
		return "false"
	default:
		return "unknown"
	}
}

// CapacityBounds are suggested autoscaling limits derived from a simulated trajectory
type CapacityBounds struct {
	MinRead  int64 `json:"recommendedMinRead"`
	MaxRead  int64 `json:"recommendedMaxRead"`
	MinWrite int64 `json:"recommendedMinWrite"`
	MaxWrite int64 `json:"recommendedMaxWrite"`
}

// CapacityModeResult compares on-demand against provisioned billing for one table
type CapacityModeResult struct {
	TableName                     string      `json:"tableName"`
	CurrentMode                   BillingMode `json:"currentMode"`
	RecommendedMode               BillingMode `json:"recommendedMode"`
	CurrentMonthlyCost            float64     `json:"currentMonthlyCost"`
	OnDemandMonthlyCost           float64     `json:"onDemandMonthlyCost"`
	CurrentProvisionedMonthlyCost float64     `json:"currentProvisionedMonthlyCost"`
	OptimalProvisionedMonthlyCost float64     `json:"optimalProvisionedMonthlyCost"`
	PotentialMonthlySavings       float64     `json:"potentialMonthlySavings"`
	SavingsPercentage             float64     `json:"savingsPercentage"`
	AnalysisDays                  int         `json:"analysisDays"`

	// Only set when staying on (or moving to) provisioned mode
	Bounds *CapacityBounds `json:"bounds,omitempty"`

	Notes []AdvisoryNote `json:"notes,omitempty"`
}

// TableClassResult compares the standard and infrequent-access storage classes
type TableClassResult struct {
	TableName                string         `json:"tableName"`
	CurrentClass             TableClass     `json:"currentClass"`
	RecommendedClass         TableClass     `json:"recommendedClass"`
	MonthlyStorageCost       float64        `json:"monthlyStorageCost"`
	MonthlyThroughputCost    float64        `json:"monthlyThroughputCost"`
	StorageToThroughputRatio float64        `json:"storageToThroughputRatio"`
	PotentialMonthlySavings  float64        `json:"potentialMonthlySavings"`
	AnalysisDays             int            `json:"analysisDays"`
	Notes                    []AdvisoryNote `json:"notes,omitempty"`
}

// ResourceType distinguishes a base table from one of its indexes
type ResourceType string

const (
	ResourceTable ResourceType = "TABLE"
	ResourceGSI   ResourceType = "GSI"
)

// UtilizationAction is the right-sizing verdict for one resource
type UtilizationAction string

const (
	ActionSwitchToOnDemand UtilizationAction = "SWITCH_TO_ON_DEMAND"
	ActionReduceCapacity   UtilizationAction = "REDUCE_CAPACITY"
)

// ResourceUtilization is the right-sizing verdict for a table or GSI
type ResourceUtilization struct {
	ResourceName     string       `json:"resourceName"`
	ResourceType     ResourceType `json:"resourceType"`
	IndexName        string       `json:"indexName,omitempty"`
	ReadUtilization  float64      `json:"readUtilization"`
	WriteUtilization float64      `json:"writeUtilization"`

	// 95th percentile of consumed units per second
	ReadP95  float64 `json:"readP95"`
	WriteP95 float64 `json:"writeP95"`

	Action UtilizationAction `json:"recommendationType"`

	// Only set for ActionReduceCapacity
	RecommendedRead  *int64 `json:"recommendedRead,omitempty"`
	RecommendedWrite *int64 `json:"recommendedWrite,omitempty"`

	MonthlySavings float64 `json:"monthlySavings"`
}

// UtilizationResult holds the right-sizing verdicts for a table and its GSIs
type UtilizationResult struct {
	TableName   string      `json:"tableName"`
	BillingMode BillingMode `json:"billingMode"`

	// False for on-demand tables, with Message explaining why
	Applicable bool   `json:"applicable"`
	Message    string `json:"message,omitempty"`

	Recommendations     []ResourceUtilization `json:"recommendations"`
	TotalMonthlySavings float64               `json:"totalMonthlySavings"`
	AnalysisDays        int                   `json:"analysisDays"`
}

// UnusedIndex is a GSI with zero reads over the analysis window
type UnusedIndex struct {
	IndexName      string  `json:"indexName"`
	MonthlySavings float64 `json:"monthlySavings"`
}

// UnusedIndexResult lists the GSIs of a table that were never read
type UnusedIndexResult struct {
	TableName           string        `json:"tableName"`
	HasIndexes          bool          `json:"hasGSIs"`
	TotalIndexes        int           `json:"totalGSIs"`
	Unused              []UnusedIndex `json:"unusedGSIs"`
	TotalMonthlySavings float64       `json:"totalMonthlySavings"`
	AnalysisDays        int           `json:"analysisDays"`
}
