package models

// BillingMode is how a table or index is charged for throughput
type BillingMode string

const (
	BillingProvisioned BillingMode = "PROVISIONED"
	BillingOnDemand    BillingMode = "ON_DEMAND"
)

// ParseBillingMode maps the DynamoDB API spelling onto a BillingMode.
// An empty mode means the table predates billing mode summaries and is provisioned.
func ParseBillingMode(mode string) BillingMode {
	switch mode {
	case "PAY_PER_REQUEST", string(BillingOnDemand):
		return BillingOnDemand
	default:
		return BillingProvisioned
	}
}

// TableClass is the storage class of a table
type TableClass string

const (
	ClassStandard         TableClass = "STANDARD"
	ClassInfrequentAccess TableClass = "STANDARD_INFREQUENT_ACCESS"
)

// ParseTableClass defaults to the standard class when no class summary is present
func ParseTableClass(class string) TableClass {
	if class == string(ClassInfrequentAccess) {
		return ClassInfrequentAccess
	}
	return ClassStandard
}

// Table represents a DynamoDB table and its global secondary indexes
type Table struct {
	Region      string
	Name        string
	BillingMode BillingMode
	Class       TableClass

	// Provisioned throughput, zero for on-demand tables
	ProvisionedRead  int64
	ProvisionedWrite int64

	SizeBytes int64
	ItemCount int64

	DeletionProtection  bool
	PointInTimeRecovery bool

	Indexes []Index
}

// Index represents a global secondary index
type Index struct {
	Name             string
	ProvisionedRead  int64
	ProvisionedWrite int64
}

// SizeGiB returns the table size in binary gigabytes
func (t *Table) SizeGiB() float64 {
	return float64(t.SizeBytes) / (1024 * 1024 * 1024)
}

// IsOnDemand reports whether the table is billed per request
func (t *Table) IsOnDemand() bool {
	return t.BillingMode == BillingOnDemand
}

// TableSummary is the discovery view of a table
type TableSummary struct {
	TableName           string      `json:"tableName"`
	Region              string      `json:"region"`
	BillingMode         BillingMode `json:"billingMode,omitempty"`
	TableClass          TableClass  `json:"tableClass,omitempty"`
	DeletionProtection  bool        `json:"deletionProtection"`
	PointInTimeRecovery bool        `json:"pointInTimeRecovery"`
	ItemCount           int64       `json:"itemCount"`
	TableSizeBytes      int64       `json:"tableSizeBytes"`
	ProvisionedRead     int64       `json:"provisionedRead"`
	ProvisionedWrite    int64       `json:"provisionedWrite"`
	GSICount            int         `json:"gsiCount"`
	Error               string      `json:"error,omitempty"`
}

// Summarize builds the discovery view of a described table
func (t *Table) Summarize() TableSummary {
	return TableSummary{
		TableName:           t.Name,
		Region:              t.Region,
		BillingMode:         t.BillingMode,
		TableClass:          t.Class,
		DeletionProtection:  t.DeletionProtection,
		PointInTimeRecovery: t.PointInTimeRecovery,
		ItemCount:           t.ItemCount,
		TableSizeBytes:      t.SizeBytes,
		ProvisionedRead:     t.ProvisionedRead,
		ProvisionedWrite:    t.ProvisionedWrite,
		GSICount:            len(t.Indexes),
	}
}
