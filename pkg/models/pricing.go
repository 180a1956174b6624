package models

import "sort"

// PriceKey names one cost component in a price table
type PriceKey string

// Standard-class keys
const (
	PriceReadRequest     PriceKey = "read_request"
	PriceWriteRequest    PriceKey = "write_request"
	PriceRCUHour         PriceKey = "rcu_hour"
	PriceWCUHour         PriceKey = "wcu_hour"
	PriceStandardStorage PriceKey = "standard_storage"

	// Aliases filled from the request prices when absent
	PriceStandardRead  PriceKey = "standard_read"
	PriceStandardWrite PriceKey = "standard_write"
	PriceOnDemandRead  PriceKey = "on_demand_read"
	PriceOnDemandWrite PriceKey = "on_demand_write"
)

// Infrequent-access class keys
const (
	PriceIARead    PriceKey = "ia_read"
	PriceIAWrite   PriceKey = "ia_write"
	PriceIARCUHour PriceKey = "ia_rcu_hour"
	PriceIAWCUHour PriceKey = "ia_wcu_hour"
	PriceIAStorage PriceKey = "ia_storage"
)

// RequiredPriceKeys must be present in every usable price table
var RequiredPriceKeys = []PriceKey{
	PriceReadRequest,
	PriceWriteRequest,
	PriceRCUHour,
	PriceWCUHour,
	PriceStandardStorage,
}

// PriceTable maps cost components to USD unit prices
type PriceTable map[PriceKey]float64

// Get returns the price for key, or 0 when the key is absent
func (p PriceTable) Get(key PriceKey) float64 {
	return p[key]
}

// Missing lists the required keys the table lacks, sorted
func (p PriceTable) Missing() []string {
	var missing []string
	for _, key := range RequiredPriceKeys {
		if _, ok := p[key]; !ok {
			missing = append(missing, string(key))
		}
	}
	sort.Strings(missing)
	return missing
}

// WithAliases returns a copy with the standard and on-demand aliases filled in
func (p PriceTable) WithAliases() PriceTable {
	out := p.Clone()
	setDefault := func(alias, from PriceKey) {
		if _, ok := out[alias]; ok {
			return
		}
		if v, ok := out[from]; ok {
			out[alias] = v
		}
	}
	setDefault(PriceStandardRead, PriceReadRequest)
	setDefault(PriceStandardWrite, PriceWriteRequest)
	setDefault(PriceOnDemandRead, PriceReadRequest)
	setDefault(PriceOnDemandWrite, PriceWriteRequest)
	return out
}

// Clone returns an independent copy of the table
func (p PriceTable) Clone() PriceTable {
	if p == nil {
		return nil
	}
	out := make(PriceTable, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ClassKeys are the price keys applicable to one table class
type ClassKeys struct {
	RCUHour      PriceKey
	WCUHour      PriceKey
	ReadRequest  PriceKey
	WriteRequest PriceKey
}

// KeysForClass selects the price keys for a table's storage class
func KeysForClass(class TableClass) ClassKeys {
	if class == ClassInfrequentAccess {
		return ClassKeys{
			RCUHour:      PriceIARCUHour,
			WCUHour:      PriceIAWCUHour,
			ReadRequest:  PriceIARead,
			WriteRequest: PriceIAWrite,
		}
	}
	return ClassKeys{
		RCUHour:      PriceRCUHour,
		WCUHour:      PriceWCUHour,
		ReadRequest:  PriceReadRequest,
		WriteRequest: PriceWriteRequest,
	}
}
