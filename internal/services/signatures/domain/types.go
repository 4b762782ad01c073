// Package domain defines global batch signatures: fleet-wide evidence that a product lot exists
package domain

import (
	"time"

	ptime "expiryai/internal/platform/time"
)

// Key identifies a product lot independent of which tenant holds it
type Key struct {
	Barcode  string
	NameNorm string
	Expiry   time.Time // civil date at UTC midnight
}

// Less orders keys by barcode, name then expiry
func (k Key) Less(o Key) bool {
	if k.Barcode != o.Barcode {
		return k.Barcode < o.Barcode
	}
	if k.NameNorm != o.NameNorm {
		return k.NameNorm < o.NameNorm
	}
	return k.Expiry.Before(o.Expiry)
}

// String is barcode/name/date, for logs
func (k Key) String() string {
	return k.Barcode + "/" + k.NameNorm + "/" + k.Expiry.Format(ptime.DateLayout)
}

// BatchSignature is the aggregated evidence for one key
type BatchSignature struct {
	Key
	DistinctTenantCount int
	SupportSum          float64
	Confidence          float64
	UpdatedAt           time.Time
}

// Params tunes one aggregation run
type Params struct {
	// Alpha is the saturation rate of the confidence curve
	Alpha float64
	// ChunkSize is the observation page size
	ChunkSize int
}

// SkipReason names why an observation was dropped
type SkipReason string

const (
	// SkipNoTenant is an observation without a tenant id
	SkipNoTenant SkipReason = "no_tenant"
	// SkipNoBarcode is an observation with a blank barcode
	SkipNoBarcode SkipReason = "no_barcode"
	// SkipNoExpiry is an observation without an expiry date
	SkipNoExpiry SkipReason = "no_expiry"
)

// Result summarizes one aggregation run
type Result struct {
	Scanned    int
	Skipped    map[SkipReason]int
	Unresolved int
	Signatures int
}

// SkippedTotal sums the skip counters
func (r Result) SkippedTotal() int {
	n := 0
	for _, v := range r.Skipped {
		n += v
	}
	return n
}

// CandidateFilter narrows the signature table to one tenant's holdings
type CandidateFilter struct {
	Barcodes      []string
	Expiries      []time.Time
	MinConfidence float64
}
