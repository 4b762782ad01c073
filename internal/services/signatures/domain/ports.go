package domain

import (
	"context"
	"time"
)

// StorageRepo persists batch signatures
type StorageRepo interface {
	// UpsertSignatures writes sigs keyed by their identity, stamping updated_at with now
	UpsertSignatures(ctx context.Context, sigs []BatchSignature, now time.Time) (int, error)

	// Candidates returns signatures whose barcode and expiry are both in the filter
	// and whose confidence is at least MinConfidence
	Candidates(ctx context.Context, f CandidateFilter) ([]BatchSignature, error)
}

// AggregatorPort rebuilds the signature table from the whole fleet
type AggregatorPort interface {
	Recompute(ctx context.Context, p Params) (Result, error)
}

// ReaderPort is the read side the recommendation generator consumes
type ReaderPort interface {
	Candidates(ctx context.Context, f CandidateFilter) ([]BatchSignature, error)
}
