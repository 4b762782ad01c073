package domain

import "context"

// Repo reads the inventory tables owned by the catalog service
type Repo interface {
	// ObservationPage returns up to limit observations with id > afterID in id order
	// and the last id returned, which is afterID when the page is empty
	ObservationPage(ctx context.Context, afterID int64, limit int) ([]Observation, int64, error)

	// HeldSignatures returns the distinct (barcode, name, expiry) a tenant holds
	HeldSignatures(ctx context.Context, tenantID int64) ([]HeldSignature, error)

	// Tenants returns every known tenant id ascending
	Tenants(ctx context.Context) ([]int64, error)
}

// SourcePort is the read surface the engine consumes
type SourcePort interface {
	// Stream walks every observation in pages of chunkSize, calling fn once per page.
	// An error from fn stops the walk and is returned as is
	Stream(ctx context.Context, chunkSize int, fn func([]Observation) error) error

	HeldSignatures(ctx context.Context, tenantID int64) ([]HeldSignature, error)
	Tenants(ctx context.Context) ([]int64, error)
}
