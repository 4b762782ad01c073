// Package domain defines per tenant expiry risk recommendations
package domain

import (
	"context"
	"time"

	"expiryai/internal/core/scoring"
	sigdom "expiryai/internal/services/signatures/domain"
)

// Recommendation is one lot a tenant holds that global evidence marks as at risk
type Recommendation struct {
	TenantID int64
	sigdom.Key

	Confidence float64
	TimeRisk   float64
	Risk       float64
	Level      scoring.Level

	// StoreConfirmations copies the signature's distinct tenant count
	StoreConfirmations int

	IsActive       bool
	LastComputedAt time.Time
}

// Params tunes one tenant's regeneration
type Params struct {
	HorizonDays   int
	MinConfidence float64
	MinRisk       float64

	// MaxRows caps the rows activated, 0 means no cap
	MaxRows int

	// SortBeforeCap ranks every qualifying lot by risk before applying MaxRows.
	// When false the cap applies to the held lots in key order before scoring
	SortBeforeCap bool
}

// Result summarizes one tenant's regeneration
type Result struct {
	TenantID    int64
	Held        int
	Candidates  int
	Activated   int
	Deactivated int64
}

// StorageRepo persists store_expiry_recommendations
type StorageRepo interface {
	// DeactivateAll flips every row of the tenant inactive and stamps last_computed_at
	DeactivateAll(ctx context.Context, tenantID int64, now time.Time) (int64, error)

	// Upsert writes recs keyed by (tenant, barcode, name, expiry)
	Upsert(ctx context.Context, recs []Recommendation) (int, error)
}

// GeneratorPort regenerates one tenant's recommendations
type GeneratorPort interface {
	Recompute(ctx context.Context, tenantID int64, p Params) (Result, error)
}
