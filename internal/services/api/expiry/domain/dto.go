// Package domain holds DTOs for the expiry read API
package domain

import "time"

// Limits applied when a query omits or exceeds limit
const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// SignatureQuery filters the global signature table
type SignatureQuery struct {
	Barcode       string  `query:"barcode" validate:"omitempty,max=64"`
	ExpiryFrom    string  `query:"expiry_from" validate:"omitempty,datetime=2006-01-02"`
	ExpiryTo      string  `query:"expiry_to" validate:"omitempty,datetime=2006-01-02"`
	MinConfidence float64 `query:"min_confidence" validate:"gte=0,lte=1"`
	Limit         int     `query:"limit" validate:"omitempty,min=1,max=500"`
}

// RecommendationQuery filters one tenant's active recommendations
type RecommendationQuery struct {
	Level string `query:"level" validate:"omitempty,oneof=weak likely confirmed"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=500"`
}

// SignatureRow is one batch signature on the wire
type SignatureRow struct {
	Barcode             string    `json:"barcode"`
	NameNorm            string    `json:"name_norm"`
	ExpiryDate          string    `json:"expiry_date"`
	DistinctTenantCount int       `json:"distinct_tenant_count"`
	SupportSum          float64   `json:"support_sum"`
	Confidence          float64   `json:"confidence"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// RecommendationRow is one active recommendation on the wire
type RecommendationRow struct {
	Barcode            string    `json:"barcode"`
	NameNorm           string    `json:"name_norm"`
	ExpiryDate         string    `json:"expiry_date"`
	Confidence         float64   `json:"confidence"`
	TimeRisk           float64   `json:"time_risk"`
	Risk               float64   `json:"risk"`
	Level              string    `json:"level"`
	StoreConfirmations int       `json:"store_confirmations"`
	LastComputedAt     time.Time `json:"last_computed_at"`
}

// SignatureFilter is SignatureQuery after parsing
type SignatureFilter struct {
	Barcode       string
	From, To      *time.Time
	MinConfidence float64
	Limit         int
}
