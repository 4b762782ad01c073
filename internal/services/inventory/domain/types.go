// Package domain defines the inventory collaborator records the engine consumes
package domain

import "time"

// Observation is one inventory row seen anywhere in the fleet
// nullable columns arrive as zero values; the aggregator decides what to drop
type Observation struct {
	ID          int64
	TenantID    int64
	Barcode     string
	ProductName string
	ExpiryDate  time.Time // civil date at UTC midnight, zero when unknown
	ObserverID  *int64
}

// HeldSignature is one distinct lot a tenant currently holds, name not yet normalized
type HeldSignature struct {
	Barcode     string
	ProductName string
	ExpiryDate  time.Time
}

// Valid reports whether the signature carries the fields a recommendation needs
func (h HeldSignature) Valid() bool {
	return h.Barcode != "" && !h.ExpiryDate.IsZero()
}
