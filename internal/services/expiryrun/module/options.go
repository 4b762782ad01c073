package module

import (
	"time"

	"expiryai/internal/platform/config"
	"expiryai/internal/services/expiryrun/domain"
	"expiryai/internal/services/expiryrun/guardrails"
)

// Options for the expiryrun module
type Options struct {
	Defaults     domain.Params
	EnableLeases bool
	LeaseTTL     time.Duration
}

// FromConfig fills options from environment
// CORE_EXPIRY_ALPHA (default 0.8) is the confidence saturation rate
// CORE_EXPIRY_CHUNK (default 5000) is the observation page size
// CORE_EXPIRY_HORIZON_DAYS (default 14) is how far ahead time risk starts rising
// CORE_EXPIRY_MIN_CONFIDENCE (default 0.50) drops weaker signatures
// CORE_EXPIRY_MIN_RISK (default 0.35) drops lower risk recommendations
// CORE_EXPIRY_MAX_ROWS (default 500) caps rows per tenant, 0 is no cap
// CORE_EXPIRY_SORT_BEFORE_CAP (default false) ranks by risk before capping; off caps held lots in key order
// CORE_EXPIRY_LEASES (default true) takes the cross process run lease
// CORE_EXPIRY_LEASE_TTL (default 30m) is when a stale lease may be taken over
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_EXPIRY_")
	return Options{
		Defaults: domain.Params{
			Alpha:         c.MayFloat64("ALPHA", 0.8),
			ChunkSize:     c.MayInt("CHUNK", 5000),
			HorizonDays:   c.MayInt("HORIZON_DAYS", 14),
			MinConfidence: c.MayFloat64("MIN_CONFIDENCE", 0.50),
			MinRisk:       c.MayFloat64("MIN_RISK", 0.35),
			MaxRows:       c.MayInt("MAX_ROWS", 500),
			SortBeforeCap: c.MayBool("SORT_BEFORE_CAP", false),
		},
		EnableLeases: c.MayBool("LEASES", true),
		LeaseTTL:     c.MayDuration("LEASE_TTL", guardrails.DefaultTTL),
	}
}
