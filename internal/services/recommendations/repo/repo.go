// Package repo provides Postgres bindings for store_expiry_recommendations
package repo

import (
	"context"
	"time"

	"expiryai/internal/modkit/repokit"
	perr "expiryai/internal/platform/errors"
	"expiryai/internal/platform/store"
	"expiryai/internal/services/recommendations/domain"
)

const upsertChunk = 1000

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

var _ domain.StorageRepo = (*pg)(nil)

// NewPG returns a binder for the recommendation table
func NewPG() repokit.Binder[domain.StorageRepo] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) domain.StorageRepo { return &pg{q: q} }

// DeactivateAll resets the tenant's row set; inactive rows stay as history
func (r *pg) DeactivateAll(ctx context.Context, tenantID int64, now time.Time) (int64, error) {
	ct, err := r.q.Exec(ctx, `
		UPDATE store_expiry_recommendations
		   SET is_active = false, last_computed_at = $2
		 WHERE tenant_id = $1`,
		tenantID, now.UTC(),
	)
	if err != nil {
		return 0, perr.FromPostgresf(err, "recommendations: deactivate tenant %d", tenantID)
	}
	return ct.RowsAffected(), nil
}

// Upsert merges recs on the natural key in chunks
func (r *pg) Upsert(ctx context.Context, recs []domain.Recommendation) (int, error) {
	total := 0
	for _, w := range store.Chunks(len(recs), upsertChunk) {
		part := recs[w[0]:w[1]]
		var (
			tenants  = make([]int64, len(part))
			barcodes = make([]string, len(part))
			names    = make([]string, len(part))
			expiries = make([]time.Time, len(part))
			conf     = make([]float64, len(part))
			timeRisk = make([]float64, len(part))
			risk     = make([]float64, len(part))
			levels   = make([]string, len(part))
			confirms = make([]int32, len(part))
			active   = make([]bool, len(part))
			computed = make([]time.Time, len(part))
		)
		for i, x := range part {
			tenants[i] = x.TenantID
			barcodes[i] = x.Barcode
			names[i] = x.NameNorm
			expiries[i] = x.Expiry
			conf[i] = x.Confidence
			timeRisk[i] = x.TimeRisk
			risk[i] = x.Risk
			levels[i] = string(x.Level)
			confirms[i] = int32(x.StoreConfirmations)
			active[i] = x.IsActive
			computed[i] = x.LastComputedAt.UTC()
		}
		ct, err := r.q.Exec(ctx, `
			INSERT INTO store_expiry_recommendations
			       (tenant_id, barcode, name_norm, expiry_date, confidence, time_risk, risk,
			        level, store_confirmations, is_active, last_computed_at)
			SELECT * FROM unnest($1::bigint[], $2::text[], $3::text[], $4::date[], $5::float8[], $6::float8[],
			                     $7::float8[], $8::text[], $9::int[], $10::bool[], $11::timestamptz[])
			ON CONFLICT (tenant_id, barcode, name_norm, expiry_date) DO UPDATE
			   SET confidence          = EXCLUDED.confidence,
			       time_risk           = EXCLUDED.time_risk,
			       risk                = EXCLUDED.risk,
			       level               = EXCLUDED.level,
			       store_confirmations = EXCLUDED.store_confirmations,
			       is_active           = EXCLUDED.is_active,
			       last_computed_at    = EXCLUDED.last_computed_at`,
			tenants, barcodes, names, expiries, conf, timeRisk, risk, levels, confirms, active, computed,
		)
		if err != nil {
			return total, perr.FromPostgresf(err, "recommendations: upsert rows %d..%d", w[0], w[1])
		}
		total += int(ct.RowsAffected())
	}
	return total, nil
}
