// Package repo provides read queries behind the expiry API
package repo

import (
	"context"
	"time"

	"expiryai/internal/modkit/repokit"
	perr "expiryai/internal/platform/errors"
	"expiryai/internal/platform/store"
	ptime "expiryai/internal/platform/time"
	"expiryai/internal/services/api/expiry/domain"
)

// Repo is the read model over both engine tables
type Repo interface {
	ListSignatures(ctx context.Context, f domain.SignatureFilter) ([]domain.SignatureRow, error)
	ActiveRecommendations(ctx context.Context, tenantID int64, level string, limit int) ([]domain.RecommendationRow, error)
}

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

var _ Repo = (*pg)(nil)

// NewPG returns a binder for the read model
func NewPG() repokit.Binder[Repo] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Repo { return &pg{q: q} }

// ListSignatures orders by confidence desc then key so pages are stable
func (r *pg) ListSignatures(ctx context.Context, f domain.SignatureFilter) ([]domain.SignatureRow, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.SignatureRow, error) {
		var (
			s   domain.SignatureRow
			exp time.Time
			cnt int32
		)
		err := row.Scan(&s.Barcode, &s.NameNorm, &exp, &cnt, &s.SupportSum, &s.Confidence, &s.UpdatedAt)
		s.ExpiryDate = exp.Format(ptime.DateLayout)
		s.DistinctTenantCount = int(cnt)
		return s, err
	}, `
		SELECT barcode, name_norm, expiry_date, distinct_tenant_count, support_sum, confidence, updated_at
		  FROM batch_signatures
		 WHERE ($1 = '' OR barcode = $1)
		   AND ($2::date IS NULL OR expiry_date >= $2::date)
		   AND ($3::date IS NULL OR expiry_date <= $3::date)
		   AND confidence >= $4
		 ORDER BY confidence DESC, barcode, name_norm, expiry_date
		 LIMIT $5`,
		f.Barcode, f.From, f.To, f.MinConfidence, f.Limit,
	)
	if err != nil {
		return nil, perr.FromPostgres(err, "expiry api: list signatures")
	}
	return out, nil
}

// ActiveRecommendations returns the tenant's active rows by risk desc
func (r *pg) ActiveRecommendations(ctx context.Context, tenantID int64, level string, limit int) ([]domain.RecommendationRow, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.RecommendationRow, error) {
		var (
			x   domain.RecommendationRow
			exp time.Time
			cnt int32
		)
		err := row.Scan(&x.Barcode, &x.NameNorm, &exp, &x.Confidence, &x.TimeRisk, &x.Risk, &x.Level, &cnt, &x.LastComputedAt)
		x.ExpiryDate = exp.Format(ptime.DateLayout)
		x.StoreConfirmations = int(cnt)
		return x, err
	}, `
		SELECT barcode, name_norm, expiry_date, confidence, time_risk, risk, level,
		       store_confirmations, last_computed_at
		  FROM store_expiry_recommendations
		 WHERE tenant_id = $1
		   AND is_active
		   AND ($2 = '' OR level = $2)
		 ORDER BY risk DESC, expiry_date, barcode, name_norm
		 LIMIT $3`,
		tenantID, level, limit,
	)
	if err != nil {
		return nil, perr.FromPostgresf(err, "expiry api: recommendations for tenant %d", tenantID)
	}
	return out, nil
}
