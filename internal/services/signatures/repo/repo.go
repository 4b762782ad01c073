// Package repo provides Postgres bindings for batch_signatures
package repo

import (
	"context"
	"time"

	"expiryai/internal/modkit/repokit"
	perr "expiryai/internal/platform/errors"
	"expiryai/internal/platform/store"
	ptime "expiryai/internal/platform/time"
	"expiryai/internal/services/signatures/domain"
)

// upsertChunk bounds the array parameters of one statement
const upsertChunk = 1000

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

var _ domain.StorageRepo = (*pg)(nil)

// NewPG returns a binder for the signature table
func NewPG() repokit.Binder[domain.StorageRepo] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) domain.StorageRepo { return &pg{q: q} }

// UpsertSignatures stages each chunk through unnest and merges on the natural key.
// Run it inside a transaction so a failed chunk drops the whole generation
func (r *pg) UpsertSignatures(ctx context.Context, sigs []domain.BatchSignature, now time.Time) (int, error) {
	total := 0
	for _, w := range store.Chunks(len(sigs), upsertChunk) {
		part := sigs[w[0]:w[1]]
		var (
			barcodes = make([]string, len(part))
			names    = make([]string, len(part))
			expiries = make([]time.Time, len(part))
			counts   = make([]int32, len(part))
			support  = make([]float64, len(part))
			conf     = make([]float64, len(part))
		)
		for i, s := range part {
			barcodes[i] = s.Barcode
			names[i] = s.NameNorm
			expiries[i] = s.Expiry
			counts[i] = int32(s.DistinctTenantCount)
			support[i] = s.SupportSum
			conf[i] = s.Confidence
		}
		ct, err := r.q.Exec(ctx, `
			INSERT INTO batch_signatures
			       (barcode, name_norm, expiry_date, distinct_tenant_count, support_sum, confidence, updated_at)
			SELECT t.barcode, t.name_norm, t.expiry_date, t.cnt, t.support, t.conf, $7
			  FROM unnest($1::text[], $2::text[], $3::date[], $4::int[], $5::float8[], $6::float8[])
			       AS t(barcode, name_norm, expiry_date, cnt, support, conf)
			ON CONFLICT (barcode, name_norm, expiry_date) DO UPDATE
			   SET distinct_tenant_count = EXCLUDED.distinct_tenant_count,
			       support_sum           = EXCLUDED.support_sum,
			       confidence            = EXCLUDED.confidence,
			       updated_at            = EXCLUDED.updated_at`,
			barcodes, names, expiries, counts, support, conf, now.UTC(),
		)
		if err != nil {
			return total, perr.FromPostgresf(err, "signatures: upsert rows %d..%d", w[0], w[1])
		}
		total += int(ct.RowsAffected())
	}
	return total, nil
}

// Candidates loads the signatures a tenant's holdings could match
func (r *pg) Candidates(ctx context.Context, f domain.CandidateFilter) ([]domain.BatchSignature, error) {
	if len(f.Barcodes) == 0 || len(f.Expiries) == 0 {
		return nil, nil
	}
	out, err := store.Many(ctx, r.q, ScanSignature, `
		SELECT barcode, name_norm, expiry_date, distinct_tenant_count, support_sum, confidence, updated_at
		  FROM batch_signatures
		 WHERE barcode = ANY($1::text[])
		   AND expiry_date = ANY($2::date[])
		   AND confidence >= $3`,
		f.Barcodes, f.Expiries, f.MinConfidence,
	)
	if err != nil {
		return nil, perr.FromPostgres(err, "signatures: candidates")
	}
	return out, nil
}

// ScanSignature reads the seven signature columns in table order
func ScanSignature(row store.Row) (domain.BatchSignature, error) {
	var (
		s   domain.BatchSignature
		cnt int32
	)
	if err := row.Scan(&s.Barcode, &s.NameNorm, &s.Expiry, &cnt, &s.SupportSum, &s.Confidence, &s.UpdatedAt); err != nil {
		return s, err
	}
	s.Expiry = ptime.DateOf(s.Expiry)
	s.DistinctTenantCount = int(cnt)
	return s, nil
}
