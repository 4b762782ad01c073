// Package service implements the per tenant recommendation generator
package service

import (
	"context"
	"slices"
	"time"

	"expiryai/internal/core/normalize"
	"expiryai/internal/core/scoring"
	"expiryai/internal/modkit/repokit"
	perr "expiryai/internal/platform/errors"
	"expiryai/internal/platform/logger"
	"expiryai/internal/platform/metrics"
	ptime "expiryai/internal/platform/time"
	invdom "expiryai/internal/services/inventory/domain"
	"expiryai/internal/services/recommendations/domain"
	sigdom "expiryai/internal/services/signatures/domain"
)

// Holdings is the slice of the inventory source the generator reads
type Holdings interface {
	HeldSignatures(ctx context.Context, tenantID int64) ([]invdom.HeldSignature, error)
}

// Service intersects a tenant's stock with the global signature table
type Service struct {
	DB         repokit.TxRunner
	Binder     repokit.Binder[domain.StorageRepo]
	Holdings   Holdings
	Signatures sigdom.ReaderPort
	Metrics    *metrics.Engine

	// Location decides which calendar day counts as today
	Location *time.Location
	Now      func() time.Time
}

var _ domain.GeneratorPort = (*Service)(nil)

// New constructs the generator
func New(
	db repokit.TxRunner,
	binder repokit.Binder[domain.StorageRepo],
	holdings Holdings,
	signatures sigdom.ReaderPort,
	m *metrics.Engine,
	loc *time.Location,
) *Service {
	if db == nil {
		panic("recommendations.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("recommendations.Service requires a non nil Repo binder")
	}
	if holdings == nil || signatures == nil {
		panic("recommendations.Service requires holdings and a signature reader")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		DB:         db,
		Binder:     binder,
		Holdings:   holdings,
		Signatures: signatures,
		Metrics:    metrics.OrNoop(m),
		Location:   loc,
		Now:        time.Now,
	}
}

// Recompute rebuilds tenantID's active row set.
// Rows are only ever written for lots the tenant itself holds; the reset and the
// reactivation commit together or not at all
func (s *Service) Recompute(ctx context.Context, tenantID int64, p domain.Params) (domain.Result, error) {
	res := domain.Result{TenantID: tenantID}
	if p.HorizonDays < 0 || p.MaxRows < 0 {
		return res, perr.InvalidArgf("recommendations: horizon and max rows must not be negative")
	}
	l := logger.C(logger.WithTenant(ctx, tenantID)).With().Str("mod", "recommendations").Logger()

	held, err := s.Holdings.HeldSignatures(ctx, tenantID)
	if err != nil {
		return res, err
	}
	keys := heldKeys(held)
	res.Held = len(keys)

	now := s.Now()
	if len(keys) == 0 {
		err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
			n, e := s.Binder.Bind(q).DeactivateAll(ctx, tenantID, now)
			res.Deactivated = n
			return e
		})
		if err != nil {
			return res, err
		}
		s.Metrics.RecommendationsDeactivated.Add(float64(res.Deactivated))
		l.Debug().Int64("deactivated", res.Deactivated).Msg("recommendations: no holdings")
		return res, nil
	}

	cands, err := s.Signatures.Candidates(ctx, filterFor(keys, p.MinConfidence))
	if err != nil {
		return res, err
	}
	res.Candidates = len(cands)

	recs := score(tenantID, keys, cands, p, ptime.Today(now, s.Location), now)

	err = s.DB.Tx(ctx, func(q repokit.Queryer) error {
		repo := s.Binder.Bind(q)
		n, e := repo.DeactivateAll(ctx, tenantID, now)
		if e != nil {
			return e
		}
		res.Deactivated = n
		if len(recs) == 0 {
			return nil
		}
		_, e = repo.Upsert(ctx, recs)
		return e
	})
	if err != nil {
		res.Deactivated = 0
		return res, err
	}
	res.Activated = len(recs)
	s.Metrics.RecommendationsDeactivated.Add(float64(res.Deactivated))
	s.Metrics.RecommendationsActivated.Add(float64(res.Activated))

	l.Debug().
		Int("held", res.Held).
		Int("candidates", res.Candidates).
		Int("activated", res.Activated).
		Int64("deactivated", res.Deactivated).
		Msg("recommendations: tenant done")
	return res, nil
}

// heldKeys normalizes, drops lots missing a barcode or expiry, dedupes and sorts
func heldKeys(held []invdom.HeldSignature) []sigdom.Key {
	seen := make(map[sigdom.Key]struct{}, len(held))
	keys := make([]sigdom.Key, 0, len(held))
	for _, h := range held {
		if !h.Valid() {
			continue
		}
		k := sigdom.Key{Barcode: h.Barcode, NameNorm: normalize.Name(h.ProductName), Expiry: ptime.DateOf(h.ExpiryDate)}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

func compareKeys(a, b sigdom.Key) int {
	switch {
	case a == b:
		return 0
	case a.Less(b):
		return -1
	}
	return 1
}

func filterFor(keys []sigdom.Key, minConfidence float64) sigdom.CandidateFilter {
	f := sigdom.CandidateFilter{MinConfidence: minConfidence}
	seenB := map[string]bool{}
	seenE := map[time.Time]bool{}
	for _, k := range keys {
		if !seenB[k.Barcode] {
			seenB[k.Barcode] = true
			f.Barcodes = append(f.Barcodes, k.Barcode)
		}
		if !seenE[k.Expiry] {
			seenE[k.Expiry] = true
			f.Expiries = append(f.Expiries, k.Expiry)
		}
	}
	return f
}

// score turns held keys with global evidence into recommendations, best first when sorting
func score(
	tenantID int64,
	keys []sigdom.Key,
	cands []sigdom.BatchSignature,
	p domain.Params,
	today, now time.Time,
) []domain.Recommendation {
	byKey := make(map[sigdom.Key]sigdom.BatchSignature, len(cands))
	for _, c := range cands {
		if c.Confidence >= p.MinConfidence {
			byKey[c.Key] = c
		}
	}

	if !p.SortBeforeCap && p.MaxRows > 0 && len(keys) > p.MaxRows {
		keys = keys[:p.MaxRows]
	}

	var out []domain.Recommendation
	for _, k := range keys {
		sig, ok := byKey[k]
		if !ok {
			continue
		}
		tr := scoring.TimeRisk(k.Expiry, today, p.HorizonDays)
		risk := scoring.Risk(sig.Confidence, tr)
		if risk < p.MinRisk {
			continue
		}
		out = append(out, domain.Recommendation{
			TenantID:           tenantID,
			Key:                k,
			Confidence:         sig.Confidence,
			TimeRisk:           tr,
			Risk:               risk,
			Level:              scoring.LevelFromConfidence(sig.Confidence),
			StoreConfirmations: sig.DistinctTenantCount,
			IsActive:           true,
			LastComputedAt:     now,
		})
	}

	if p.SortBeforeCap {
		slices.SortStableFunc(out, func(a, b domain.Recommendation) int {
			switch {
			case a.Risk > b.Risk:
				return -1
			case a.Risk < b.Risk:
				return 1
			case !a.Expiry.Equal(b.Expiry):
				return a.Expiry.Compare(b.Expiry)
			}
			return compareKeys(a.Key, b.Key)
		})
		if p.MaxRows > 0 && len(out) > p.MaxRows {
			out = out[:p.MaxRows]
		}
	}
	return out
}
