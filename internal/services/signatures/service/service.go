// Package service implements the signature aggregator
package service

import (
	"context"
	"time"

	"expiryai/internal/core/normalize"
	"expiryai/internal/modkit/repokit"
	perr "expiryai/internal/platform/errors"
	"expiryai/internal/platform/logger"
	"expiryai/internal/platform/metrics"
	iddom "expiryai/internal/services/identity/domain"
	idservice "expiryai/internal/services/identity/service"
	invdom "expiryai/internal/services/inventory/domain"
	"expiryai/internal/services/signatures/domain"
)

// Service rebuilds batch_signatures from every tenant's inventory
type Service struct {
	DB      repokit.TxRunner
	Binder  repokit.Binder[domain.StorageRepo]
	Source  invdom.SourcePort
	Roles   iddom.ResolverPort
	Weights iddom.Weights
	Metrics *metrics.Engine

	Now func() time.Time
}

var (
	_ domain.AggregatorPort = (*Service)(nil)
	_ domain.ReaderPort     = (*Service)(nil)
)

// New constructs the aggregator
func New(
	db repokit.TxRunner,
	binder repokit.Binder[domain.StorageRepo],
	source invdom.SourcePort,
	roles iddom.ResolverPort,
	weights iddom.Weights,
	m *metrics.Engine,
) *Service {
	if db == nil {
		panic("signatures.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("signatures.Service requires a non nil Repo binder")
	}
	if source == nil || roles == nil {
		panic("signatures.Service requires an observation source and a role resolver")
	}
	if weights == nil {
		weights = iddom.DefaultWeights()
	}
	return &Service{
		DB:      db,
		Binder:  binder,
		Source:  source,
		Roles:   roles,
		Weights: weights,
		Metrics: metrics.OrNoop(m),
		Now:     time.Now,
	}
}

func skipReason(o invdom.Observation) domain.SkipReason {
	switch {
	case o.TenantID == 0:
		return domain.SkipNoTenant
	case o.Barcode == "":
		return domain.SkipNoBarcode
	case o.ExpiryDate.IsZero():
		return domain.SkipNoExpiry
	}
	return ""
}

// Recompute streams the fleet, keeps each tenant's best weight per lot and
// rewrites every signature in one transaction.
// Nothing is written unless the whole stream was read
func (s *Service) Recompute(ctx context.Context, p domain.Params) (domain.Result, error) {
	res := domain.Result{Skipped: map[domain.SkipReason]int{}}
	if !(p.Alpha > 0) {
		return res, perr.InvalidArgf("signatures: alpha must be positive, got %v", p.Alpha)
	}
	if p.ChunkSize <= 0 {
		return res, perr.InvalidArgf("signatures: chunk size must be positive, got %d", p.ChunkSize)
	}

	l := logger.C(ctx).With().Str("mod", "signatures").Logger()
	l.Info().Float64("alpha", p.Alpha).Int("chunk", p.ChunkSize).Msg("signatures: recompute start")
	start := time.Now()

	cache := idservice.NewWeightCache(s.Roles, s.Weights)
	best := bestWeights{}

	err := s.Source.Stream(ctx, p.ChunkSize, func(page []invdom.Observation) error {
		ids := make([]int64, 0, len(page))
		for _, o := range page {
			if o.ObserverID != nil && skipReason(o) == "" {
				ids = append(ids, *o.ObserverID)
			}
		}
		if err := cache.Prime(ctx, ids); err != nil {
			return err
		}
		for _, o := range page {
			res.Scanned++
			if why := skipReason(o); why != "" {
				res.Skipped[why]++
				l.Debug().Int64("inventory_id", o.ID).Str("reason", string(why)).Msg("signatures: observation skipped")
				continue
			}
			k := domain.Key{
				Barcode:  o.Barcode,
				NameNorm: normalize.Name(o.ProductName),
				Expiry:   o.ExpiryDate,
			}
			best.observe(o.TenantID, k, cache.WeightFor(o.ObserverID))
		}
		return nil
	})
	res.Unresolved = cache.Unresolved()
	s.observeScan(res)
	if err != nil {
		l.Error().Err(err).Int("scanned", res.Scanned).Msg("signatures: stream failed")
		return res, err
	}

	now := s.Now().UTC()
	sigs := best.fold(p.Alpha, now)
	if len(sigs) > 0 {
		if err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
			_, e := s.Binder.Bind(q).UpsertSignatures(ctx, sigs, now)
			return e
		}); err != nil {
			l.Error().Err(err).Int("signatures", len(sigs)).Msg("signatures: upsert failed")
			return res, err
		}
	}
	res.Signatures = len(sigs)
	s.Metrics.SignaturesUpserted.Add(float64(res.Signatures))

	l.Info().
		Int("scanned", res.Scanned).
		Int("skipped", res.SkippedTotal()).
		Int("unresolved", res.Unresolved).
		Int("signatures", res.Signatures).
		Dur("elapsed", time.Since(start)).
		Msg("signatures: recompute done")
	return res, nil
}

// Candidates reads the signatures matching a tenant's holdings
func (s *Service) Candidates(ctx context.Context, f domain.CandidateFilter) ([]domain.BatchSignature, error) {
	return s.Binder.Bind(s.DB).Candidates(ctx, f)
}

func (s *Service) observeScan(res domain.Result) {
	s.Metrics.ObservationsScanned.Add(float64(res.Scanned))
	s.Metrics.IdentitiesUnresolved.Add(float64(res.Unresolved))
	for why, n := range res.Skipped {
		s.Metrics.ObservationsSkipped.WithLabelValues(string(why)).Add(float64(n))
	}
}
