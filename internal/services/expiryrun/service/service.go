// Package service implements the batch orchestrator
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"expiryai/internal/modkit/repokit"
	perr "expiryai/internal/platform/errors"
	"expiryai/internal/platform/logger"
	"expiryai/internal/platform/metrics"
	"expiryai/internal/platform/net/http/bind"
	"expiryai/internal/services/expiryrun/domain"
	"expiryai/internal/services/expiryrun/guardrails"
	recdom "expiryai/internal/services/recommendations/domain"
	sigdom "expiryai/internal/services/signatures/domain"
)

var newRunID = uuid.NewString

// Service sequences the aggregator and the per tenant generator
type Service struct {
	DB         repokit.TxRunner
	Binder     repokit.Binder[domain.StorageRepo]
	Aggregator sigdom.AggregatorPort
	Generator  recdom.GeneratorPort
	Tenants    domain.TenantLister
	Metrics    *metrics.Engine

	// Lease(ctx, do) holds the cross process run lease around do, nil in single process tests
	Lease func(ctx context.Context, do func(context.Context) error) error

	Now func() time.Time

	mu     sync.Mutex
	flight singleflight.Group
}

var (
	_ domain.RunnerPort  = (*Service)(nil)
	_ domain.HistoryPort = (*Service)(nil)
)

// New constructs the orchestrator
func New(
	db repokit.TxRunner,
	binder repokit.Binder[domain.StorageRepo],
	agg sigdom.AggregatorPort,
	gen recdom.GeneratorPort,
	tenants domain.TenantLister,
	m *metrics.Engine,
	lease func(context.Context, func(context.Context) error) error,
) *Service {
	if db == nil {
		panic("expiryrun.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("expiryrun.Service requires a non nil Repo binder")
	}
	if agg == nil || gen == nil || tenants == nil {
		panic("expiryrun.Service requires an aggregator, a generator and a tenant lister")
	}
	return &Service{
		DB:         db,
		Binder:     binder,
		Aggregator: agg,
		Generator:  gen,
		Tenants:    tenants,
		Metrics:    metrics.OrNoop(m),
		Lease:      lease,
		Now:        time.Now,
	}
}

// Run validates p and executes one full pass.
// Concurrent callers with identical params share one execution; any other overlap
// in this process or across processes gets domain.ErrRunInProgress
func (s *Service) Run(ctx context.Context, p domain.Params) (domain.Run, error) {
	if err := bind.Struct(p); err != nil {
		return domain.Run{Params: p}, err
	}
	v, err, _ := s.flight.Do(p.Fingerprint(), func() (any, error) {
		return s.exclusive(ctx, p)
	})
	run, _ := v.(domain.Run)
	return run, err
}

func (s *Service) exclusive(ctx context.Context, p domain.Params) (domain.Run, error) {
	if !s.mu.TryLock() {
		return domain.Run{Params: p}, domain.ErrRunInProgress
	}
	defer s.mu.Unlock()

	if s.Lease == nil {
		return s.execute(ctx, p)
	}
	var run domain.Run
	err := s.Lease(ctx, func(ctx context.Context) error {
		var e error
		run, e = s.execute(ctx, p)
		return e
	})
	if errors.Is(err, guardrails.ErrLeaseHeld) {
		logger.C(ctx).Warn().Str("mod", "expiryrun").Msg("expiryrun: lease held elsewhere; skipping")
		return domain.Run{Params: p}, domain.ErrRunInProgress
	}
	return run, err
}

func (s *Service) execute(ctx context.Context, p domain.Params) (run domain.Run, retErr error) {
	run = domain.Run{
		ID:        newRunID(),
		StartedAt: s.Now().UTC(),
		Status:    domain.StatusRunning,
		Params:    p,
	}
	ctx = logger.WithRun(ctx, run.ID)
	l := logger.C(ctx).With().Str("mod", "expiryrun").Logger()
	start := time.Now()

	if err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).Start(ctx, run)
	}); err != nil {
		l.Error().Err(err).Msg("expiryrun: could not record run start")
		run.Status = domain.StatusError
		run.Error = err.Error()
		s.Metrics.RunsTotal.WithLabelValues(string(run.Status)).Inc()
		return run, err
	}
	l.Info().Interface("params", p).Msg("expiryrun: run start")

	// Always record the outcome, even when ctx ended the run
	defer func() {
		switch {
		case retErr == nil:
			run.Status = domain.StatusOK
		case errors.Is(retErr, context.Canceled) || errors.Is(retErr, context.DeadlineExceeded):
			run.Status = domain.StatusCanceled
			run.Error = retErr.Error()
		default:
			run.Status = domain.StatusError
			run.Error = retErr.Error()
		}
		fin := s.Now().UTC()
		run.FinishedAt = &fin

		fctx := context.WithoutCancel(ctx)
		if err := s.DB.Tx(fctx, func(q repokit.Queryer) error {
			return s.Binder.Bind(q).Finish(fctx, run)
		}); err != nil {
			l.Error().Err(err).Msg("expiryrun: could not record run finish")
		}

		s.Metrics.RunsTotal.WithLabelValues(string(run.Status)).Inc()
		s.Metrics.RunDuration.WithLabelValues("total").Observe(time.Since(start).Seconds())
		if run.Status == domain.StatusOK {
			s.Metrics.LastRunSuccess.SetToCurrentTime()
		}

		ev := l.Info()
		if retErr != nil {
			ev = l.Error().Err(retErr)
		}
		ev.Str("status", string(run.Status)).
			Int("signatures", run.Signatures).
			Int("recommendations", run.Recommendations).
			Int("tenants_done", run.TenantsDone).
			Int("tenants_total", run.TenantsTotal).
			Int("skipped", run.Skipped).
			Dur("elapsed", time.Since(start)).
			Msg("expiryrun: run finish")
	}()

	// Aggregation must commit before any tenant reads the signature table
	if p.TenantID == 0 {
		t0 := time.Now()
		res, err := s.Aggregator.Recompute(ctx, p.Signatures())
		s.Metrics.RunDuration.WithLabelValues("signatures").Observe(time.Since(t0).Seconds())
		run.Skipped = res.SkippedTotal()
		run.Unresolved = res.Unresolved
		if err != nil {
			return run, err
		}
		run.Signatures = res.Signatures
	}

	tenants := []int64{p.TenantID}
	if p.TenantID == 0 {
		ids, err := s.Tenants.Tenants(ctx)
		if err != nil {
			return run, err
		}
		tenants = ids
	}
	run.TenantsTotal = len(tenants)

	t1 := time.Now()
	defer func() {
		s.Metrics.RunDuration.WithLabelValues("recommendations").Observe(time.Since(t1).Seconds())
	}()
	rp := p.Recommendations()
	for _, tid := range tenants {
		// stop between tenants only; a started tenant pass runs to commit or rollback
		if err := ctx.Err(); err != nil {
			l.Warn().Int("tenants_done", run.TenantsDone).Msg("expiryrun: canceled between tenants")
			return run, err
		}
		tt := time.Now()
		res, err := s.recomputeTenant(context.WithoutCancel(ctx), tid, rp)
		s.Metrics.TenantDuration.Observe(time.Since(tt).Seconds())
		if err != nil {
			l.Error().Err(err).Int64("tenant_id", tid).Msg("expiryrun: tenant failed")
			return run, err
		}
		run.Recommendations += res.Activated
		run.TenantsDone++
	}
	return run, nil
}

// tenantRetryBackoff is the pause before a tenant pass hit by a deadlock or serialization failure is retried
var tenantRetryBackoff = 250 * time.Millisecond

// recomputeTenant retries a retryable failure once; the failed pass rolled back, so rerunning is safe.
// ctx must not be cancellable: the retry belongs to the same tenant pass
func (s *Service) recomputeTenant(ctx context.Context, tid int64, rp recdom.Params) (recdom.Result, error) {
	res, err := s.Generator.Recompute(ctx, tid, rp)
	if err == nil || !perr.IsRetryable(err) {
		return res, err
	}
	logger.C(ctx).Warn().Err(err).Int64("tenant_id", tid).Msg("expiryrun: tenant pass retryable, retrying once")
	time.Sleep(tenantRetryBackoff)
	return s.Generator.Recompute(ctx, tid, rp)
}

// Latest returns the most recent recorded run
func (s *Service) Latest(ctx context.Context) (domain.Run, error) {
	return s.Binder.Bind(s.DB).Latest(ctx)
}
