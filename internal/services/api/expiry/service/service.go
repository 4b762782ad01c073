// Package service contains the expiry read workflows
package service

import (
	"context"
	"time"

	"expiryai/internal/modkit/repokit"
	perr "expiryai/internal/platform/errors"
	ptime "expiryai/internal/platform/time"
	"expiryai/internal/services/api/expiry/domain"
	"expiryai/internal/services/api/expiry/repo"
	erdom "expiryai/internal/services/expiryrun/domain"
)

// Svc implements domain.ServicePort
type Svc struct {
	Repo    repo.Repo
	History erdom.HistoryPort
}

var _ domain.ServicePort = (*Svc)(nil)

// New constructs the read service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], history erdom.HistoryPort) *Svc {
	if db == nil {
		panic("expiry api service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("expiry api service requires a non nil Repo binder")
	}
	if history == nil {
		panic("expiry api service requires a run history")
	}
	return &Svc{Repo: binder.Bind(db), History: history}
}

func limitOf(n int) int {
	if n <= 0 {
		return domain.DefaultLimit
	}
	return min(n, domain.MaxLimit)
}

func parseDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := ptime.ParseDate(s)
	if err != nil {
		return nil, perr.WithField(perr.Validationf("%s must be YYYY-MM-DD", field), field)
	}
	return &d, nil
}

// Signatures lists global signatures; returns rows and the limit applied
func (s *Svc) Signatures(ctx context.Context, q domain.SignatureQuery) ([]domain.SignatureRow, int, error) {
	from, err := parseDate("expiry_from", q.ExpiryFrom)
	if err != nil {
		return nil, 0, err
	}
	to, err := parseDate("expiry_to", q.ExpiryTo)
	if err != nil {
		return nil, 0, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, 0, perr.WithField(perr.Validationf("expiry_to is before expiry_from"), "expiry_to")
	}
	limit := limitOf(q.Limit)
	rows, err := s.Repo.ListSignatures(ctx, domain.SignatureFilter{
		Barcode:       q.Barcode,
		From:          from,
		To:            to,
		MinConfidence: q.MinConfidence,
		Limit:         limit,
	})
	return rows, limit, err
}

// Recommendations lists a tenant's active recommendations, riskiest first
func (s *Svc) Recommendations(ctx context.Context, tenantID int64, q domain.RecommendationQuery) ([]domain.RecommendationRow, int, error) {
	if tenantID <= 0 {
		return nil, 0, perr.WithField(perr.Validationf("tenantID must be a positive integer"), "tenantID")
	}
	limit := limitOf(q.Limit)
	rows, err := s.Repo.ActiveRecommendations(ctx, tenantID, q.Level, limit)
	return rows, limit, err
}

// LatestRun returns the most recent orchestrator run
func (s *Svc) LatestRun(ctx context.Context) (erdom.Run, error) {
	run, err := s.History.Latest(ctx)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return run, perr.NotFoundf("no recompute run recorded yet")
	}
	return run, err
}
