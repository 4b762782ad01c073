// Package repo provides Postgres bindings for expiry_runs
package repo

import (
	"context"
	"encoding/json"
	"time"

	"expiryai/internal/modkit/repokit"
	perr "expiryai/internal/platform/errors"
	"expiryai/internal/platform/store"
	"expiryai/internal/services/expiryrun/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

var _ domain.StorageRepo = (*pg)(nil)

// NewPG returns a binder for run history
func NewPG() repokit.Binder[domain.StorageRepo] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) domain.StorageRepo { return &pg{q: q} }

// Start inserts the run as running
func (r *pg) Start(ctx context.Context, run domain.Run) error {
	params, err := json.Marshal(run.Params)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "expiryrun: encode params")
	}
	if _, err := r.q.Exec(ctx, `
		INSERT INTO expiry_runs (id, started_at, status, params)
		VALUES ($1::uuid, $2, $3, $4::jsonb)`,
		run.ID, run.StartedAt.UTC(), string(domain.StatusRunning), params,
	); err != nil {
		return perr.FromPostgres(err, "expiryrun: start")
	}
	return nil
}

// Finish stamps the outcome and counts
func (r *pg) Finish(ctx context.Context, run domain.Run) error {
	fin := time.Now().UTC()
	if run.FinishedAt != nil {
		fin = run.FinishedAt.UTC()
	}
	ct, err := r.q.Exec(ctx, `
		UPDATE expiry_runs
		   SET finished_at = $2, status = $3, signatures = $4, recommendations = $5,
		       tenants_done = $6, tenants_total = $7, skipped = $8, unresolved = $9,
		       error = NULLIF($10, '')
		 WHERE id = $1::uuid`,
		run.ID, fin, string(run.Status), run.Signatures, run.Recommendations,
		run.TenantsDone, run.TenantsTotal, run.Skipped, run.Unresolved, run.Error,
	)
	if err != nil {
		return perr.FromPostgres(err, "expiryrun: finish")
	}
	if ct.RowsAffected() == 0 {
		return perr.NotFoundf("expiryrun: run %s not recorded", run.ID)
	}
	return nil
}

// Latest returns the most recently started run, perr.ErrNotFound when none exists
func (r *pg) Latest(ctx context.Context) (domain.Run, error) {
	run, err := store.One(ctx, r.q, scanRun, `
		SELECT id::text, started_at, finished_at, status, params, signatures, recommendations,
		       tenants_done, tenants_total, skipped, unresolved, COALESCE(error, '')
		  FROM expiry_runs
		 ORDER BY started_at DESC
		 LIMIT 1`)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return run, err
		}
		return run, perr.FromPostgres(err, "expiryrun: latest")
	}
	return run, nil
}

func scanRun(row store.Row) (domain.Run, error) {
	var (
		run    domain.Run
		status string
		params []byte
	)
	if err := row.Scan(
		&run.ID, &run.StartedAt, &run.FinishedAt, &status, &params,
		&run.Signatures, &run.Recommendations, &run.TenantsDone, &run.TenantsTotal,
		&run.Skipped, &run.Unresolved, &run.Error,
	); err != nil {
		return run, err
	}
	run.Status = domain.Status(status)
	if len(params) > 0 {
		if err := json.Unmarshal(params, &run.Params); err != nil {
			return run, err
		}
	}
	return run, nil
}
