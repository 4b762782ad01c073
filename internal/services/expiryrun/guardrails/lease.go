// Package guardrails provides the cross process lease that keeps orchestrator runs from overlapping
package guardrails

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"expiryai/internal/modkit/repokit"
	"expiryai/internal/platform/logger"
)

// ErrLeaseHeld signals another process owns the run lease
var ErrLeaseHeld = errors.New("expiryrun: run lease already held")

// ErrLeaseLost is the cancel cause handed to do when a renewal finds the row taken over
var ErrLeaseLost = errors.New("expiryrun: run lease lost")

// DefaultTTL bounds how long a crashed holder can block the next run
const DefaultTTL = 30 * time.Minute

// leaseOwner is unique per claim: host, caller label and a fresh uuid
func leaseOwner(label string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return fmt.Sprintf("%s:%s:%s", label, host, uuid.NewString())
}

// MakeRunLease claims the named row in expiry_run_lease for the duration of do.
// An expired row is taken over. While do runs the row is renewed every ttl/3;
// when do returns the renewals stop and the row is deleted
func MakeRunLease(
	db repokit.TxRunner,
	name, label string,
	ttl time.Duration,
) func(ctx context.Context, do func(context.Context) error) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	every := ttl / 3

	toInterval := func(d time.Duration) string { return fmt.Sprintf("%d milliseconds", d.Milliseconds()) }

	return func(ctx context.Context, do func(context.Context) error) error {
		owner := leaseOwner(label)
		l := logger.C(ctx).With().Str("lease", name).Str("owner", owner).Logger()

		var claimed bool
		if err := db.Tx(ctx, func(q repokit.Queryer) error {
			row := q.QueryRow(ctx, `
				INSERT INTO expiry_run_lease (name, owner, expires_at)
				VALUES ($1, $2, now() + ($3)::interval)
				ON CONFLICT (name) DO UPDATE
				   SET owner = EXCLUDED.owner, expires_at = EXCLUDED.expires_at
				 WHERE expiry_run_lease.expires_at <= now()
				RETURNING true
			`, name, owner, toInterval(ttl))
			var ok bool
			if err := row.Scan(&ok); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil // held by someone else
				}
				return err
			}
			claimed = ok
			return nil
		}); err != nil {
			return err
		}
		if !claimed {
			return ErrLeaseHeld
		}

		// renewals and release outlive ctx; do may keep running after a cancel
		bg := context.WithoutCancel(ctx)
		runCtx, cancelRun := context.WithCancelCause(ctx)
		stop := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			t := time.NewTicker(every)
			defer t.Stop()
			for {
				select {
				case <-stop:
					return
				case <-t.C:
				}
				ct, err := db.Exec(bg, `
					UPDATE expiry_run_lease SET expires_at = now() + ($3)::interval
					 WHERE name = $1 AND owner = $2
				`, name, owner, toInterval(ttl))
				if err != nil {
					// transient; the next tick retries while the row is still ours
					l.Warn().Err(err).Msg("expiryrun: lease renewal failed")
					continue
				}
				if ct.RowsAffected() == 0 {
					l.Error().Msg("expiryrun: lease taken over, stopping run")
					cancelRun(ErrLeaseLost)
					return
				}
				l.Debug().Msg("expiryrun: lease renewed")
			}
		}()

		defer func() {
			close(stop)
			wg.Wait()
			cancelRun(nil)
			if _, err := db.Exec(bg, `DELETE FROM expiry_run_lease WHERE name = $1 AND owner = $2`, name, owner); err != nil {
				l.Warn().Err(err).Msg("expiryrun: lease release failed")
			}
		}()
		return do(runCtx)
	}
}
