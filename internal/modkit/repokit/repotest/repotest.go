// Package repotest holds an in-memory TxRunner for service tests whose binders ignore the Queryer
package repotest

import (
	"context"
	"errors"
	"sync"

	"expiryai/internal/modkit/repokit"
)

// ErrNoSQL is returned by the raw query methods, fakes never run SQL
var ErrNoSQL = errors.New("repotest: raw sql not supported")

// DB counts transactions and lets a fake repo roll its own state back
type DB struct {
	mu sync.Mutex

	// BeginErr fails Tx before fn runs
	BeginErr error

	// Snapshot is called before fn; the returned func restores state and runs on rollback
	Snapshot func() (restore func())

	Commits   int
	Rollbacks int
}

var _ repokit.TxRunner = (*DB)(nil)

// Exec implements repokit.Queryer
func (d *DB) Exec(context.Context, string, ...any) (repokit.CommandTag, error) {
	return nil, ErrNoSQL
}

// Query implements repokit.Queryer
func (d *DB) Query(context.Context, string, ...any) (repokit.Rows, error) {
	return nil, ErrNoSQL
}

// QueryRow implements repokit.Queryer
func (d *DB) QueryRow(context.Context, string, ...any) repokit.Row { return errRow{} }

// Tx runs fn against the fake itself, restoring the snapshot when fn fails
func (d *DB) Tx(ctx context.Context, fn func(q repokit.Queryer) error) error {
	d.mu.Lock()
	begin, snap := d.BeginErr, d.Snapshot
	d.mu.Unlock()
	if begin != nil {
		return begin
	}
	var restore func()
	if snap != nil {
		restore = snap()
	}
	if err := fn(d); err != nil {
		if restore != nil {
			restore()
		}
		d.mu.Lock()
		d.Rollbacks++
		d.mu.Unlock()
		return err
	}
	d.mu.Lock()
	d.Commits++
	d.mu.Unlock()
	return nil
}

type errRow struct{}

func (errRow) Scan(...any) error { return ErrNoSQL }
