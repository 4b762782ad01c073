// Package store opens the relational backend the engine reads and writes
package store

import (
	"context"
	"errors"
	"fmt"

	"expiryai/internal/platform/logger"
)

// Store is the set of opened backends; the zero value has none
type Store struct {
	Log logger.Logger // handed to the query tracer
	PG  TxRunner      // nil when postgres is disabled
}

// Row exposes the minimal scan contract a single row needs
type Row interface {
	Scan(dest ...any) error
}

// Rows exposes the minimal iteration and scan for a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag reports what a write touched
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the read and write surface repos use for sql
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner runs fn inside one transaction; a non nil error from fn rolls back
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Pinger is any seam that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Open connects the backends cfg enables; options run first so the logger reaches the tracer
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	if !cfg.PG.Enabled {
		return s, nil
	}
	pgc, err := openPG(ctx, cfg, s)
	if err != nil {
		return nil, err
	}
	s.PG = pgc
	return s, nil
}

var errNoPG = errors.New("store: postgres not configured")

// Guard fails unless postgres is configured and answers a ping
func (s *Store) Guard(ctx context.Context) error {
	if s == nil || s.PG == nil {
		return errNoPG
	}
	p, ok := s.PG.(Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("store: postgres ping: %w", err)
	}
	return nil
}

// Close releases the pool; safe on a nil or empty Store
func (s *Store) Close(context.Context) error {
	if s == nil {
		return nil
	}
	c, ok := s.PG.(interface{ Close() error })
	if !ok {
		return nil
	}
	return c.Close()
}
