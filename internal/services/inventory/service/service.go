// Package service exposes the inventory collaborator as a paged observation source
package service

import (
	"context"

	"expiryai/internal/modkit/repokit"
	perr "expiryai/internal/platform/errors"
	"expiryai/internal/platform/logger"
	"expiryai/internal/services/inventory/domain"
)

// Service walks the inventory tables through the bound repo
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.Repo]
}

var _ domain.SourcePort = (*Service)(nil)

// New constructs the inventory source
func New(db repokit.TxRunner, binder repokit.Binder[domain.Repo]) *Service {
	if db == nil {
		panic("inventory.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("inventory.Service requires a non nil Repo binder")
	}
	return &Service{DB: db, Binder: binder}
}

// Stream pages through every observation by id; only one page is held at a time
func (s *Service) Stream(ctx context.Context, chunkSize int, fn func([]domain.Observation) error) error {
	if chunkSize <= 0 {
		return perr.InvalidArgf("inventory: chunk size must be positive, got %d", chunkSize)
	}
	l := logger.C(ctx).With().Str("mod", "inventory").Logger()

	repo := s.Binder.Bind(s.DB)
	var after int64
	pages, total := 0, 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, last, err := repo.ObservationPage(ctx, after, chunkSize)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			break
		}
		pages++
		total += len(page)
		l.Debug().Int("page", pages).Int("rows", len(page)).Int64("after_id", after).Msg("inventory: page")
		if err := fn(page); err != nil {
			return err
		}
		if len(page) < chunkSize {
			break
		}
		after = last
	}
	l.Debug().Int("pages", pages).Int("rows", total).Msg("inventory: stream done")
	return nil
}

// HeldSignatures returns the tenant's distinct lots
func (s *Service) HeldSignatures(ctx context.Context, tenantID int64) ([]domain.HeldSignature, error) {
	return s.Binder.Bind(s.DB).HeldSignatures(ctx, tenantID)
}

// Tenants returns every tenant id ascending
func (s *Service) Tenants(ctx context.Context) ([]int64, error) {
	return s.Binder.Bind(s.DB).Tenants(ctx)
}
