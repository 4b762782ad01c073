// Package service resolves observers to trust weights
package service

import (
	"context"

	"expiryai/internal/modkit/repokit"
	"expiryai/internal/services/identity/domain"
)

// Service answers role lookups against the users table
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.Repo]
}

var _ domain.ResolverPort = (*Service)(nil)

// New constructs the identity service
func New(db repokit.TxRunner, binder repokit.Binder[domain.Repo]) *Service {
	if db == nil {
		panic("identity.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("identity.Service requires a non nil Repo binder")
	}
	return &Service{DB: db, Binder: binder}
}

// ResolveRoles looks up roles for ids; absent ids are unknown users
func (s *Service) ResolveRoles(ctx context.Context, ids []int64) (map[int64]domain.Role, error) {
	return s.Binder.Bind(s.DB).ResolveRoles(ctx, ids)
}
