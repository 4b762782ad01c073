// Package repo provides Postgres bindings for identity lookups
package repo

import (
	"context"

	"expiryai/internal/modkit/repokit"
	perr "expiryai/internal/platform/errors"
	"expiryai/internal/services/identity/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

var _ domain.Repo = (*pg)(nil)

// NewPG returns a binder for identity reads
func NewPG() repokit.Binder[domain.Repo] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) domain.Repo { return &pg{q: q} }

// ResolveRoles maps users to roles in one round trip.
// is_superuser wins over is_manager; anything else is staff
func (r *pg) ResolveRoles(ctx context.Context, ids []int64) (map[int64]domain.Role, error) {
	out := make(map[int64]domain.Role, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, is_superuser, is_manager
		  FROM users
		 WHERE id = ANY($1::bigint[])`,
		ids,
	)
	if err != nil {
		return nil, perr.FromPostgres(err, "identity: resolve roles")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id             int64
			super, manager bool
		)
		if err := rows.Scan(&id, &super, &manager); err != nil {
			return nil, perr.FromPostgres(err, "identity: scan role")
		}
		switch {
		case super:
			out[id] = domain.RoleSuperadmin
		case manager:
			out[id] = domain.RoleManager
		default:
			out[id] = domain.RoleStaff
		}
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgres(err, "identity: resolve roles")
	}
	return out, nil
}
