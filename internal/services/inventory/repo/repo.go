// Package repo provides Postgres bindings for the inventory collaborator tables
package repo

import (
	"context"
	"strings"
	"time"

	"expiryai/internal/modkit/repokit"
	perr "expiryai/internal/platform/errors"
	"expiryai/internal/platform/store"
	ptime "expiryai/internal/platform/time"
	"expiryai/internal/services/inventory/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

var _ domain.Repo = (*pg)(nil)

// NewPG returns a binder for inventory reads
func NewPG() repokit.Binder[domain.Repo] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) domain.Repo { return &pg{q: q} }

// ObservationPage is a keyset scan over inventory_items joined to products
func (r *pg) ObservationPage(ctx context.Context, afterID int64, limit int) ([]domain.Observation, int64, error) {
	if limit <= 0 {
		return nil, afterID, perr.InvalidArgf("inventory: page limit must be positive, got %d", limit)
	}
	items, err := store.Many(ctx, r.q, scanObservation, `
		SELECT i.id, i.supermarket_id, p.barcode, p.name, i.expiry_date, i.created_by_id
		  FROM inventory_items i
		  LEFT JOIN products p ON p.id = i.product_id
		 WHERE i.id > $1
		 ORDER BY i.id
		 LIMIT $2`,
		afterID, limit,
	)
	if err != nil {
		return nil, afterID, perr.FromPostgres(err, "inventory: observation page")
	}
	last := afterID
	if n := len(items); n > 0 {
		last = items[n-1].ID
	}
	return items, last, nil
}

// HeldSignatures returns one row per distinct lot in the tenant's stock
func (r *pg) HeldSignatures(ctx context.Context, tenantID int64) ([]domain.HeldSignature, error) {
	out, err := store.Many(ctx, r.q, scanHeld, `
		SELECT DISTINCT p.barcode, p.name, i.expiry_date
		  FROM inventory_items i
		  JOIN products p ON p.id = i.product_id
		 WHERE i.supermarket_id = $1
		 ORDER BY 1, 2, 3`,
		tenantID,
	)
	if err != nil {
		return nil, perr.FromPostgresf(err, "inventory: held signatures for tenant %d", tenantID)
	}
	return out, nil
}

// Tenants lists supermarket ids
func (r *pg) Tenants(ctx context.Context) ([]int64, error) {
	ids, err := store.Many(ctx, r.q, func(row store.Row) (int64, error) {
		var id int64
		err := row.Scan(&id)
		return id, err
	}, `SELECT id FROM supermarkets ORDER BY id`)
	if err != nil {
		return nil, perr.FromPostgres(err, "inventory: tenants")
	}
	return ids, nil
}

func scanObservation(row store.Row) (domain.Observation, error) {
	var (
		o        domain.Observation
		tenant   *int64
		barcode  *string
		name     *string
		expiry   *time.Time
		observer *int64
	)
	if err := row.Scan(&o.ID, &tenant, &barcode, &name, &expiry, &observer); err != nil {
		return o, err
	}
	if tenant != nil {
		o.TenantID = *tenant
	}
	o.Barcode = trimmed(barcode)
	o.ProductName = trimmed(name)
	if expiry != nil {
		o.ExpiryDate = ptime.DateOf(*expiry)
	}
	o.ObserverID = observer
	return o, nil
}

func scanHeld(row store.Row) (domain.HeldSignature, error) {
	var (
		h       domain.HeldSignature
		barcode *string
		name    *string
		expiry  *time.Time
	)
	if err := row.Scan(&barcode, &name, &expiry); err != nil {
		return h, err
	}
	h.Barcode = trimmed(barcode)
	h.ProductName = trimmed(name)
	if expiry != nil {
		h.ExpiryDate = ptime.DateOf(*expiry)
	}
	return h, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
