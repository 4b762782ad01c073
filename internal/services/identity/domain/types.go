// Package domain defines observer roles and the trust weight each carries
package domain

import (
	"context"
	"fmt"
)

// Role is the trust tier of an observer
type Role string

const (
	// RoleSuperadmin is a platform operator
	RoleSuperadmin Role = "superadmin"

	// RoleManager runs a store
	RoleManager Role = "manager"

	// RoleStaff is everyone else, and the fallback for unknown observers
	RoleStaff Role = "staff"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// Weights maps each role to its trust weight
type Weights map[Role]float64

// DefaultWeights is the stock weight table
func DefaultWeights() Weights {
	return Weights{RoleSuperadmin: 1.0, RoleManager: 0.7, RoleStaff: 0.5}
}

// For returns the weight of r, falling back to the staff weight
func (w Weights) For(r Role) float64 {
	if v, ok := w[r]; ok {
		return v
	}
	return w[RoleStaff]
}

// Validate rejects unknown roles, a missing staff weight and negative weights
func (w Weights) Validate() error {
	if _, ok := w[RoleStaff]; !ok {
		return fmt.Errorf("weights: missing %q", RoleStaff)
	}
	for r, v := range w {
		if !r.Valid() {
			return fmt.Errorf("weights: unknown role %q", r)
		}
		if v < 0 {
			return fmt.Errorf("weights: %q is negative (%v)", r, v)
		}
	}
	return nil
}

// Repo resolves users to roles
type Repo interface {
	// ResolveRoles returns a role for every id that exists; missing ids are absent from the map
	ResolveRoles(ctx context.Context, ids []int64) (map[int64]Role, error)
}

// ResolverPort is the identity surface other modules consume
type ResolverPort interface {
	ResolveRoles(ctx context.Context, ids []int64) (map[int64]Role, error)
}
