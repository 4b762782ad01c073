package service

import (
	"context"
	"slices"

	"expiryai/internal/services/identity/domain"
)

// WeightCache memoizes observer weights for one aggregation run.
// Build a fresh one per run; it is not safe for concurrent use
type WeightCache struct {
	resolver   domain.ResolverPort
	weights    domain.Weights
	roles      map[int64]domain.Role
	unresolved int
}

// NewWeightCache returns an empty cache over resolver and the weight table
func NewWeightCache(resolver domain.ResolverPort, weights domain.Weights) *WeightCache {
	if weights == nil {
		weights = domain.DefaultWeights()
	}
	return &WeightCache{
		resolver: resolver,
		weights:  weights,
		roles:    make(map[int64]domain.Role),
	}
}

// Prime resolves every id not yet cached in one lookup.
// Ids the resolver does not know are cached as staff and counted as unresolved
func (c *WeightCache) Prime(ctx context.Context, ids []int64) error {
	var miss []int64
	for _, id := range ids {
		if _, ok := c.roles[id]; !ok {
			miss = append(miss, id)
		}
	}
	if len(miss) == 0 {
		return nil
	}
	slices.Sort(miss)
	miss = slices.Compact(miss)

	found, err := c.resolver.ResolveRoles(ctx, miss)
	if err != nil {
		return err
	}
	for _, id := range miss {
		r, ok := found[id]
		if !ok || !r.Valid() {
			r = domain.RoleStaff
			c.unresolved++
		}
		c.roles[id] = r
	}
	return nil
}

// WeightFor returns the observer's weight; a nil id or an id never primed gets the staff weight
func (c *WeightCache) WeightFor(id *int64) float64 {
	if id == nil {
		return c.weights.For(domain.RoleStaff)
	}
	r, ok := c.roles[*id]
	if !ok {
		return c.weights.For(domain.RoleStaff)
	}
	return c.weights.For(r)
}

// Unresolved counts observer ids that did not map to a user
func (c *WeightCache) Unresolved() int { return c.unresolved }

// Len is the number of cached observers
func (c *WeightCache) Len() int { return len(c.roles) }
