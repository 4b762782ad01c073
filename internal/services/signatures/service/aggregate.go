package service

import (
	"cmp"
	"slices"
	"time"

	"expiryai/internal/core/scoring"
	"expiryai/internal/services/signatures/domain"
)

type tenantKey struct {
	tenant int64
	key    domain.Key
}

// bestWeights keeps the single highest observer weight each tenant gave each lot
type bestWeights map[tenantKey]float64

func (b bestWeights) observe(tenant int64, k domain.Key, w float64) {
	tk := tenantKey{tenant: tenant, key: k}
	if cur, ok := b[tk]; !ok || w > cur {
		b[tk] = w
	}
}

// fold sums the per tenant maxima into signatures ordered by key.
// Contributions are added in (key, tenant) order so support sums are bit for bit stable
func (b bestWeights) fold(alpha float64, now time.Time) []domain.BatchSignature {
	tks := make([]tenantKey, 0, len(b))
	for tk := range b {
		tks = append(tks, tk)
	}
	slices.SortFunc(tks, func(x, y tenantKey) int {
		if x.key != y.key {
			if x.key.Less(y.key) {
				return -1
			}
			return 1
		}
		return cmp.Compare(x.tenant, y.tenant)
	})

	var out []domain.BatchSignature
	for _, tk := range tks {
		if n := len(out); n == 0 || out[n-1].Key != tk.key {
			out = append(out, domain.BatchSignature{Key: tk.key, UpdatedAt: now})
		}
		cur := &out[len(out)-1]
		cur.SupportSum += b[tk]
		cur.DistinctTenantCount++
	}
	for i := range out {
		out[i].Confidence = scoring.ConfidenceFromSupport(out[i].SupportSum, alpha)
	}
	return out
}
