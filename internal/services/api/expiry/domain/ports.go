package domain

import (
	"context"

	erdom "expiryai/internal/services/expiryrun/domain"
)

// ServicePort is what the HTTP layer calls
type ServicePort interface {
	Signatures(ctx context.Context, q SignatureQuery) ([]SignatureRow, int, error)
	Recommendations(ctx context.Context, tenantID int64, q RecommendationQuery) ([]RecommendationRow, int, error)
	LatestRun(ctx context.Context) (erdom.Run, error)
}
