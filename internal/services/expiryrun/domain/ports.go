package domain

import (
	"context"
	"time"
)

// RunnerPort is the orchestrator entry point
type RunnerPort interface {
	// Run aggregates once then regenerates each tenant in order; overlapping runs get ErrRunInProgress
	Run(ctx context.Context, p Params) (Run, error)

	// Every runs immediately and then on each tick until ctx ends
	Every(ctx context.Context, interval time.Duration, p Params) error
}

// HistoryPort reads recorded runs
type HistoryPort interface {
	Latest(ctx context.Context) (Run, error)
}

// StorageRepo persists run history
type StorageRepo interface {
	Start(ctx context.Context, r Run) error
	Finish(ctx context.Context, r Run) error
	Latest(ctx context.Context) (Run, error)
}

// TenantLister enumerates the tenants to regenerate
type TenantLister interface {
	Tenants(ctx context.Context) ([]int64, error)
}
