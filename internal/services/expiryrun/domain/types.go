// Package domain defines the batch orchestrator: one run rebuilds signatures then every tenant's recommendations
package domain

import (
	"fmt"
	"time"

	recdom "expiryai/internal/services/recommendations/domain"
	sigdom "expiryai/internal/services/signatures/domain"
)

// Params is everything one run can be tuned with
type Params struct {
	Alpha         float64 `json:"alpha" validate:"gt=0"`
	ChunkSize     int     `json:"chunk_size" validate:"min=1"`
	HorizonDays   int     `json:"horizon_days" validate:"min=0"`
	MinConfidence float64 `json:"min_confidence" validate:"gte=0,lte=1"`
	MinRisk       float64 `json:"min_risk" validate:"gte=0,lte=1"`
	MaxRows       int     `json:"max_rows" validate:"min=0"`
	SortBeforeCap bool    `json:"sort_before_cap"`

	// TenantID limits the run to one tenant's recommendations and skips aggregation, 0 means all
	TenantID int64 `json:"tenant_id,omitempty" validate:"min=0"`
}

// Signatures projects the aggregator params
func (p Params) Signatures() sigdom.Params {
	return sigdom.Params{Alpha: p.Alpha, ChunkSize: p.ChunkSize}
}

// Recommendations projects the generator params
func (p Params) Recommendations() recdom.Params {
	return recdom.Params{
		HorizonDays:   p.HorizonDays,
		MinConfidence: p.MinConfidence,
		MinRisk:       p.MinRisk,
		MaxRows:       p.MaxRows,
		SortBeforeCap: p.SortBeforeCap,
	}
}

// Fingerprint identifies runs with identical params
func (p Params) Fingerprint() string { return fmt.Sprintf("%+v", p) }

// Status is the lifecycle state of a run
type Status string

const (
	StatusRunning  Status = "running"
	StatusOK       Status = "ok"
	StatusError    Status = "error"
	StatusCanceled Status = "canceled"
)

// Run is one orchestrator invocation as recorded in expiry_runs
type Run struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     Status     `json:"status"`
	Params     Params     `json:"params"`

	Signatures      int    `json:"signatures"`
	Recommendations int    `json:"recommendations"`
	TenantsDone     int    `json:"tenants_done"`
	TenantsTotal    int    `json:"tenants_total"`
	Skipped         int    `json:"skipped"`
	Unresolved      int    `json:"unresolved"`
	Error           string `json:"error,omitempty"`
}
