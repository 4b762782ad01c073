// Package module wires the batch orchestrator as a modkit.Module
package module

import (
	"context"

	"expiryai/internal/modkit"
	"expiryai/internal/modkit/httpkit"
	"expiryai/internal/modkit/repokit"

	erdom "expiryai/internal/services/expiryrun/domain"
	"expiryai/internal/services/expiryrun/guardrails"
	errepo "expiryai/internal/services/expiryrun/repo"
	erservice "expiryai/internal/services/expiryrun/service"
	recdom "expiryai/internal/services/recommendations/domain"
	sigdom "expiryai/internal/services/signatures/domain"
)

// Ports exported by the expiryrun module
type Ports struct {
	Runner   erdom.RunnerPort
	History  erdom.HistoryPort
	Defaults erdom.Params
}

// Module implements modkit.Module for expiryrun
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the orchestrator over the aggregator and generator modules
func New(deps modkit.Deps, agg sigdom.AggregatorPort, gen recdom.GeneratorPort, tenants erdom.TenantLister) *Module {
	opts := FromConfig(deps.Cfg)

	var lease func(context.Context, func(context.Context) error) error
	if opts.EnableLeases {
		lease = guardrails.MakeRunLease(deps.PG, "recompute", "expiryai", opts.LeaseTTL)
	}

	svc := erservice.New(deps.PG, errepo.NewPG(), agg, gen, tenants, deps.Metrics, lease)
	return &Module{deps: deps, ports: Ports{Runner: svc, History: svc, Defaults: opts.Defaults}}
}

// NewHistory builds only the read side, for processes that never run the engine
func NewHistory(deps modkit.Deps) erdom.HistoryPort {
	return history{db: deps.PG, binder: errepo.NewPG()}
}

type history struct {
	db     repokit.TxRunner
	binder repokit.Binder[erdom.StorageRepo]
}

func (h history) Latest(ctx context.Context) (erdom.Run, error) {
	return h.binder.Bind(h.db).Latest(ctx)
}

// Name returns the module name
func (m *Module) Name() string { return "expiryrun" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op: run history is served by the expiry api module
func (m *Module) MountRoutes(_ httpkit.Router) {}
