// Package module wires the signature aggregator as a modkit.Module
package module

import (
	"expiryai/internal/modkit"
	"expiryai/internal/modkit/httpkit"

	iddom "expiryai/internal/services/identity/domain"
	invdom "expiryai/internal/services/inventory/domain"
	sigdom "expiryai/internal/services/signatures/domain"
	sigrepo "expiryai/internal/services/signatures/repo"
	sigservice "expiryai/internal/services/signatures/service"
)

// Ports exported by the signatures module
type Ports struct {
	Aggregator sigdom.AggregatorPort
	Reader     sigdom.ReaderPort
}

// Module implements modkit.Module for signatures
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the aggregator over the inventory source and identity resolver
func New(deps modkit.Deps, source invdom.SourcePort, roles iddom.ResolverPort, weights iddom.Weights) *Module {
	svc := sigservice.New(deps.PG, sigrepo.NewPG(), source, roles, weights, deps.Metrics)
	return &Module{deps: deps, ports: Ports{Aggregator: svc, Reader: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "signatures" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op: signatures are read through the expiry api module
func (m *Module) MountRoutes(_ httpkit.Router) {}
