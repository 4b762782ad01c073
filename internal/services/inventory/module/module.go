// Package module wires the inventory source as a modkit.Module
package module

import (
	"expiryai/internal/modkit"
	"expiryai/internal/modkit/httpkit"

	invdom "expiryai/internal/services/inventory/domain"
	invrepo "expiryai/internal/services/inventory/repo"
	invservice "expiryai/internal/services/inventory/service"
)

// Ports exported by the inventory module
type Ports struct {
	Source invdom.SourcePort
}

// Module implements modkit.Module for inventory
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the inventory module over deps.PG
func New(deps modkit.Deps) *Module {
	svc := invservice.New(deps.PG, invrepo.NewPG())
	return &Module{deps: deps, ports: Ports{Source: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "inventory" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op: inventory has no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}
