// Package module wires the recommendation generator as a modkit.Module
package module

import (
	"expiryai/internal/modkit"
	"expiryai/internal/modkit/httpkit"

	recdom "expiryai/internal/services/recommendations/domain"
	recrepo "expiryai/internal/services/recommendations/repo"
	recservice "expiryai/internal/services/recommendations/service"
	sigdom "expiryai/internal/services/signatures/domain"
)

// Ports exported by the recommendations module
type Ports struct {
	Generator recdom.GeneratorPort
}

// Module implements modkit.Module for recommendations
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the generator; CORE_EXPIRY_TIMEZONE picks the calendar for "today"
func New(deps modkit.Deps, holdings recservice.Holdings, signatures sigdom.ReaderPort) *Module {
	loc := deps.Cfg.Prefix("CORE_EXPIRY_").MayLocation("TIMEZONE", nil)
	svc := recservice.New(deps.PG, recrepo.NewPG(), holdings, signatures, deps.Metrics, loc)
	return &Module{deps: deps, ports: Ports{Generator: svc}}
}

// Name returns the module name
func (m *Module) Name() string { return "recommendations" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op: recommendations are read through the expiry api module
func (m *Module) MountRoutes(_ httpkit.Router) {}
