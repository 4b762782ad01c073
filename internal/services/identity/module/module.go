// Package module wires identity lookups as a modkit.Module
package module

import (
	"expiryai/internal/modkit"
	"expiryai/internal/modkit/httpkit"

	iddom "expiryai/internal/services/identity/domain"
	idrepo "expiryai/internal/services/identity/repo"
	idservice "expiryai/internal/services/identity/service"
)

// Ports exported by the identity module
type Ports struct {
	Resolver iddom.ResolverPort
	Weights  iddom.Weights
}

// Module implements modkit.Module for identity
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the identity module; a bad weights file is a startup error
func New(deps modkit.Deps) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	w, err := iddom.LoadWeights(opts.WeightsFile)
	if err != nil {
		return nil, err
	}
	if opts.WeightsFile != "" {
		deps.Log.Info().Str("file", opts.WeightsFile).Interface("weights", w).Msg("identity: role weights loaded")
	}
	svc := idservice.New(deps.PG, idrepo.NewPG())
	return &Module{deps: deps, ports: Ports{Resolver: svc, Weights: w}}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "identity" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op: identity has no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}
