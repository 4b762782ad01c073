// Package module wires the expiry read API using modkit
package module

import (
	"net/http"

	modkit "expiryai/internal/modkit"
	"expiryai/internal/modkit/httpkit"
	str "expiryai/internal/platform/strings"
	expdom "expiryai/internal/services/api/expiry/domain"
	exphttp "expiryai/internal/services/api/expiry/http"
	exprepo "expiryai/internal/services/api/expiry/repo"
	expsvc "expiryai/internal/services/api/expiry/service"
	erdom "expiryai/internal/services/expiryrun/domain"
)

// Ports exported by the expiry api module
type Ports struct {
	Reader expdom.ServicePort
}

// Module implements the expiry api module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	ports  Ports

	register func(httpkit.Router)
}

// New constructs the expiry api module, mounted at /expiry unless overridden
func New(deps modkit.Deps, history erdom.HistoryPort, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("expiry"), modkit.WithPrefix("/expiry")}, opts...)...)

	svc := expsvc.New(deps.PG, exprepo.NewPG(), history)
	m := &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		ports:  Ports{Reader: svc},
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		exphttp.Register(r, svc)
		external(r)
	}
	return m
}

// MountRoutes mounts the module routes under its prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.Prefix(), m.mws, m.register)
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
