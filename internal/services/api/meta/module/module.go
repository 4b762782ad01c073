// Package module mounts the meta endpoints
package module

import (
	"net/http"
	"time"

	modkit "expiryai/internal/modkit"
	"expiryai/internal/modkit/httpkit"
	str "expiryai/internal/platform/strings"
	erdom "expiryai/internal/services/expiryrun/domain"

	metahttp "expiryai/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	hd     metahttp.Deps
	extra  func(httpkit.Router)
}

// New builds the meta module; runs may be nil, which drops the last_run readiness check
func New(deps modkit.Deps, runs erdom.HistoryPort, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	hd := metahttp.Deps{
		ServiceName: "expiryai-api",
		StartedAt:   time.Now(),
		Runs:        runs,
		StaleAfter:  deps.Cfg.Prefix("CORE_API_").MayDuration("RUN_STALE_AFTER", 26*time.Hour),
	}
	// keep a nil TxRunner out of the interface so /ready reports skipped
	if deps.PG != nil {
		hd.PG = deps.PG
	} else {
		hd.Runs = nil
	}
	return &Module{name: b.Name, prefix: b.Prefix, mws: b.Mw, hd: hd, extra: b.Register}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.Prefix(), func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		metahttp.Register(rr, m.hd)
		m.extra(rr)
	})
}

func (m *Module) Name() string   { return str.MustString(m.name, "meta") }
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }
func (m *Module) Ports() any     { return nil }
