// Package api provides the HTTP API for the application
package api

import (
	"expiryai/internal/platform/config"
	"expiryai/internal/platform/logger"
	"expiryai/internal/platform/metrics"
	phttp "expiryai/internal/platform/net/http"
	"expiryai/internal/platform/store"

	"expiryai/internal/modkit"
	"expiryai/internal/modkit/httpkit"
	"expiryai/internal/modkit/module"
	"expiryai/internal/modkit/swaggerkit"

	expirymod "expiryai/internal/services/api/expiry/module"
	metamod "expiryai/internal/services/api/meta/module"
	expiryrun "expiryai/internal/services/expiryrun/module"
)

// Options are the API options
type Options struct {
	Config  config.Conf
	Store   *store.Store
	Logger  logger.Logger
	Metrics *metrics.Engine

	EnableSwagger bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{
		Log:     opt.Logger,
		Cfg:     opt.Config,
		PG:      opt.Store.PG,
		Metrics: metrics.OrNoop(opt.Metrics),
	}

	runs := expiryrun.NewHistory(deps)
	mods := []module.Module{
		metamod.New(deps, runs),
		expirymod.New(deps, runs),
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		swaggerkit.Mount(r, "/v1", opt.EnableSwagger)

		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
}
