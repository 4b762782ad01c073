// @title         ExpiryAI API
// @version       0.1.0
// @description   Read only endpoints for batch signatures, store recommendations and run history
// @BasePath      /v1

// Command expiryai-api serves read only endpoints over batch signatures,
// store recommendations and run history
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"expiryai/internal/platform/config"
	"expiryai/internal/platform/logger"
	"expiryai/internal/platform/metrics"
	phttp "expiryai/internal/platform/net/http"
	"expiryai/internal/platform/store"

	"expiryai/internal/services/api"

	"github.com/go-chi/chi/v5"
)

func main() {
	// service-scoped config for HTTP (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "expiryai-api",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", true),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	eng := metrics.New(nil)

	// http server (reads CORE_API_API_PORT)
	srv := phttp.NewServer(apiCfg, func(m *chi.Mux) {
		m.Handle("/metrics", eng.Handler())
	})

	api.Mount(srv.Router(), api.Options{
		Config:  root,
		Store:   st,
		Logger:  *l,
		Metrics: eng,

		EnableSwagger: apiCfg.MayBool("SWAGGER", true),
	})

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
