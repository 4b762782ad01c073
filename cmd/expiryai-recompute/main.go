// Command expiryai-recompute rebuilds batch signatures and every tenant's
// expiry recommendations, once or on an interval
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expiryai/internal/modkit"
	"expiryai/internal/modkit/module"
	"expiryai/internal/platform/config"
	perr "expiryai/internal/platform/errors"
	"expiryai/internal/platform/logger"
	"expiryai/internal/platform/metrics"
	phttp "expiryai/internal/platform/net/http"
	"expiryai/internal/platform/store"
	"expiryai/migrations"

	erdom "expiryai/internal/services/expiryrun/domain"
	ermod "expiryai/internal/services/expiryrun/module"
	idmod "expiryai/internal/services/identity/module"
	invmod "expiryai/internal/services/inventory/module"
	recmod "expiryai/internal/services/recommendations/module"
	sigmod "expiryai/internal/services/signatures/module"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

func main() { os.Exit(run()) }

func run() int {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	defaults := ermod.FromConfig(root).Defaults

	l := logger.Get()

	var (
		fAlpha   = flag.Float64("alpha", defaults.Alpha, "confidence saturation rate, must be > 0")
		fChunk   = flag.Int("chunk", defaults.ChunkSize, "observations read per page")
		fHorizon = flag.Int("horizon", defaults.HorizonDays, "days ahead at which time risk starts rising")
		fMinConf = flag.Float64("min-confidence", defaults.MinConfidence, "drop signatures below this confidence")
		fMinRisk = flag.Float64("min-risk", defaults.MinRisk, "drop recommendations below this risk")
		fMaxRows = flag.Int("max-rows", defaults.MaxRows, "cap per tenant, 0 is no cap")
		fSort    = flag.Bool("sort-before-cap", defaults.SortBeforeCap, "rank by risk before applying -max-rows")
		fTenant  = flag.Int64("tenant", 0, "recompute only this tenant's recommendations, skips aggregation")
		fEvery   = flag.Duration("every", 0, "rerun on this interval until interrupted, 0 runs once")
		fMetrics = flag.String("metrics-addr", "", "serve prometheus metrics here in -every mode, e.g. :9102")
		fMigrate = flag.Bool("migrate", false, "apply the engine schema before running")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "expiryai-recompute",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Error().Err(err).Msg("store.Open failed")
		return 1
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if *fMigrate {
		if err := migrations.Apply(ctx, st.PG, false); err != nil {
			l.Error().Err(err).Msg("migrations failed")
			return 1
		}
	}

	eng := metrics.New(nil)
	deps := modkit.Deps{
		Log:     *l,
		Cfg:     root,
		PG:      st.PG,
		Metrics: eng,
	}

	// inventory and identity feed the aggregator; the generator reads holdings and signatures
	inv := invmod.New(deps)
	invPorts := module.MustPortsOf[invmod.Ports](inv)

	id, err := idmod.New(deps)
	if err != nil {
		l.Error().Err(err).Msg("identity module failed")
		return 1
	}
	idPorts := module.MustPortsOf[idmod.Ports](id)

	sig := sigmod.New(deps, invPorts.Source, idPorts.Resolver, idPorts.Weights)
	sigPorts := module.MustPortsOf[sigmod.Ports](sig)

	rec := recmod.New(deps, invPorts.Source, sigPorts.Reader)
	recPorts := module.MustPortsOf[recmod.Ports](rec)

	er := ermod.New(deps, sigPorts.Aggregator, recPorts.Generator, invPorts.Source)
	runner := module.MustPortsOf[erdom.RunnerPort](er)

	p := erdom.Params{
		Alpha:         *fAlpha,
		ChunkSize:     *fChunk,
		HorizonDays:   *fHorizon,
		MinConfidence: *fMinConf,
		MinRisk:       *fMinRisk,
		MaxRows:       *fMaxRows,
		SortBeforeCap: *fSort,
		TenantID:      *fTenant,
	}

	if *fEvery > 0 {
		return schedule(ctx, l, runner, eng, *fMetrics, *fEvery, p)
	}
	if *fMetrics != "" {
		l.Warn().Str("addr", *fMetrics).Msg("-metrics-addr is only served with -every")
	}

	res, err := runner.Run(ctx, p)
	switch {
	case perr.IsCode(err, perr.ErrorCodeConflict):
		l.Warn().Err(err).Msg("recompute skipped, another run holds the lease")
		return 0
	case err != nil:
		l.Error().Err(err).Str("code", perr.CodeOf(err).String()).Msg("recompute failed")
		return 1
	}

	fmt.Printf("BatchSignature updated: %d\n", res.Signatures)
	fmt.Printf("Store recommendations updated: %d\n", res.Recommendations)
	return 0
}

// schedule runs the orchestrator on a ticker next to an optional metrics listener
func schedule(ctx context.Context, l *logger.Logger, runner erdom.RunnerPort, eng *metrics.Engine, addr string, every time.Duration, p erdom.Params) int {
	g, gctx := errgroup.WithContext(ctx)
	if addr != "" {
		srv := phttp.NewServerAddr(addr, func(m *chi.Mux) {
			m.Handle("/metrics", eng.Handler())
		})
		g.Go(func() error { return srv.Run(gctx) })
	}
	g.Go(func() error { return runner.Every(gctx, every, p) })

	if err := g.Wait(); err != nil {
		l.Error().Err(err).Msg("scheduled recompute stopped")
		return 1
	}
	return 0
}
