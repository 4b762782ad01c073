// Package metrics holds the Prometheus collectors of the recompute engine
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine holds every collector the recompute path updates
type Engine struct {
	ObservationsScanned  prometheus.Counter
	ObservationsSkipped  *prometheus.CounterVec
	IdentitiesUnresolved prometheus.Counter
	SignaturesUpserted   prometheus.Counter

	RecommendationsActivated   prometheus.Counter
	RecommendationsDeactivated prometheus.Counter

	RunsTotal      *prometheus.CounterVec
	RunDuration    *prometheus.HistogramVec
	TenantDuration prometheus.Histogram
	LastRunSuccess prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers the engine collectors on reg
// a nil reg gets a private registry, for tests and one-shot runs
func New(reg *prometheus.Registry) *Engine {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Engine{
		ObservationsScanned: f.NewCounter(prometheus.CounterOpts{
			Name: "expiryai_observations_scanned_total",
			Help: "Inventory observations read by the signature aggregator",
		}),
		ObservationsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "expiryai_observations_skipped_total",
			Help: "Observations dropped before aggregation, by reason",
		}, []string{"reason"}),
		IdentitiesUnresolved: f.NewCounter(prometheus.CounterOpts{
			Name: "expiryai_identities_unresolved_total",
			Help: "Observer ids that fell back to the staff weight",
		}),
		SignaturesUpserted: f.NewCounter(prometheus.CounterOpts{
			Name: "expiryai_signatures_upserted_total",
			Help: "Batch signature rows written",
		}),
		RecommendationsActivated: f.NewCounter(prometheus.CounterOpts{
			Name: "expiryai_recommendations_activated_total",
			Help: "Store recommendation rows written as active",
		}),
		RecommendationsDeactivated: f.NewCounter(prometheus.CounterOpts{
			Name: "expiryai_recommendations_deactivated_total",
			Help: "Store recommendation rows flipped inactive before regeneration",
		}),
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "expiryai_runs_total",
			Help: "Orchestrator runs by final status",
		}, []string{"status"}),
		RunDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "expiryai_run_phase_duration_seconds",
			Help:    "Duration of recompute phases",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
		}, []string{"phase"}),
		TenantDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "expiryai_tenant_recompute_duration_seconds",
			Help:    "Duration of one tenant's recommendation regeneration",
			Buckets: prometheus.DefBuckets,
		}),
		LastRunSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "expiryai_last_run_success_timestamp_seconds",
			Help: "Unix time of the last run that finished ok",
		}),
		gatherer: reg,
	}
}

// Handler serves the registry the engine was built on
func (e *Engine) Handler() http.Handler {
	return promhttp.HandlerFor(e.gatherer, promhttp.HandlerOpts{})
}

// OrNoop returns e, or an engine on a private registry when e is nil
func OrNoop(e *Engine) *Engine {
	if e != nil {
		return e
	}
	return New(nil)
}
