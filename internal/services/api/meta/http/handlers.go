// Package http serves the liveness, readiness and service info endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"expiryai/internal/modkit/httpkit"
	perr "expiryai/internal/platform/errors"
	erdom "expiryai/internal/services/expiryrun/domain"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any

	// Runs, when set, adds a last_run check; a run older than StaleAfter degrades readiness
	Runs       erdom.HistoryPort
	StaleAfter time.Duration

	// Now defaults to time.Now
	Now func() time.Time
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := &handlers{deps: d}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/service", h.service)
}

// check statuses, worst last
const (
	checkOK      = "ok"
	checkSkipped = "skipped"
	checkStale   = "stale"
	checkFail    = "fail"
)

type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Now     string `json:"now"`
}

// ReadyCheck is one dependency probe
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// ReadyResponse is ok, degraded or fail
type ReadyResponse struct {
	Status string       `json:"status"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

type ServiceResponse struct {
	Name    string `json:"name"`
	Started string `json:"started"`
	Uptime  int64  `json:"uptime"`
}

func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Now:     h.deps.Now().UTC().Format(time.RFC3339),
	}, nil
}

// ready never errors: a failing dependency is reported in the body
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := []ReadyCheck{h.pgCheck(ctx)}
	if h.deps.Runs != nil {
		checks = append(checks, h.runCheck(ctx))
	}

	overall := "ok"
	for _, c := range checks {
		switch c.Status {
		case checkFail:
			overall = "fail"
		case checkOK:
		default:
			if overall == "ok" {
				overall = "degraded"
			}
		}
	}
	return ReadyResponse{Status: overall, Checks: checks, Now: h.deps.Now().UTC().Format(time.RFC3339)}, nil
}

func (h *handlers) pgCheck(ctx stdctx.Context) ReadyCheck {
	p, ok := h.deps.PG.(Pinger)
	if !ok {
		return ReadyCheck{Name: "pg", Status: checkSkipped}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: "pg", Status: checkFail, Detail: err.Error()}
	}
	return ReadyCheck{Name: "pg", Status: checkOK}
}

// runCheck reports how fresh the recommendations are; a failed or old run does not fail readiness
func (h *handlers) runCheck(ctx stdctx.Context) ReadyCheck {
	c := ReadyCheck{Name: "last_run"}
	run, err := h.deps.Runs.Latest(ctx)
	switch {
	case perr.IsCode(err, perr.ErrorCodeNotFound):
		c.Status, c.Detail = checkStale, "no run recorded"
		return c
	case err != nil:
		c.Status, c.Detail = checkFail, err.Error()
		return c
	}

	age := h.deps.Now().Sub(run.StartedAt).Round(time.Second)
	c.Detail = string(run.Status) + " " + age.String() + " ago"
	switch {
	case run.Status == erdom.StatusError || run.Status == erdom.StatusCanceled:
		c.Status = checkStale
	case h.deps.StaleAfter > 0 && age > h.deps.StaleAfter:
		c.Status = checkStale
	default:
		c.Status = checkOK
	}
	return c
}

func (h *handlers) service(_ *http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(h.deps.Now().Sub(h.deps.StartedAt) / time.Second),
	}, nil
}
