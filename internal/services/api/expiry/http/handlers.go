// Package http provides http transport for the expiry read API
package http

import (
	stdhttp "net/http"
	"strconv"

	"expiryai/internal/modkit/httpkit"
	perr "expiryai/internal/platform/errors"
	"expiryai/internal/platform/net/http/bind"
	"expiryai/internal/services/api/expiry/domain"
)

// Register mounts expiry endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	// global signatures, highest confidence first
	httpkit.Get(r, "/signatures", h.signatures)

	// one tenant's active recommendations, riskiest first
	httpkit.Get(r, "/tenants/{tenantID}/recommendations", h.recommendations)

	httpkit.Get(r, "/runs/latest", h.latestRun)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route GET /expiry/signatures Expiry expirySignatures
// @Summary Global batch signatures, highest confidence first
// @Tags Expiry
// @Produce json
// @Param barcode query string false "Exact barcode"
// @Param expiry_from query string false "Earliest expiry date (YYYY-MM-DD)"
// @Param expiry_to query string false "Latest expiry date (YYYY-MM-DD)"
// @Param min_confidence query number false "Minimum confidence in [0,1]"
// @Param limit query int false "Page size, 1..500, default 100"
// @Success 200 {array} domain.SignatureRow "ok"
// @Router /expiry/signatures [get]
func (h *handlers) signatures(r *stdhttp.Request) (any, error) {
	q, err := bind.Query[domain.SignatureQuery](r)
	if err != nil {
		return nil, err
	}
	rows, limit, err := h.svc.Signatures(r.Context(), q)
	if err != nil {
		return nil, err
	}
	return httpkit.List(rows, limit), nil
}

// swagger:route GET /expiry/tenants/{tenantID}/recommendations Expiry expiryRecommendations
// @Summary One tenant's active recommendations, riskiest first
// @Tags Expiry
// @Produce json
// @Param tenantID path int true "Tenant id"
// @Param level query string false "weak, likely or confirmed"
// @Param limit query int false "Page size, 1..500, default 100"
// @Success 200 {array} domain.RecommendationRow "ok"
// @Router /expiry/tenants/{tenantID}/recommendations [get]
func (h *handlers) recommendations(r *stdhttp.Request) (any, error) {
	tid, err := strconv.ParseInt(httpkit.URLParam(r, "tenantID"), 10, 64)
	if err != nil || tid <= 0 {
		return nil, perr.WithField(perr.Validationf("tenantID must be a positive integer"), "tenantID")
	}
	q, err := bind.Query[domain.RecommendationQuery](r)
	if err != nil {
		return nil, err
	}
	rows, limit, err := h.svc.Recommendations(r.Context(), tid, q)
	if err != nil {
		return nil, err
	}
	return httpkit.List(rows, limit), nil
}

// swagger:route GET /expiry/runs/latest Expiry expiryLatestRun
// @Summary Most recent orchestrator run
// @Tags Expiry
// @Produce json
// @Success 200 {object} erdom.Run "ok"
// @Failure 404 {object} phttp.Envelope "no run recorded yet"
// @Router /expiry/runs/latest [get]
func (h *handlers) latestRun(r *stdhttp.Request) (any, error) {
	return h.svc.LatestRun(r.Context())
}
