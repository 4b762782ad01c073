package swaggerkit

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "expiryai/internal/platform/net/http"
	kit "expiryai/internal/platform/testkit"
)

func docJSON(t *testing.T, enabled bool) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	m := chi.NewRouter()
	Mount(phttp.AdaptChi(m), "/v1", enabled)

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/doc.json", nil))
	if rec.Code != http.StatusOK {
		return rec, nil
	}
	var spec map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("doc.json is not JSON: %v", err)
	}
	return rec, spec
}

func TestMount_ServesRegisteredDocument(t *testing.T) {
	rec, spec := docJSON(t, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if spec["openapi"] != "3.0.3" {
		t.Fatalf("openapi = %v", spec["openapi"])
	}
	info := spec["info"].(map[string]any)
	if info["title"] != "ExpiryAI API" || info["version"] != "0.1.0" {
		t.Fatalf("info = %v", info)
	}

	servers := spec["servers"].([]any)
	if url := servers[0].(map[string]any)["url"]; url != "/v1" {
		t.Fatalf("server url = %v, want /v1", url)
	}

	paths := spec["paths"].(map[string]any)
	for _, p := range []string{"/expiry/signatures", "/expiry/tenants/{tenantID}/recommendations", "/expiry/runs/latest"} {
		op, ok := paths[p].(map[string]any)["get"].(map[string]any)
		if !ok {
			t.Fatalf("%s: no get operation", p)
		}
		if _, ok := op["responses"].(map[string]any)["500"]; !ok {
			t.Errorf("%s: default 500 not added", p)
		}
	}

	schemas := spec["components"].(map[string]any)["schemas"].(map[string]any)
	if _, ok := schemas["ErrorResponse"]; !ok {
		t.Fatal("ErrorResponse schema missing")
	}
}

func TestMount_Disabled(t *testing.T) {
	if rec, _ := docJSON(t, false); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestMount_BrokenDocument(t *testing.T) {
	kit.Serial(t)
	kit.Swap(t, &docReader, func() (string, error) { return "{", nil })
	if rec, _ := docJSON(t, true); rec.Code != http.StatusInternalServerError {
		t.Fatalf("parse failure status = %d", rec.Code)
	}

	kit.Swap(t, &docReader, func() (string, error) { return "", errors.New("not registered") })
	if rec, _ := docJSON(t, true); rec.Code != http.StatusInternalServerError {
		t.Fatalf("read failure status = %d", rec.Code)
	}
}

func TestEnsureServers_DowngradesAndKeepsExisting(t *testing.T) {
	spec := map[string]any{"swagger": "2.0"}
	ensureServers(spec, "/v1")
	if _, ok := spec["swagger"]; ok || spec["openapi"] != "3.0.3" {
		t.Fatalf("swagger 2 not lifted: %v", spec)
	}

	spec = map[string]any{"openapi": "3.1.0", "servers": []any{"keep"}}
	ensureServers(spec, "/v1")
	if spec["openapi"] != "3.0.3" || len(spec["servers"].([]any)) != 1 || spec["servers"].([]any)[0] != "keep" {
		t.Fatalf("3.1 spec = %v", spec)
	}
}
