package module

import (
	"testing"

	phttp "expiryai/internal/platform/net/http"
	kit "expiryai/internal/platform/testkit"
)

type lister interface{ Tenants() []int64 }

type fixedLister struct{}

func (fixedLister) Tenants() []int64 { return []int64{1, 2} }

type fakeMod struct{ ports any }

func (m fakeMod) MountRoutes(phttp.Router) {}
func (m fakeMod) Ports() any               { return m.ports }
func (m fakeMod) Name() string             { return "inventory" }

func TestPortsOf(t *testing.T) {
	type bundle struct {
		Other   int
		Tenants lister
	}

	got, ok := PortsOf[lister](fakeMod{ports: bundle{Tenants: fixedLister{}}})
	if !ok || len(got.Tenants()) != 2 {
		t.Fatalf("PortsOf via struct field failed")
	}
	if _, ok := PortsOf[lister](fakeMod{ports: fixedLister{}}); !ok {
		t.Fatalf("PortsOf direct implement failed")
	}
	if _, ok := PortsOf[lister](fakeMod{}); ok {
		t.Fatalf("nil ports should report false")
	}
	kit.MustPanic(t, func() { MustPortsOf[lister](fakeMod{ports: bundle{}}) })
}
