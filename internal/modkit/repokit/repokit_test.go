package repokit

import (
	"context"
	stderrs "errors"
	"testing"

	kit "expiryai/internal/platform/testkit"
)

type guardFunc func(context.Context) error

func (g guardFunc) Guard(ctx context.Context) error { return g(ctx) }

type nopQ struct{ Queryer }

func TestBindFuncAndMustBind(t *testing.T) {
	b := BindFunc[string](func(q Queryer) string { return "bound" })
	if got := MustBind[string](b, nopQ{}); got != "bound" {
		t.Fatalf("MustBind = %q", got)
	}
	kit.MustPanic(t, func() { MustBind[string](b, nil) })
}

func TestMustGuard(t *testing.T) {
	MustGuard(context.Background(), guardFunc(func(context.Context) error { return nil }))
	kit.MustPanic(t, func() {
		MustGuard(context.Background(), guardFunc(func(context.Context) error { return stderrs.New("down") }))
	})
}
