//go:build integration_pg

package guardrails

import (
	"context"
	"errors"
	"testing"
	"time"

	"expiryai/internal/platform/store/pgtest"
)

func TestRunLease_Integration(t *testing.T) {
	st := pgtest.Open(t)
	ctx := context.Background()

	a := MakeRunLease(st.PG, "recompute", "a", time.Minute)
	b := MakeRunLease(st.PG, "recompute", "b", time.Minute)

	var inner error
	err := a(ctx, func(ctx context.Context) error {
		inner = b(ctx, func(context.Context) error {
			t.Fatal("second holder must not run")
			return nil
		})
		return nil
	})
	if err != nil {
		t.Fatalf("first holder: %v", err)
	}
	if !errors.Is(inner, ErrLeaseHeld) {
		t.Fatalf("want ErrLeaseHeld, got %v", inner)
	}

	// released, so b can take it now
	ran := false
	if err := b(ctx, func(context.Context) error { ran = true; return nil }); err != nil || !ran {
		t.Fatalf("after release: ran=%v err=%v", ran, err)
	}

	// a crashed holder leaves a stale row behind that expires
	pgtest.Exec(t, st.PG, `INSERT INTO expiry_run_lease (name, owner, expires_at) VALUES ('recompute', 'dead', now() - interval '1 second')`)
	ran = false
	if err := a(ctx, func(context.Context) error { ran = true; return nil }); err != nil || !ran {
		t.Fatalf("stale takeover: ran=%v err=%v", ran, err)
	}
}

func TestRunLease_RenewalOutlivesTTL(t *testing.T) {
	st := pgtest.Open(t)
	ctx := context.Background()

	ttl := 2 * time.Second
	a := MakeRunLease(st.PG, "recompute", "worker", ttl)
	b := MakeRunLease(st.PG, "recompute", "worker", ttl)

	var inner error
	err := a(ctx, func(ctx context.Context) error {
		// past the original expiry; only renewals keep the row ours
		time.Sleep(ttl + time.Second)
		inner = b(ctx, func(context.Context) error {
			t.Fatal("second holder ran while the first was still renewing")
			return nil
		})
		return nil
	})
	if err != nil {
		t.Fatalf("first holder: %v", err)
	}
	if !errors.Is(inner, ErrLeaseHeld) {
		t.Fatalf("want ErrLeaseHeld after ttl, got %v", inner)
	}

	var n int
	if err := st.PG.QueryRow(ctx, `SELECT count(*) FROM expiry_run_lease WHERE name = 'recompute'`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("lease rows after release = %d, want 0", n)
	}
}

func TestRunLease_ReleaseOnlyDeletesOwnRow(t *testing.T) {
	st := pgtest.Open(t)
	ctx := context.Background()

	stale := MakeRunLease(st.PG, "recompute", "worker", 300*time.Millisecond)

	var cause error
	err := stale(ctx, func(ctx context.Context) error {
		// another holder with the same label took the row over
		pgtest.Exec(t, st.PG, `UPDATE expiry_run_lease SET owner = 'worker:other-host:successor' WHERE name = 'recompute'`)
		select {
		case <-ctx.Done():
			cause = context.Cause(ctx)
		case <-time.After(5 * time.Second):
		}
		return nil
	})
	if err != nil {
		t.Fatalf("stale holder: %v", err)
	}
	if !errors.Is(cause, ErrLeaseLost) {
		t.Fatalf("run ctx cause = %v, want ErrLeaseLost", cause)
	}

	var owner string
	if err := st.PG.QueryRow(ctx, `SELECT owner FROM expiry_run_lease WHERE name = 'recompute'`).Scan(&owner); err != nil {
		t.Fatalf("successor row gone: %v", err)
	}
	if owner != "worker:other-host:successor" {
		t.Fatalf("owner = %q", owner)
	}
}
