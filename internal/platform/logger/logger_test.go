package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	kit "expiryai/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel_AllBranches(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"debug", "debug"},
		{"info", "info"},
		{"warning", "warn"},
		{"error", "error"},
		{"fatal", "fatal"},
		{"panic", "panic"},
		{"   nonsense   ", "debug"},
	}
	for _, c := range cases {
		if got := strings.ToLower(parseLevel(c.in).String()); got != c.want {
			t.Fatalf("parseLevel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestInit_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{
		Level:        "info",
		Format:       "console",
		Service:      "expiryai",
		Writer:       &buf,
		StaticFields: map[string]string{"build": "test"},
	})

	ctx := WithTenant(WithRun(context.Background(), "run-42"), 7)
	cv := C(ctx).Sample(&zerolog.BasicSampler{N: 1})
	(&cv).Info().Msg("tenant-msg")

	nv := Named("recommendations").Sample(&zerolog.BasicSampler{N: 1})
	(&nv).Info().Msg("named-msg")

	rv := C(WithRequest(context.Background(), "req-1")).Sample(&zerolog.BasicSampler{N: 1})
	(&rv).Info().Msg("req-msg")

	out := buf.String()
	kit.MustContain(t, out, "tenant-msg")
	kit.MustContain(t, out, "run_id=")
	kit.MustContain(t, out, "run-42")
	kit.MustContain(t, out, "tenant_id=")
	kit.MustContain(t, out, "named-msg")
	kit.MustContain(t, out, "recommendations")
	kit.MustContain(t, out, "request_id=")
	kit.MustContain(t, out, "req-1")
	kit.MustContain(t, out, "service=")
}

func TestContextHelpers_IgnoreEmpty(t *testing.T) {
	ctx := context.Background()
	if WithRun(ctx, "") != ctx || WithTenant(ctx, 0) != ctx || WithRequest(ctx, "") != ctx {
		t.Fatalf("empty values should not allocate a new context")
	}
	if got := RunID(WithRun(ctx, "abc")); got != "abc" {
		t.Fatalf("RunID = %q", got)
	}
	if got := RunID(ctx); got != "" {
		t.Fatalf("RunID on bare ctx = %q", got)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "expiryai-recompute")
	t.Setenv("LOG_CALLER", "yes")
	t.Setenv("LOG_SAMPLE_EVERY", "5")

	opt := FromEnv()
	if opt.Level != "warn" || opt.Format != "json" || opt.Service != "expiryai-recompute" {
		t.Fatalf("FromEnv fields mismatch: %+v", opt)
	}
	if !opt.WithCaller || opt.SampleEvery != 5 {
		t.Fatalf("FromEnv caller/sample mismatch: %+v", opt)
	}
}
