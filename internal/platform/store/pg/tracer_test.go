package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"expiryai/internal/platform/logger"

	"github.com/rs/zerolog"
)

func TestCompact(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"select 1", "select 1"},
		{"  select   1  ", "select 1"},
		{"UPDATE\tstore_expiry_recommendations\n SET  is_active = false", "UPDATE store_expiry_recommendations SET is_active = false"},
		{"", ""},
	}
	for i, c := range cases {
		if got := compact(c.in); got != c.want {
			t.Fatalf("case %d: compact(%q) = %q, want %q", i, c.in, got, c.want)
		}
	}
}

type logLine struct {
	Level     string  `json:"level"`
	Slow      bool    `json:"slow"`
	Tx        bool    `json:"tx"`
	SQL       string  `json:"sql"`
	Args      []any   `json:"args"`
	Error     string  `json:"error"`
	Component string  `json:"component"`
	RunID     string  `json:"run_id"`
	ElapsedMs float64 `json:"elapsed_ms"`
}

func readLine(t *testing.T, buf *bytes.Buffer) logLine {
	t.Helper()
	var line logLine
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("unmarshal: %v raw=%s", err, buf.String())
	}
	buf.Reset()
	return line
}

func TestTracer_LevelsAndArgs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := Tracer(zerolog.New(&buf))

	ev := QueryEvent{
		SQL:     "insert into batch_signatures\n select * from unnest($1::text[], $2::date[])",
		Args:    []any{[]string{"a", "b", "c"}, []time.Time{{}, {}}, 14},
		Elapsed: 1500 * time.Microsecond,
		Err:     errors.New("boom"),
		InTx:    true,
	}
	tr.OnQuery(context.Background(), ev)

	line := readLine(t, &buf)
	if line.Level != "info" || line.Slow || !line.Tx || line.Component != "pg" || line.Error != "boom" {
		t.Fatalf("unexpected line %+v", line)
	}
	if line.ElapsedMs != 1.5 || line.RunID != "" {
		t.Fatalf("elapsed or run id wrong: %+v", line)
	}
	if len(line.Args) != 3 || line.Args[0] != "[3 items]" || line.Args[1] != "[2 items]" || line.Args[2].(float64) != 14 {
		t.Fatalf("args not summarized: %#v", line.Args)
	}

	ev.Slow = true
	tr.OnQuery(logger.WithRun(context.Background(), "run-7"), ev)
	line = readLine(t, &buf)
	if line.Level != "warn" || !line.Slow || line.RunID != "run-7" {
		t.Fatalf("slow query should log at warn with run id, got %+v", line)
	}
}
