package pg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"expiryai/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent is one statement as seen by the store adapter
type QueryEvent struct {
	SQL     string
	Args    []any
	Elapsed time.Duration
	Err     error
	Slow    bool
	InTx    bool
}

// QueryTracer receives every statement the adapter runs
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer prints every statement when LogSQL is on, whatever the root level is
func Tracer(root logger.Logger) QueryTracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return &zlTracer{log: ll}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	evt := z.log.Info()
	if ev.Slow {
		evt = z.log.Warn()
	}
	if id := logger.RunID(ctx); id != "" {
		evt = evt.Str("run_id", id)
	}
	evt.Float64("elapsed_ms", float64(ev.Elapsed.Microseconds())/1000.0).
		Bool("slow", ev.Slow).
		Bool("tx", ev.InTx).
		Str("sql", compact(ev.SQL)).
		Interface("args", summarize(ev.Args)).
		Err(ev.Err).
		Msg("pg query")
}

// summarize swaps the unnest array args of the upserts for their length;
// a chunk can carry thousands of values
func summarize(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		n := -1
		switch v := a.(type) {
		case []string:
			n = len(v)
		case []int64:
			n = len(v)
		case []int32:
			n = len(v)
		case []float64:
			n = len(v)
		case []bool:
			n = len(v)
		case []time.Time:
			n = len(v)
		}
		if n < 0 {
			out[i] = a
			continue
		}
		out[i] = fmt.Sprintf("[%d items]", n)
	}
	return out
}

// compact folds a multi line statement onto one line
func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
