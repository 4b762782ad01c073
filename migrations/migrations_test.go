package migrations

import (
	"context"
	"strings"
	"testing"

	"expiryai/internal/platform/store"
)

type recQ struct {
	store.RowQuerier
	sqls []string
}

func (r *recQ) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	r.sqls = append(r.sqls, sql)
	return nil, nil
}

func TestNamesSorted(t *testing.T) {
	names, err := Names()
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) != 2 || names[0] != collaboratorsFile || names[1] != "0001_expiry_ai.sql" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestApply(t *testing.T) {
	q := &recQ{}
	if err := Apply(context.Background(), q, false); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(q.sqls) != 1 || !strings.Contains(q.sqls[0], "CREATE TABLE IF NOT EXISTS batch_signatures") {
		t.Fatalf("expected only the engine schema, got %d statements", len(q.sqls))
	}

	q = &recQ{}
	if err := Apply(context.Background(), q, true); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(q.sqls) != 2 || !strings.Contains(q.sqls[0], "inventory_items") {
		t.Fatalf("expected collaborators first, got %d statements", len(q.sqls))
	}
}
