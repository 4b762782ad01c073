// Package migrations embeds the schema and applies it in file order
package migrations

import (
	"context"
	"embed"
	"io/fs"
	"sort"

	perr "expiryai/internal/platform/errors"
	"expiryai/internal/platform/logger"
	"expiryai/internal/platform/store"
)

//go:embed *.sql
var files embed.FS

// Names lists the embedded migration files in apply order
func Names() ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Apply runs every migration; all statements are idempotent so reruns are safe
// collaborators controls whether the inventory and identity stand ins are created
func Apply(ctx context.Context, q store.RowQuerier, collaborators bool) error {
	names, err := Names()
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "migrations: list")
	}
	log := logger.C(ctx).With().Str("mod", "migrations").Logger()
	for _, n := range names {
		if n == collaboratorsFile && !collaborators {
			continue
		}
		b, err := files.ReadFile(n)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "migrations: read %s", n)
		}
		if _, err := q.Exec(ctx, string(b)); err != nil {
			return perr.FromPostgresf(err, "migrations: apply %s", n)
		}
		log.Info().Str("file", n).Msg("migrations: applied")
	}
	return nil
}

const collaboratorsFile = "0000_collaborators.sql"
