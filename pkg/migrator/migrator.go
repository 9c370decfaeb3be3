// Package migrator applies a bounded context's embedded goose migrations.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	goosedb "github.com/pressly/goose/v3/database"

	"github.com/ghuser/todoreminder/pkg/database"
	"github.com/ghuser/todoreminder/pkg/logger"
)

// Up applies every pending migration found at the root of files against
// dbURL and returns how many ran. Each bounded context records its versions
// in its own versionTable, so contexts migrate independently and can share
// a process.
func Up(ctx context.Context, dbURL string, files fs.FS, versionTable string, log logger.Logger) (int, error) {
	db, err := sql.Open(database.DriverName, dbURL)
	if err != nil {
		return 0, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	store, err := goosedb.NewStore(goosedb.DialectPostgres, versionTable)
	if err != nil {
		return 0, fmt.Errorf("goose store %s: %w", versionTable, err)
	}
	provider, err := goose.NewProvider("", db, files, goose.WithStore(store))
	if err != nil {
		return 0, fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	for _, r := range results {
		log.InfoContext(ctx, "migration applied",
			"version_table", versionTable,
			"version", r.Source.Version,
			"file", r.Source.Path,
			"duration_ms", r.Duration.Milliseconds(),
		)
	}
	if err != nil {
		return len(results), fmt.Errorf("failed to up migrations: %w", err)
	}
	return len(results), nil
}
