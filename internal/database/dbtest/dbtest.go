// Package dbtest opens a migrated SQLite database in a test temp dir.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"learnmap/internal/database/migration"
	"learnmap/internal/database/sqlite"
)

func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migration.Runner{Dialect: "sqlite"}.Run(ctx, db))
	return db
}
