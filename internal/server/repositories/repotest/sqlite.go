// Package repotest opens migrated SQLite databases for repository and
// service tests.
package repotest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/casegraph/internal/server/migrations"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// OpenSQLite creates a fresh database file under t.TempDir() and applies the
// sqlite migrations. goose keeps global state, so callers must not run in
// parallel.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "casegraph.db") +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "sqlite"))
	return db
}

// SeedCase inserts a case row directly and returns its id.
func SeedCase(t testing.TB, db *sql.DB, owner, name string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO cases (name, owner) VALUES (?, ?)`, name, owner)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// SeedEntity inserts an entity row directly and returns its id.
func SeedEntity(t testing.TB, db *sql.DB, owner string, caseID int64, name, kind string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO entities (case_id, name, kind, owner) VALUES (?, ?, ?, ?)`,
		caseID, name, kind, owner)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// Count returns the number of rows in table.
func Count(t testing.TB, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}
