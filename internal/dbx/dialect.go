package dbx

import (
	"regexp"
)

// Dialect describes how a driver spells bind parameters.
//
// Repository queries are written once with Postgres-style ordinal
// placeholders ($1, $2, ...). Each ordinal must appear exactly once and in
// ascending order so that the SQLite rewrite to bare "?" keeps the
// positional meaning of the arguments.
type Dialect int

const (
	// Postgres keeps $N placeholders untouched (pgx).
	Postgres Dialect = iota
	// SQLite rewrites $N placeholders to "?" (modernc.org/sqlite).
	SQLite
)

var ordinalPlaceholder = regexp.MustCompile(`\$\d+`)

// Rebind converts a query written with $N placeholders into the dialect's
// native placeholder syntax.
func (d Dialect) Rebind(query string) string {
	if d == SQLite {
		return ordinalPlaceholder.ReplaceAllString(query, "?")
	}
	return query
}

// GooseDialect returns the goose dialect name for migrations.
func (d Dialect) GooseDialect() string {
	if d == SQLite {
		return "sqlite3"
	}
	return "pgx"
}

// String returns the migrations directory name of the dialect.
func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}
