// Package repomanager vends repository implementations for one database
// driver, bound to either a connection pool or a transaction, and runs the
// schema migrations for that driver.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/casegraph/internal/dbx"
	"github.com/dmitrijs2005/casegraph/internal/server/repositories/cases"
	"github.com/dmitrijs2005/casegraph/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/casegraph/internal/server/repositories/entities"
	"github.com/dmitrijs2005/casegraph/internal/server/repositories/relationships"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Cases(db dbx.DBTX) cases.Repository
	Entities(db dbx.DBTX) entities.Repository
	Relationships(db dbx.DBTX) relationships.Repository
	Credentials(db dbx.DBTX) credentials.Repository
}

// Driver names accepted by New. They double as database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// New returns the manager for a database/sql driver name.
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case DriverPostgres:
		return NewPostgresRepositoryManager(), nil
	case DriverSQLite:
		return NewSQLiteRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
