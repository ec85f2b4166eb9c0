package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/casegraph/internal/dbx"
	"github.com/dmitrijs2005/casegraph/internal/server/migrations"
	"github.com/dmitrijs2005/casegraph/internal/server/repositories/cases"
	"github.com/dmitrijs2005/casegraph/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/casegraph/internal/server/repositories/entities"
	"github.com/dmitrijs2005/casegraph/internal/server/repositories/relationships"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLRepositoryManager vends SQL repositories for one dialect.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

func NewPostgresRepositoryManager() *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: dbx.Postgres}
}

func NewSQLiteRepositoryManager() *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: dbx.SQLite}
}

// Dialect reports the placeholder dialect of the vended repositories.
func (m *SQLRepositoryManager) Dialect() dbx.Dialect {
	return m.dialect
}

func (m *SQLRepositoryManager) Cases(db dbx.DBTX) cases.Repository {
	if m.dialect == dbx.SQLite {
		return cases.NewSQLiteRepository(db)
	}
	return cases.NewPostgresRepository(db)
}

func (m *SQLRepositoryManager) Entities(db dbx.DBTX) entities.Repository {
	if m.dialect == dbx.SQLite {
		return entities.NewSQLiteRepository(db)
	}
	return entities.NewPostgresRepository(db)
}

func (m *SQLRepositoryManager) Relationships(db dbx.DBTX) relationships.Repository {
	if m.dialect == dbx.SQLite {
		return relationships.NewSQLiteRepository(db)
	}
	return relationships.NewPostgresRepository(db)
}

func (m *SQLRepositoryManager) Credentials(db dbx.DBTX) credentials.Repository {
	if m.dialect == dbx.SQLite {
		return credentials.NewSQLiteRepository(db)
	}
	return credentials.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations of the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect.GooseDialect()); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, m.dialect.String())
}
