package entities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/casegraph/internal/common"
	"github.com/dmitrijs2005/casegraph/internal/dbx"
	"github.com/dmitrijs2005/casegraph/internal/server/models"
)

const selectColumns = `SELECT id, case_id, name, kind, description, owner FROM entities`

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: dbx.Postgres}
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: dbx.SQLite}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(s scanner) (*models.Entity, error) {
	e := &models.Entity{}
	err := s.Scan(&e.ID, &e.CaseID, &e.Name, &e.Kind, &e.Description, &e.Owner)
	return e, err
}

func (r *SQLRepository) Create(ctx context.Context, e *models.Entity) (*models.Entity, error) {
	query :=
		`INSERT INTO entities (case_id, name, kind, description, owner)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query),
		e.CaseID, e.Name, e.Kind, e.Description, e.Owner).Scan(&e.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return e, nil
}

func (r *SQLRepository) Get(ctx context.Context, owner string, id int64) (*models.Entity, error) {
	query := selectColumns + `
		 WHERE id = $1 AND owner = $2`

	e, err := scanEntity(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return e, nil
}

func (r *SQLRepository) List(ctx context.Context, owner string, caseID *int64) ([]*models.Entity, error) {
	query := selectColumns + `
		 WHERE owner = $1`
	args := []any{owner}
	if caseID != nil {
		query += ` AND case_id = $2`
		args = append(args, *caseID)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Entity{}
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Update rewrites the mutable columns. case_id is never changed.
func (r *SQLRepository) Update(ctx context.Context, e *models.Entity) (*models.Entity, error) {
	query :=
		`UPDATE entities SET name = $1, kind = $2, description = $3
		 WHERE id = $4 AND owner = $5`

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), e.Name, e.Kind, e.Description, e.ID, e.Owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return nil, err
	}

	return e, nil
}

func (r *SQLRepository) Delete(ctx context.Context, owner string, id int64) error {
	query := `DELETE FROM entities WHERE id = $1 AND owner = $2`

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), id, owner)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
