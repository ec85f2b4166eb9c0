package cases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/casegraph/internal/common"
	"github.com/dmitrijs2005/casegraph/internal/dbx"
	"github.com/dmitrijs2005/casegraph/internal/server/models"
)

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

func (r *SQLRepository) Create(ctx context.Context, c *models.Case) (*models.Case, error) {
	query :=
		`INSERT INTO cases (name, description, owner)
		 VALUES ($1, $2, $3)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query),
		c.Name, c.Description, c.Owner).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *SQLRepository) Get(ctx context.Context, owner string, id int64) (*models.Case, error) {
	query :=
		`SELECT id, name, description, owner FROM cases
		 WHERE id = $1 AND owner = $2`

	c := &models.Case{}
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id, owner).
		Scan(&c.ID, &c.Name, &c.Description, &c.Owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *SQLRepository) List(ctx context.Context, owner string) ([]*models.Case, error) {
	query :=
		`SELECT id, name, description, owner FROM cases
		 WHERE owner = $1
		 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Case{}
	for rows.Next() {
		c := &models.Case{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Owner); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *SQLRepository) Update(ctx context.Context, c *models.Case) (*models.Case, error) {
	query :=
		`UPDATE cases SET name = $1, description = $2
		 WHERE id = $3 AND owner = $4`

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), c.Name, c.Description, c.ID, c.Owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return nil, err
	}

	return c, nil
}

func (r *SQLRepository) Delete(ctx context.Context, owner string, id int64) error {
	query := `DELETE FROM cases WHERE id = $1 AND owner = $2`

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
