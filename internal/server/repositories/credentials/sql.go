package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/casegraph/internal/common"
	"github.com/dmitrijs2005/casegraph/internal/dbx"
	"github.com/dmitrijs2005/casegraph/internal/server/models"
)

const selectColumns = `SELECT id, name, description, secret_ciphertext, nonce, active, owner FROM credentials`

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

func scanCredential(s scanner) (*models.Credential, error) {
	c := &models.Credential{}
	err := s.Scan(&c.ID, &c.Name, &c.Description, &c.SecretCiphertext, &c.SecretNonce, &c.Active, &c.Owner)
	return c, err
}

func (r *SQLRepository) getOne(ctx context.Context, query string, args ...any) (*models.Credential, error) {
	c, err := scanCredential(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *SQLRepository) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	query :=
		`INSERT INTO credentials (name, description, secret_ciphertext, nonce, active, owner)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query),
		c.Name, c.Description, c.SecretCiphertext, c.SecretNonce, c.Active, c.Owner).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *SQLRepository) Get(ctx context.Context, owner string, id int64) (*models.Credential, error) {
	return r.getOne(ctx, selectColumns+`
		 WHERE id = $1 AND owner = $2`, id, owner)
}

func (r *SQLRepository) FindActiveByName(ctx context.Context, owner, name string) (*models.Credential, error) {
	query := selectColumns + `
		 WHERE owner = $1 AND UPPER(name) = UPPER($2) AND active = TRUE
		 ORDER BY id
		 LIMIT 1`

	return r.getOne(ctx, query, owner, strings.TrimSpace(name))
}

func (r *SQLRepository) List(ctx context.Context, owner string) ([]*models.Credential, error) {
	query := selectColumns + `
		 WHERE owner = $1
		 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Credential{}
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *SQLRepository) Update(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	query :=
		`UPDATE credentials
		 SET name = $1, description = $2, secret_ciphertext = $3, nonce = $4, active = $5
		 WHERE id = $6 AND owner = $7`

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		c.Name, c.Description, c.SecretCiphertext, c.SecretNonce, c.Active, c.ID, c.Owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return nil, common.ErrorNotFound
	}

	return c, nil
}

func (r *SQLRepository) Delete(ctx context.Context, owner string, id int64) error {
	query := `DELETE FROM credentials WHERE id = $1 AND owner = $2`

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), id, owner)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
