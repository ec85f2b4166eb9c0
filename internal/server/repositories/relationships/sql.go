package relationships

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

type scanner interface {
	Scan(dest ...any) error
}

func scanRelationship(s scanner) (*models.Relationship, error) {
	rel := &models.Relationship{}
	err := s.Scan(&rel.ID, &rel.SourceEntityID, &rel.TargetEntityID, &rel.Relation, &rel.Owner)
	return rel, err
}

func (r *SQLRepository) Create(ctx context.Context, rel *models.Relationship) (*models.Relationship, error) {
	query :=
		`INSERT INTO relationships (source_entity_id, target_entity_id, relation, owner)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query),
		rel.SourceEntityID, rel.TargetEntityID, rel.Relation, rel.Owner).Scan(&rel.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rel, nil
}

func (r *SQLRepository) Get(ctx context.Context, owner string, id int64) (*models.Relationship, error) {
	query :=
		`SELECT id, source_entity_id, target_entity_id, relation, owner FROM relationships
		 WHERE id = $1 AND owner = $2`

	rel, err := scanRelationship(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rel, nil
}

func (r *SQLRepository) List(ctx context.Context, owner string, caseID *int64) ([]*models.Relationship, error) {
	query :=
		`SELECT id, source_entity_id, target_entity_id, relation, owner FROM relationships
		 WHERE owner = $1
		 ORDER BY id`
	args := []any{owner}

	if caseID != nil {
		query =
			`SELECT r.id, r.source_entity_id, r.target_entity_id, r.relation, r.owner
			 FROM relationships r
			 JOIN entities s ON s.id = r.source_entity_id
			 JOIN entities t ON t.id = r.target_entity_id
			 WHERE r.owner = $1 AND s.case_id = $2 AND t.case_id = $3
			 ORDER BY r.id`
		args = append(args, *caseID, *caseID)
	}

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Relationship{}
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Update relabels a relationship. Endpoints are immutable.
func (r *SQLRepository) Update(ctx context.Context, rel *models.Relationship) (*models.Relationship, error) {
	query :=
		`UPDATE relationships SET relation = $1
		 WHERE id = $2 AND owner = $3`

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), rel.Relation, rel.ID, rel.Owner)
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

	return rel, nil
}

func (r *SQLRepository) Delete(ctx context.Context, owner string, id int64) error {
	query := `DELETE FROM relationships WHERE id = $1 AND owner = $2`

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

func (r *SQLRepository) DeleteByEntity(ctx context.Context, owner string, entityID int64) (int64, error) {
	query :=
		`DELETE FROM relationships
		 WHERE owner = $1 AND (source_entity_id = $2 OR target_entity_id = $3)`

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), owner, entityID, entityID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
