package entities

import (
	"context"

	"github.com/dmitrijs2005/casegraph/internal/server/models"
)

// Repository persists entities. List with a nil caseID returns every entity
// of the owner.
type Repository interface {
	Create(ctx context.Context, e *models.Entity) (*models.Entity, error)
	Get(ctx context.Context, owner string, id int64) (*models.Entity, error)
	List(ctx context.Context, owner string, caseID *int64) ([]*models.Entity, error)
	Update(ctx context.Context, e *models.Entity) (*models.Entity, error)
	Delete(ctx context.Context, owner string, id int64) error
}
