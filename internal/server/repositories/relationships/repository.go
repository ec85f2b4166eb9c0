package relationships

import (
	"context"

	"github.com/dmitrijs2005/casegraph/internal/server/models"
)

// Repository persists relationships.
//
// List with a caseID keeps only relationships whose source and target both
// belong to that case. DeleteByEntity removes every relationship touching
// the entity as source or target and reports how many were removed.
type Repository interface {
	Create(ctx context.Context, rel *models.Relationship) (*models.Relationship, error)
	Get(ctx context.Context, owner string, id int64) (*models.Relationship, error)
	List(ctx context.Context, owner string, caseID *int64) ([]*models.Relationship, error)
	Update(ctx context.Context, rel *models.Relationship) (*models.Relationship, error)
	Delete(ctx context.Context, owner string, id int64) error
	DeleteByEntity(ctx context.Context, owner string, entityID int64) (int64, error)
}
