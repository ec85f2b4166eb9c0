package cases

import (
	"context"

	"github.com/dmitrijs2005/casegraph/internal/server/models"
)

// Repository persists cases. Every lookup is scoped to an owner; rows of
// other owners behave as missing.
type Repository interface {
	Create(ctx context.Context, c *models.Case) (*models.Case, error)
	Get(ctx context.Context, owner string, id int64) (*models.Case, error)
	List(ctx context.Context, owner string) ([]*models.Case, error)
	Update(ctx context.Context, c *models.Case) (*models.Case, error)
	Delete(ctx context.Context, owner string, id int64) error
}
