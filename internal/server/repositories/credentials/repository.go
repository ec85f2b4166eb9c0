package credentials

import (
	"context"

	"github.com/dmitrijs2005/casegraph/internal/server/models"
)

// Repository persists sealed provider credentials. The repository never sees
// plaintext secrets.
type Repository interface {
	Create(ctx context.Context, c *models.Credential) (*models.Credential, error)
	Get(ctx context.Context, owner string, id int64) (*models.Credential, error)
	List(ctx context.Context, owner string) ([]*models.Credential, error)
	Update(ctx context.Context, c *models.Credential) (*models.Credential, error)
	Delete(ctx context.Context, owner string, id int64) error
	// FindActiveByName matches name case-insensitively after trimming. When
	// several active rows share a name the lowest id wins.
	FindActiveByName(ctx context.Context, owner, name string) (*models.Credential, error)
}
