// Package enrichment turns provider lookups into graph mutations. Adapters
// share one contract; the Dispatcher picks the adapter for an entity's kind.
package enrichment

import (
	"context"

	"github.com/dmitrijs2005/casegraph/internal/logging"
	"github.com/dmitrijs2005/casegraph/internal/server/models"
)

// Adapter enriches one entity from one external provider.
//
// Enrich writes its findings into the graph and returns the created records.
// A missing credential or a provider "no such record" answer is a normal
// result; transport failures are returned as errors, and records written
// before the failure are kept.
type Adapter interface {
	Name() string
	Credential() string
	Enrich(ctx context.Context, entity *models.Entity, owner string) (*models.EnrichmentResult, error)
}

// GraphWriter is the slice of the graph store adapters write through.
type GraphWriter interface {
	CreateEntity(ctx context.Context, owner string, in models.EntityCreate) (*models.Entity, error)
	CreateRelationship(ctx context.Context, owner string, in models.RelationshipCreate) (*models.Relationship, error)
}

// EntityReader resolves the subject entity of a run.
type EntityReader interface {
	GetEntity(ctx context.Context, owner string, id int64) (*models.Entity, error)
}

// Vault resolves an owner's active credential by name.
type Vault interface {
	FindActiveCredential(ctx context.Context, owner, name string) (secret string, ok bool, err error)
}

type runIDKey struct{}

// WithRunID tags ctx with the id of the current enrichment run. Records
// logged with the returned context carry it as run_id.
func WithRunID(ctx context.Context, id string) context.Context {
	return logging.ContextWith(context.WithValue(ctx, runIDKey{}, id), "run_id", id)
}

// RunID returns the run id stored by WithRunID, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
