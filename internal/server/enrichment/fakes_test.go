package enrichment

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/casegraph/internal/common"
	"github.com/dmitrijs2005/casegraph/internal/server/models"
)

type fakeGraph struct {
	nextID        int64
	entities      map[int64]*models.Entity
	relationships []*models.Relationship
	failEntityAt  int
}

func newFakeGraph(seed ...*models.Entity) *fakeGraph {
	g := &fakeGraph{nextID: 100, entities: map[int64]*models.Entity{}}
	for _, e := range seed {
		g.entities[e.ID] = e
	}
	return g
}

func (g *fakeGraph) CreateEntity(ctx context.Context, owner string, in models.EntityCreate) (*models.Entity, error) {
	if g.failEntityAt > 0 && len(g.entities) >= g.failEntityAt {
		return nil, errors.New("disk full")
	}
	g.nextID++
	e := &models.Entity{ID: g.nextID, CaseID: in.CaseID, Name: in.Name, Kind: in.Kind, Description: in.Description, Owner: owner}
	g.entities[e.ID] = e
	return e, nil
}

func (g *fakeGraph) CreateRelationship(ctx context.Context, owner string, in models.RelationshipCreate) (*models.Relationship, error) {
	g.nextID++
	r := &models.Relationship{ID: g.nextID, SourceEntityID: in.SourceEntityID, TargetEntityID: in.TargetEntityID, Relation: in.Relation, Owner: owner}
	g.relationships = append(g.relationships, r)
	return r, nil
}

func (g *fakeGraph) GetEntity(ctx context.Context, owner string, id int64) (*models.Entity, error) {
	e, ok := g.entities[id]
	if !ok || e.Owner != owner {
		return nil, common.ErrEntityNotFound
	}
	return e, nil
}

type fakeAdapter struct {
	name, credential string
	calls            int
	gotRunID         string
	result           *models.EnrichmentResult
	err              error
}

func (a *fakeAdapter) Name() string       { return a.name }
func (a *fakeAdapter) Credential() string { return a.credential }

func (a *fakeAdapter) Enrich(ctx context.Context, entity *models.Entity, owner string) (*models.EnrichmentResult, error) {
	a.calls++
	a.gotRunID = RunID(ctx)
	if a.err != nil {
		return nil, a.err
	}
	if a.result != nil {
		return a.result, nil
	}
	return models.NewMessageResult(a.name), nil
}
