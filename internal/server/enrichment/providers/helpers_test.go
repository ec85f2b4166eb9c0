package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dmitrijs2005/casegraph/internal/server/archive"
	"github.com/dmitrijs2005/casegraph/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGraph struct {
	mu            sync.Mutex
	nextID        int64
	entities      []*models.Entity
	relationships []*models.Relationship
}

func (g *fakeGraph) CreateEntity(ctx context.Context, owner string, in models.EntityCreate) (*models.Entity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	e := &models.Entity{ID: 1000 + g.nextID, CaseID: in.CaseID, Name: in.Name, Kind: in.Kind, Description: in.Description, Owner: owner}
	g.entities = append(g.entities, e)
	return e, nil
}

func (g *fakeGraph) CreateRelationship(ctx context.Context, owner string, in models.RelationshipCreate) (*models.Relationship, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	r := &models.Relationship{ID: 1000 + g.nextID, SourceEntityID: in.SourceEntityID, TargetEntityID: in.TargetEntityID, Relation: in.Relation, Owner: owner}
	g.relationships = append(g.relationships, r)
	return r, nil
}

type fakeVault map[string]string

func (v fakeVault) FindActiveCredential(ctx context.Context, owner, name string) (string, bool, error) {
	if owner == "broken" {
		return "", false, errors.New("vault offline")
	}
	s, ok := v[name]
	return s, ok, nil
}

type recordingArchive struct {
	objects []archive.Object
	err     error
}

func (a *recordingArchive) Store(ctx context.Context, obj archive.Object) error {
	a.objects = append(a.objects, obj)
	return a.err
}

type fixture struct {
	graph   *fakeGraph
	archive *recordingArchive
	deps    Deps
	subject *models.Entity
}

// newFixture starts an httptest server with handler and points adapter
// name at it.
func newFixture(t *testing.T, name, kind, subjectName string, vault fakeVault, handler http.HandlerFunc) *fixture {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f := &fixture{
		graph:   &fakeGraph{},
		archive: &recordingArchive{},
		subject: &models.Entity{ID: 1, CaseID: 7, Name: subjectName, Kind: kind, Owner: "alice"},
	}
	f.deps = Deps{
		Graph:        f.graph,
		Vault:        vault,
		Archive:      f.archive,
		Client:       srv.Client(),
		Endpoints:    map[string]string{name: srv.URL},
		PollAttempts: 3,
		PollInterval: 1,
	}
	return f
}

// relationsByName maps created entity names to the relation anchoring them.
func relationsByName(t *testing.T, res *models.EnrichmentResult) map[string]string {
	t.Helper()
	require.Len(t, res.Relationships, len(res.Entities))
	out := map[string]string{}
	for i, e := range res.Entities {
		out[e.Name] = res.Relationships[i].Relation
	}
	return out
}

// assertAnchored checks every created record hangs off the subject inside
// its case.
func assertAnchored(t *testing.T, subject *models.Entity, res *models.EnrichmentResult) {
	t.Helper()
	require.Len(t, res.Relationships, len(res.Entities))
	for i, e := range res.Entities {
		assert.Equal(t, subject.CaseID, e.CaseID)
		assert.Equal(t, "alice", e.Owner)
		assert.Equal(t, subject.ID, res.Relationships[i].SourceEntityID)
		assert.Equal(t, e.ID, res.Relationships[i].TargetEntityID)
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
