// Package services implements the investigation graph store on top of the
// repositories: owner scoping, same-case and cascade-delete integrity, and
// the credential vault accessor used by enrichment.
package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/dmitrijs2005/casegraph/internal/common"
	"github.com/dmitrijs2005/casegraph/internal/cryptox"
	"github.com/dmitrijs2005/casegraph/internal/dbx"
	"github.com/dmitrijs2005/casegraph/internal/logging"
	"github.com/dmitrijs2005/casegraph/internal/server/models"
	"github.com/dmitrijs2005/casegraph/internal/server/repositories/cases"
	"github.com/dmitrijs2005/casegraph/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/casegraph/internal/server/repositories/entities"
	"github.com/dmitrijs2005/casegraph/internal/server/repositories/relationships"
	"github.com/dmitrijs2005/casegraph/internal/server/repositories/repomanager"
)

// GraphService is the single source of truth for cases, entities,
// relationships and credentials.
//
// Mutations are serialized by one mutex and each runs in its own
// transaction; reads go straight to the pool and may interleave.
type GraphService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	box         *cryptox.SecretBox
	logger      logging.Logger

	mu sync.Mutex
}

// NewGraphService builds the store. box may be nil, in which case credential
// operations fail with ErrVaultUnavailable.
func NewGraphService(db *sql.DB, rm repomanager.RepositoryManager, box *cryptox.SecretBox, logger logging.Logger) *GraphService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &GraphService{
		db:          db,
		repomanager: rm,
		box:         box,
		logger:      logger.With("module", "graph"),
	}
}

type graphRepos struct {
	cases         cases.Repository
	entities      entities.Repository
	relationships relationships.Repository
	credentials   credentials.Repository
}

func (s *GraphService) repos(db dbx.DBTX) graphRepos {
	return graphRepos{
		cases:         s.repomanager.Cases(db),
		entities:      s.repomanager.Entities(db),
		relationships: s.repomanager.Relationships(db),
		credentials:   s.repomanager.Credentials(db),
	}
}

// mutate runs fn under the writer lock inside one transaction.
func (s *GraphService) mutate(ctx context.Context, fn func(ctx context.Context, r graphRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, s.repos(tx))
	})
}

// notFound replaces a repository not-found error with the resource specific one.
func notFound(err error, resourceErr error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return resourceErr
	}
	return err
}

// ---- cases ----

func (s *GraphService) CreateCase(ctx context.Context, owner string, in models.CaseCreate) (*models.Case, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}

	var created *models.Case
	err := s.mutate(ctx, func(ctx context.Context, r graphRepos) error {
		var err error
		created, err = r.cases.Create(ctx, &models.Case{Name: in.Name, Description: in.Description, Owner: owner})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "case created", "owner", owner, "case_id", created.ID)
	return created, nil
}

func (s *GraphService) ListCases(ctx context.Context, owner string) ([]*models.Case, error) {
	return s.repomanager.Cases(s.db).List(ctx, owner)
}

func (s *GraphService) GetCase(ctx context.Context, owner string, id int64) (*models.Case, error) {
	c, err := s.repomanager.Cases(s.db).Get(ctx, owner, id)
	if err != nil {
		return nil, notFound(err, common.ErrCaseNotFound)
	}
	return c, nil
}

func (s *GraphService) UpdateCase(ctx context.Context, owner string, id int64, patch models.CaseUpdate) (*models.Case, error) {
	if err := models.Validate(patch); err != nil {
		return nil, err
	}

	var updated *models.Case
	err := s.mutate(ctx, func(ctx context.Context, r graphRepos) error {
		c, err := r.cases.Get(ctx, owner, id)
		if err != nil {
			return notFound(err, common.ErrCaseNotFound)
		}
		patch.Apply(c)
		updated, err = r.cases.Update(ctx, c)
		return notFound(err, common.ErrCaseNotFound)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCase removes every entity of the case (and their relationships)
// before removing the case itself.
func (s *GraphService) DeleteCase(ctx context.Context, owner string, id int64) error {
	var removed int
	err := s.mutate(ctx, func(ctx context.Context, r graphRepos) error {
		if _, err := r.cases.Get(ctx, owner, id); err != nil {
			return notFound(err, common.ErrCaseNotFound)
		}

		contained, err := r.entities.List(ctx, owner, &id)
		if err != nil {
			return err
		}
		for _, e := range contained {
			if err := deleteEntity(ctx, r, owner, e.ID); err != nil {
				return err
			}
		}
		removed = len(contained)

		return notFound(r.cases.Delete(ctx, owner, id), common.ErrCaseNotFound)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "case deleted", "owner", owner, "case_id", id, "entities_removed", removed)
	return nil
}

// ---- entities ----

func (s *GraphService) CreateEntity(ctx context.Context, owner string, in models.EntityCreate) (*models.Entity, error) {
	in.Normalize()
	if err := models.Validate(in); err != nil {
		return nil, err
	}

	var created *models.Entity
	err := s.mutate(ctx, func(ctx context.Context, r graphRepos) error {
		if _, err := r.cases.Get(ctx, owner, in.CaseID); err != nil {
			return notFound(err, common.ErrCaseNotFound)
		}
		var err error
		created, err = r.entities.Create(ctx, &models.Entity{
			CaseID:      in.CaseID,
			Name:        in.Name,
			Kind:        in.Kind,
			Description: in.Description,
			Owner:       owner,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *GraphService) ListEntities(ctx context.Context, owner string, caseID *int64) ([]*models.Entity, error) {
	return s.repomanager.Entities(s.db).List(ctx, owner, caseID)
}

func (s *GraphService) GetEntity(ctx context.Context, owner string, id int64) (*models.Entity, error) {
	e, err := s.repomanager.Entities(s.db).Get(ctx, owner, id)
	if err != nil {
		return nil, notFound(err, common.ErrEntityNotFound)
	}
	return e, nil
}

func (s *GraphService) UpdateEntity(ctx context.Context, owner string, id int64, patch models.EntityUpdate) (*models.Entity, error) {
	if err := models.Validate(patch); err != nil {
		return nil, err
	}

	var updated *models.Entity
	err := s.mutate(ctx, func(ctx context.Context, r graphRepos) error {
		e, err := r.entities.Get(ctx, owner, id)
		if err != nil {
			return notFound(err, common.ErrEntityNotFound)
		}
		patch.Apply(e)
		updated, err = r.entities.Update(ctx, e)
		return notFound(err, common.ErrEntityNotFound)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *GraphService) DeleteEntity(ctx context.Context, owner string, id int64) error {
	return s.mutate(ctx, func(ctx context.Context, r graphRepos) error {
		return deleteEntity(ctx, r, owner, id)
	})
}

// deleteEntity removes the relationships touching the entity first, then
// the entity row.
func deleteEntity(ctx context.Context, r graphRepos, owner string, id int64) error {
	if _, err := r.relationships.DeleteByEntity(ctx, owner, id); err != nil {
		return err
	}
	return notFound(r.entities.Delete(ctx, owner, id), common.ErrEntityNotFound)
}

// ---- relationships ----

// CreateRelationship links two entities of the same owner and case.
func (s *GraphService) CreateRelationship(ctx context.Context, owner string, in models.RelationshipCreate) (*models.Relationship, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}

	var created *models.Relationship
	err := s.mutate(ctx, func(ctx context.Context, r graphRepos) error {
		source, err := r.entities.Get(ctx, owner, in.SourceEntityID)
		if err != nil {
			return notFound(err, common.ErrEntityNotFound)
		}
		target, err := r.entities.Get(ctx, owner, in.TargetEntityID)
		if err != nil {
			return notFound(err, common.ErrEntityNotFound)
		}
		if source.CaseID != target.CaseID {
			return common.ErrCrossCaseRelationship
		}

		created, err = r.relationships.Create(ctx, &models.Relationship{
			SourceEntityID: source.ID,
			TargetEntityID: target.ID,
			Relation:       in.Relation,
			Owner:          owner,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListRelationships returns the owner's relationships; with a caseID only
// those whose both endpoints are in that case.
func (s *GraphService) ListRelationships(ctx context.Context, owner string, caseID *int64) ([]*models.Relationship, error) {
	return s.repomanager.Relationships(s.db).List(ctx, owner, caseID)
}

func (s *GraphService) GetRelationship(ctx context.Context, owner string, id int64) (*models.Relationship, error) {
	rel, err := s.repomanager.Relationships(s.db).Get(ctx, owner, id)
	if err != nil {
		return nil, notFound(err, common.ErrRelationshipNotFound)
	}
	return rel, nil
}

func (s *GraphService) UpdateRelationship(ctx context.Context, owner string, id int64, patch models.RelationshipUpdate) (*models.Relationship, error) {
	if err := models.Validate(patch); err != nil {
		return nil, err
	}

	var updated *models.Relationship
	err := s.mutate(ctx, func(ctx context.Context, r graphRepos) error {
		rel, err := r.relationships.Get(ctx, owner, id)
		if err != nil {
			return notFound(err, common.ErrRelationshipNotFound)
		}
		patch.Apply(rel)
		updated, err = r.relationships.Update(ctx, rel)
		return notFound(err, common.ErrRelationshipNotFound)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *GraphService) DeleteRelationship(ctx context.Context, owner string, id int64) error {
	return s.mutate(ctx, func(ctx context.Context, r graphRepos) error {
		return notFound(r.relationships.Delete(ctx, owner, id), common.ErrRelationshipNotFound)
	})
}
