package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/casegraph/internal/server/models"
)

type deleted struct {
	Deleted int64 `json:"deleted"`
}

func (c *CLI) cases(ctx context.Context, args []string) error {
	verb, rest, err := action("case", args)
	if err != nil {
		return err
	}

	fs := c.flagSet("case " + verb)
	token := tokenFlag(fs)
	id := fs.Int64("id", 0, "case id")
	name := fs.String("name", "", "case name")
	description := fs.String("description", "", "case description")
	if err := parse(fs, rest); err != nil {
		return err
	}
	owner, err := c.owner(*token)
	if err != nil {
		return err
	}
	g := c.backend.Graph()

	switch verb {
	case "add":
		cs, err := g.CreateCase(ctx, owner, models.CaseCreate{Name: *name, Description: optional(fs, "description", *description)})
		if err != nil {
			return err
		}
		return c.print(cs)
	case "list":
		list, err := g.ListCases(ctx, owner)
		if err != nil {
			return err
		}
		return c.print(list)
	case "get":
		cs, err := g.GetCase(ctx, owner, *id)
		if err != nil {
			return err
		}
		return c.print(cs)
	case "update":
		cs, err := g.UpdateCase(ctx, owner, *id, models.CaseUpdate{
			Name:        optional(fs, "name", *name),
			Description: optional(fs, "description", *description),
		})
		if err != nil {
			return err
		}
		return c.print(cs)
	case "delete":
		if err := g.DeleteCase(ctx, owner, *id); err != nil {
			return err
		}
		return c.print(deleted{*id})
	default:
		return fmt.Errorf("%w: unknown case action %q", ErrUsage, verb)
	}
}

func (c *CLI) entities(ctx context.Context, args []string) error {
	verb, rest, err := action("entity", args)
	if err != nil {
		return err
	}

	fs := c.flagSet("entity " + verb)
	token := tokenFlag(fs)
	id := fs.Int64("id", 0, "entity id")
	caseID := fs.Int64("case", 0, "case id")
	name := fs.String("name", "", "entity name (the indicator value)")
	kind := fs.String("kind", "", "entity kind, e.g. ip, domain, url, hash, email, phone")
	description := fs.String("description", "", "entity description")
	if err := parse(fs, rest); err != nil {
		return err
	}
	owner, err := c.owner(*token)
	if err != nil {
		return err
	}
	g := c.backend.Graph()

	switch verb {
	case "add":
		e, err := g.CreateEntity(ctx, owner, models.EntityCreate{
			CaseID:      *caseID,
			Name:        *name,
			Kind:        *kind,
			Description: optional(fs, "description", *description),
		})
		if err != nil {
			return err
		}
		return c.print(e)
	case "list":
		list, err := g.ListEntities(ctx, owner, caseFilter(*caseID))
		if err != nil {
			return err
		}
		return c.print(list)
	case "get":
		e, err := g.GetEntity(ctx, owner, *id)
		if err != nil {
			return err
		}
		return c.print(e)
	case "update":
		e, err := g.UpdateEntity(ctx, owner, *id, models.EntityUpdate{
			Name:        optional(fs, "name", *name),
			Kind:        optional(fs, "kind", *kind),
			Description: optional(fs, "description", *description),
		})
		if err != nil {
			return err
		}
		return c.print(e)
	case "delete":
		if err := g.DeleteEntity(ctx, owner, *id); err != nil {
			return err
		}
		return c.print(deleted{*id})
	default:
		return fmt.Errorf("%w: unknown entity action %q", ErrUsage, verb)
	}
}

func (c *CLI) relationships(ctx context.Context, args []string) error {
	verb, rest, err := action("relationship", args)
	if err != nil {
		return err
	}

	fs := c.flagSet("relationship " + verb)
	token := tokenFlag(fs)
	id := fs.Int64("id", 0, "relationship id")
	caseID := fs.Int64("case", 0, "case id filter")
	source := fs.Int64("source", 0, "source entity id")
	target := fs.Int64("target", 0, "target entity id")
	relation := fs.String("relation", "", "relation label")
	if err := parse(fs, rest); err != nil {
		return err
	}
	owner, err := c.owner(*token)
	if err != nil {
		return err
	}
	g := c.backend.Graph()

	switch verb {
	case "add":
		r, err := g.CreateRelationship(ctx, owner, models.RelationshipCreate{
			SourceEntityID: *source,
			TargetEntityID: *target,
			Relation:       *relation,
		})
		if err != nil {
			return err
		}
		return c.print(r)
	case "list":
		list, err := g.ListRelationships(ctx, owner, caseFilter(*caseID))
		if err != nil {
			return err
		}
		return c.print(list)
	case "get":
		r, err := g.GetRelationship(ctx, owner, *id)
		if err != nil {
			return err
		}
		return c.print(r)
	case "update":
		r, err := g.UpdateRelationship(ctx, owner, *id, models.RelationshipUpdate{
			Relation: optional(fs, "relation", *relation),
		})
		if err != nil {
			return err
		}
		return c.print(r)
	case "delete":
		if err := g.DeleteRelationship(ctx, owner, *id); err != nil {
			return err
		}
		return c.print(deleted{*id})
	default:
		return fmt.Errorf("%w: unknown relationship action %q", ErrUsage, verb)
	}
}

func caseFilter(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}
