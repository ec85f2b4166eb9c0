package enrichment

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/casegraph/internal/server/models"
)

// Fact is one derived observation: it becomes an entity in the subject's
// case plus a relationship from the subject to it.
type Fact struct {
	Name        string
	Kind        models.Kind
	Description string
	Relation    string
}

// Linker writes facts around a subject entity and collects what it created.
type Linker struct {
	graph   GraphWriter
	subject *models.Entity
	owner   string
	result  *models.EnrichmentResult
}

func NewLinker(graph GraphWriter, subject *models.Entity, owner string) *Linker {
	return &Linker{
		graph:   graph,
		subject: subject,
		owner:   owner,
		result:  models.NewMessageResult(""),
	}
}

// Link creates the fact entity and the relationship anchoring it. Facts whose
// name is blank after trimming are skipped.
func (l *Linker) Link(ctx context.Context, f Fact) error {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return nil
	}
	in := models.EntityCreate{
		CaseID: l.subject.CaseID,
		Name:   name,
		Kind:   string(f.Kind),
	}
	if f.Description != "" {
		desc := f.Description
		in.Description = &desc
	}

	e, err := l.graph.CreateEntity(ctx, l.owner, in)
	if err != nil {
		return err
	}
	l.result.Entities = append(l.result.Entities, e)

	rel, err := l.graph.CreateRelationship(ctx, l.owner, models.RelationshipCreate{
		SourceEntityID: l.subject.ID,
		TargetEntityID: e.ID,
		Relation:       f.Relation,
	})
	if err != nil {
		return err
	}
	l.result.Relationships = append(l.result.Relationships, rel)
	return nil
}

// LinkAll links facts in order and stops at the first failure.
func (l *Linker) LinkAll(ctx context.Context, facts []Fact) error {
	for _, f := range facts {
		if err := l.Link(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// Result returns the records created so far.
func (l *Linker) Result() *models.EnrichmentResult {
	return l.result
}

// ResultWithMessage returns the records created so far with msg attached.
func (l *Linker) ResultWithMessage(msg string) *models.EnrichmentResult {
	l.result.Message = msg
	return l.result
}
