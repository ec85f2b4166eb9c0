// Package archive stores raw provider responses next to the graph so an
// analyst can revisit exactly what a provider returned for a run.
package archive

import (
	"context"
	"fmt"
	"net/url"
)

// Object is one raw provider response.
type Object struct {
	Adapter  string
	Owner    string
	EntityID int64
	RunID    string
	Body     []byte
}

// Key returns the object key: providers/<adapter>/<owner>/<entity-id>/<run-id>.json.
func (o Object) Key() string {
	return fmt.Sprintf("providers/%s/%s/%d/%s.json",
		url.PathEscape(o.Adapter), url.PathEscape(o.Owner), o.EntityID, o.RunID)
}

// Archiver persists raw responses.
type Archiver interface {
	Store(ctx context.Context, obj Object) error
}

type nopArchiver struct{}

// NewNop returns an Archiver that drops everything.
func NewNop() Archiver { return nopArchiver{} }

func (nopArchiver) Store(context.Context, Object) error { return nil }
