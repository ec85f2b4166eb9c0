// Package models defines the records of the investigation graph: cases,
// the entities observed inside them, the relationships linking entities and
// the owner-scoped provider credentials.
package models

// Case is the root container of an investigation.
type Case struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Owner       string  `json:"owner"`
}

// CaseCreate carries the fields accepted when opening a case.
type CaseCreate struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description,omitempty"`
}

// CaseUpdate is a partial update; nil fields are left unchanged.
type CaseUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty"`
}

// Apply merges the non-nil fields of u into c.
func (u CaseUpdate) Apply(c *Case) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Description != nil {
		c.Description = u.Description
	}
}
