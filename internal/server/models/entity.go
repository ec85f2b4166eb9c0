package models

// Entity is a single observation inside a case: an indicator entered by the
// investigator or a fact derived by enrichment.
type Entity struct {
	ID          int64   `json:"id"`
	CaseID      int64   `json:"case_id"`
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Description *string `json:"description,omitempty"`
	Owner       string  `json:"owner"`
}

// EntityCreate carries the fields accepted when adding an entity to a case.
type EntityCreate struct {
	CaseID      int64   `json:"case_id" validate:"gt=0"`
	Name        string  `json:"name" validate:"required,max=1000"`
	Kind        string  `json:"kind" validate:"max=50"`
	Description *string `json:"description,omitempty"`
}

// Normalize lowercases and trims the kind tag.
func (c *EntityCreate) Normalize() {
	c.Kind = string(ParseKind(c.Kind))
}

// EntityUpdate is a partial update; nil fields are left unchanged. The case
// of an entity cannot change after creation.
type EntityUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=1000"`
	Kind        *string `json:"kind,omitempty" validate:"omitempty,max=50"`
	Description *string `json:"description,omitempty"`
}

// Apply merges the non-nil fields of u into e.
func (u EntityUpdate) Apply(e *Entity) {
	if u.Name != nil {
		e.Name = *u.Name
	}
	if u.Kind != nil {
		e.Kind = string(ParseKind(*u.Kind))
	}
	if u.Description != nil {
		e.Description = u.Description
	}
}
