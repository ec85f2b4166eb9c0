package models

// Relationship is a directed, labelled edge between two entities of the
// same case.
type Relationship struct {
	ID             int64  `json:"id"`
	SourceEntityID int64  `json:"source_entity_id"`
	TargetEntityID int64  `json:"target_entity_id"`
	Relation       string `json:"relation"`
	Owner          string `json:"owner"`
}

type RelationshipCreate struct {
	SourceEntityID int64  `json:"source_entity_id" validate:"gt=0"`
	TargetEntityID int64  `json:"target_entity_id" validate:"gt=0"`
	Relation       string `json:"relation" validate:"max=100"`
}

// RelationshipUpdate only allows relabelling; endpoints are fixed.
type RelationshipUpdate struct {
	Relation *string `json:"relation,omitempty" validate:"omitempty,max=100"`
}

func (u RelationshipUpdate) Apply(r *Relationship) {
	if u.Relation != nil {
		r.Relation = *u.Relation
	}
}
