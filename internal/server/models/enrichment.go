package models

// EnrichmentResult is what a single adapter run added to the graph.
type EnrichmentResult struct {
	Entities      []*Entity       `json:"entities"`
	Relationships []*Relationship `json:"relationships"`
	Message       string          `json:"message,omitempty"`
}

// NewMessageResult returns an empty result carrying only a message.
func NewMessageResult(msg string) *EnrichmentResult {
	return &EnrichmentResult{Entities: []*Entity{}, Relationships: []*Relationship{}, Message: msg}
}

// AdapterInfo advertises one adapter available for a kind.
type AdapterInfo struct {
	Name               string `json:"name"`
	CredentialRequired string `json:"credential_required"`
}
