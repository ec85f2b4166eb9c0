package models

// Credential is a named provider secret owned by one identity.
//
// Secret holds the plaintext only after the vault opened it; what is
// persisted is SecretCiphertext/SecretNonce.
type Credential struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Description      *string `json:"description,omitempty"`
	Active           bool    `json:"active"`
	Owner            string  `json:"owner"`
	Secret           string  `json:"-"`
	SecretCiphertext []byte  `json:"-"`
	SecretNonce      []byte  `json:"-"`
}

type CredentialCreate struct {
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description *string `json:"description,omitempty"`
	Secret      string  `json:"secret" validate:"required"`
}

// CredentialUpdate is a partial update; nil fields are left unchanged.
type CredentialUpdate struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=3,max=100"`
	Description *string `json:"description,omitempty"`
	Secret      *string `json:"secret,omitempty" validate:"omitempty,min=1"`
	Active      *bool   `json:"active,omitempty"`
}

// Apply merges the non-secret fields of u into c. Secret rotation is
// handled by the caller because it needs re-sealing.
func (u CredentialUpdate) Apply(c *Credential) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Description != nil {
		c.Description = u.Description
	}
	if u.Active != nil {
		c.Active = *u.Active
	}
}
