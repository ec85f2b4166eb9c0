// Package common defines sentinel errors shared by the storage, service and
// enrichment layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")
)

// Auth errors. Both match ErrorUnauthorized.
var (
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrorUnauthorized)
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrorUnauthorized)
)

// Resource-specific not-found errors. Each one matches ErrorNotFound.
var (
	ErrCaseNotFound         = fmt.Errorf("Case %w", ErrorNotFound)
	ErrEntityNotFound       = fmt.Errorf("Entity %w", ErrorNotFound)
	ErrRelationshipNotFound = fmt.Errorf("Relationship %w", ErrorNotFound)
	ErrCredentialNotFound   = fmt.Errorf("Credential %w", ErrorNotFound)
)

// ErrCrossCaseRelationship is returned when the endpoints of a relationship
// live in different cases.
var ErrCrossCaseRelationship = fmt.Errorf("%w: entities must belong to the same case", ErrorValidation)

// Invalid wraps a field-level validation failure so that it matches
// ErrorValidation while keeping the failed rule in the message.
func Invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrorValidation, err)
}
