package models

import (
	"github.com/dmitrijs2005/casegraph/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of an input payload. Failures match
// common.ErrorValidation and name the failing field and rule.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return common.Invalid(err)
	}
	return nil
}
