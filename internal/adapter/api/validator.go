package api

import (
	"github.com/go-playground/validator/v10"

	"webshop/internal/domain/validation"
)

// Validator plugs the shared validator into echo's c.Validate.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validation.Validator()}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
