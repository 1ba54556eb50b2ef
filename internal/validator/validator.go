package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with a flat error shape.
type Validator struct {
	cli *validator.Validate
}

// FieldError is one failed rule on one field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// Errors is returned when validation fails.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fmt.Sprintf("%s failed %s", fe.Field, fe.Rule)
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (v *Validator) format(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

// Struct validates s against its `validate` tags.
func (v *Validator) Struct(s any) error {
	if err := v.cli.Struct(s); err != nil {
		return v.format(err)
	}
	return nil
}

// Var validates a single value against tag, e.g. "min=5,max=140".
func (v *Validator) Var(value any, tag string) error {
	if tag == "" {
		return nil
	}
	if err := v.cli.Var(value, tag); err != nil {
		return v.format(err)
	}
	return nil
}

func New() *Validator {
	return &Validator{
		cli: validator.New(validator.WithRequiredStructEnabled()),
	}
}
