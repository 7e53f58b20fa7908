// Package validation wraps go-playground/validator for xepto configuration structs.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/arloliu/xepto/errs"
)

var goValidator = validator.New()

// Errors collects the field-level failures of one struct validation.
type Errors struct {
	Fields []string
}

// Error implements the error interface.
func (e Errors) Error() string {
	if len(e.Fields) == 0 {
		return "no validation errors"
	}

	return strings.Join(e.Fields, "; ")
}

// Unwrap makes validation failures match errs.ErrInvalidConfig.
func (e Errors) Unwrap() error {
	return errs.ErrInvalidConfig
}

// Struct validates s using its `validate` struct tags.
// It returns nil when s is valid, or an Errors value naming each failing
// field and the tag it violated.
func Struct(s any) error {
	err := goValidator.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}

	out := Errors{Fields: make([]string, 0, len(ve))}
	for _, fe := range ve {
		if fe.Param() != "" {
			out.Fields = append(out.Fields, fmt.Sprintf("%s %s=%s (got %v)", fe.Namespace(), fe.ActualTag(), fe.Param(), fe.Value()))
		} else {
			out.Fields = append(out.Fields, fmt.Sprintf("%s %s (got %v)", fe.Namespace(), fe.ActualTag(), fe.Value()))
		}
	}

	return out
}
