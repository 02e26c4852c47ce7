// Package validation checks request models against their `validate` struct
// tags and reports every violated constraint at once.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violation is a single failed constraint.
type Violation struct {
	Path    string // <operation>.<json field>
	Message string
}

func (v Violation) String() string { return v.Path + " " + v.Message }

// Error aggregates all violations found on a value.
type Error struct {
	Violations []Violation
}

// Error returns one "<path> <message>" line per violation.
func (e *Error) Error() string {
	lines := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		lines = append(lines, v.String())
	}
	return strings.Join(lines, "\n")
}

// Failure is a value that could not be validated at all, as opposed to an
// [Error] listing the constraints it breaks.
type Failure struct {
	Op  string
	Err error
}

func (f *Failure) Error() string { return "validate " + f.Op + ": " + f.Err.Error() }
func (f *Failure) Unwrap() error { return f.Err }

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Validate returns nil or an [*Error] listing every violation of value,
// with paths rooted at op. Values that cannot be validated give a [*Failure].
func (val *Validator) Validate(op string, value any) error {
	err := val.v.Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Failure{Op: op, Err: err}
	}

	violations := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, Violation{
			Path:    path(op, fe.Namespace()),
			Message: message(fe),
		})
	}
	return &Error{Violations: violations}
}

// path replaces the struct name heading namespace with op.
func path(op, namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return op + "." + namespace
	}
	return op + "." + rest
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is not allowed to be empty"
	case "min":
		return fmt.Sprintf("%s should have at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s should have at most %s characters", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}
