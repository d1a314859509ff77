package forms

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidForm is matched by every *ValidationError.
var ErrInvalidForm = errors.New("invalid form")

// Errors maps a field's JSON name to its messages, in the order they were found.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// First returns the first message for field, or "".
func (e Errors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}

	return ""
}

func (e Errors) Valid() bool {
	return len(e) == 0
}

// Fields returns the names of the failing fields, sorted.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	return fields
}

// Err returns nil when e is empty, otherwise a *ValidationError carrying e.
func (e Errors) Err() error {
	if e.Valid() {
		return nil
	}

	return &ValidationError{Errors: e}
}

// ValidationError reports local validation failures for one form.
type ValidationError struct {
	Form   string
	Errors Errors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, field := range e.Errors.Fields() {
		parts = append(parts, field+": "+strings.Join(e.Errors[field], ", "))
	}

	if e.Form == "" {
		return "invalid form: " + strings.Join(parts, "; ")
	}

	return fmt.Sprintf("invalid %s form: %s", e.Form, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidForm
}

// IsValidationError checks if err carries local form errors.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidForm)
}

// message renders the user-facing text for one failed constraint.
func message(fe validator.FieldError, label string) string {
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "alnumspace":
		return label + " must consist of alphanumeric characters only of length 2 - 100."
	case "hospitalid":
		return "Invalid hospital ID, only (a-z0-9_) 3-50 chars accepted"
	case "hospitalname":
		return "Invalid hospital name, only (a-zA-Z0-9 ) 3-50 chars accepted"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	default:
		return label + " is invalid."
	}
}
