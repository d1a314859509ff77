package forms

import (
	"errors"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormField is the key used for errors that belong to the form as a whole.
const FormField = "_form"

// Refinement is a cross-field rule. It reports problems by adding to errs,
// under whichever field the problem should be shown on.
type Refinement[F any] func(form *F, errs Errors)

// Normalizer is implemented by forms that rewrite values after trimming.
type Normalizer interface {
	Normalize()
}

// Schema validates a subset of the fields of F. Schemas are values: Extend and
// Refine return new schemas and never modify the receiver.
type Schema[F any] struct {
	name        string
	fields      []string
	refinements []Refinement[F]
}

// NewSchema validates the named Go fields of F.
func NewSchema[F any](name string, fields ...string) Schema[F] {
	return Schema[F]{
		name:   name,
		fields: slices.Clone(fields),
	}
}

func (s Schema[F]) Name() string {
	return s.name
}

func (s Schema[F]) Fields() []string {
	return slices.Clone(s.fields)
}

func (s Schema[F]) Has(field string) bool {
	return slices.Contains(s.fields, field)
}

// Extend returns a schema validating every field of s plus fields. Redeclaring
// a field of s is ignored, so the result is always a superset.
func (s Schema[F]) Extend(name string, fields ...string) Schema[F] {
	next := Schema[F]{
		name:        name,
		fields:      slices.Clone(s.fields),
		refinements: slices.Clone(s.refinements),
	}

	for _, f := range fields {
		if !next.Has(f) {
			next.fields = append(next.fields, f)
		}
	}

	return next
}

func (s Schema[F]) Refine(rules ...Refinement[F]) Schema[F] {
	next := s
	next.fields = slices.Clone(s.fields)
	next.refinements = append(slices.Clone(s.refinements), rules...)

	return next
}

// Validate trims every string field of form in place, then checks the fields
// of s and its refinements.
func (s Schema[F]) Validate(form *F) Errors {
	Normalize(form)

	errs := Errors{}

	if len(s.fields) > 0 {
		err := Validator().StructPartial(form, s.fields...)

		var fieldErrs validator.ValidationErrors
		switch {
		case err == nil:
		case errors.As(err, &fieldErrs):
			typ := reflect.TypeOf(form).Elem()
			for _, fe := range fieldErrs {
				errs.Add(fe.Field(), message(fe, labelOf(typ, fe.StructField())))
			}
		default:
			errs.Add(FormField, err.Error())
		}
	}

	for _, rule := range s.refinements {
		rule(form, errs)
	}

	return errs
}

// Normalize trims the string fields of form and applies its Normalizer.
func Normalize[F any](form *F) {
	if form == nil {
		return
	}

	v := reflect.ValueOf(form).Elem()
	if v.Kind() == reflect.Struct {
		for i := range v.NumField() {
			field := v.Field(i)
			if field.Kind() == reflect.String && field.CanSet() {
				field.SetString(strings.TrimSpace(field.String()))
			}
		}
	}

	if n, ok := any(form).(Normalizer); ok {
		n.Normalize()
	}
}

func labelOf(typ reflect.Type, goName string) string {
	if f, ok := typ.FieldByName(goName); ok {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
	}

	return goName
}
