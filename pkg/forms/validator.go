// Package forms holds the field constraints of every client form and the
// schemas that validate them, one step at a time or as a whole.
package forms

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	seedWordCount       = 12
	activationKeyMaxLen = 36
)

var (
	pinPattern          = regexp.MustCompile(`^\d{6}$`)
	nikPattern          = regexp.MustCompile(`^\d{16}$`)
	alnumSpacePattern   = regexp.MustCompile(`^[a-zA-Z0-9 ]{2,100}$`)
	hospitalIDPattern   = regexp.MustCompile(`^[a-z0-9_]{3,50}$`)
	hospitalNamePattern = regexp.MustCompile(`^[a-zA-Z0-9 ]{3,50}$`)
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the form tags registered.
// Field errors are reported under the field's JSON name.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}

			if name == "" {
				return fld.Name
			}

			return name
		})

		mustRegister(v, "pin", matches(pinPattern))
		mustRegister(v, "nik", matches(nikPattern))
		mustRegister(v, "alnumspace", matches(alnumSpacePattern))
		mustRegister(v, "hospitalid", matches(hospitalIDPattern))
		mustRegister(v, "hospitalname", matches(hospitalNamePattern))
		mustRegister(v, "activationkey", func(fl validator.FieldLevel) bool {
			return len(fl.Field().String()) <= activationKeyMaxLen
		})
		mustRegister(v, "seedwords", func(fl validator.FieldLevel) bool {
			return IsSeedPhrase(fl.Field().String())
		})

		validate = v
	})

	return validate
}

// IsSeedPhrase reports whether s holds exactly twelve whitespace-separated words.
func IsSeedPhrase(s string) bool {
	return len(strings.Fields(s)) == seedWordCount
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("forms: register " + tag + ": " + err.Error())
	}
}
