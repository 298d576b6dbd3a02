// Package validation checks request structs with go-playground/validator and
// renders failures as English messages.
//
// Besides the built-in tags it understands:
//
//	isodate          a calendar date in YYYY-MM-DD form
//	typeid=<prefix>  an identifier carrying the given prefix (see package ids)
package validation

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/mmynk/debtbook/internal/ids"
	"github.com/mmynk/debtbook/internal/models"
)

// Validator validates structs and translates the errors.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a Validator with the custom tags and English translations.
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	eng := en.New()
	uni := ut.New(eng, eng)
	trans, found := uni.GetTranslator("en")
	if !found {
		return nil, errors.New("validation: english translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, err
	}

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	if err := v.RegisterValidation("isodate", isISODate); err != nil {
		return nil, err
	}
	if err := v.RegisterValidation("typeid", isTypeID); err != nil {
		return nil, err
	}

	custom := map[string]string{
		"isodate": "{0} must be a date in YYYY-MM-DD format",
		"typeid":  "{0} must be a valid {1} id",
	}
	for tag, text := range custom {
		if err := v.RegisterTranslation(tag, trans,
			func(ut ut.Translator) error { return ut.Add(tag, text, true) },
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, _ := ut.T(fe.Tag(), fe.Field(), fe.Param())
				return msg
			},
		); err != nil {
			return nil, err
		}
	}

	return &Validator{validate: v, translator: trans}, nil
}

// Must is New that panics on error.
func Must() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Struct validates s. The first failing field is returned as a
// *models.ValidationError, so errors.Is(err, models.ErrInvalidInput) holds.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return models.Invalid("request", "%v", err)
	}
	fe := errs[0]
	return &models.ValidationError{Field: fe.Field(), Message: fe.Translate(v.translator)}
}

func isISODate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true // leave emptiness to "required"
	}
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

func isTypeID(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	return ids.Validate(s, ids.Prefix(fl.Param())) == nil
}
