package schema

import (
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	entrans "github.com/go-playground/validator/translations/en"
	validator "gopkg.in/go-playground/validator.v9"
)

var (
	validatorOnce sync.Once
	validate      *validator.Validate
	translator    ut.Translator
)

// newValidator builds the single validator.Validate instance used for every
// request body, with English field-error translation registered once.
func newValidator() (*validator.Validate, ut.Translator) {
	validatorOnce.Do(func() {
		locale := en.New()
		uni := ut.New(locale, locale)
		trans, _ := uni.GetTranslator("en")

		v := validator.New()
		if err := entrans.RegisterDefaultTranslations(v, trans); err != nil {
			panic(err)
		}

		validate = v
		translator = trans
	})

	return validate, translator
}

// Validate runs struct-tag validation on a decoded request body and returns
// the first field error translated into an operator-readable message.
// The pipeline does not pass DeleteAccountRequest or GetRecoveryRequest
// through Validate; their only field is the caller key, which the pipeline
// checks itself.
func Validate(req any) error {
	v, trans := newValidator()

	err := v.Struct(req)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return err
	}

	return fieldError{field: fieldErrs[0].Field(), message: fieldErrs[0].Translate(trans)}
}

type fieldError struct {
	field   string
	message string
}

func (e fieldError) Error() string { return e.field + ": " + e.message }
