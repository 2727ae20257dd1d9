// Package validator wraps go-playground validation and registers the
// rules webhook payloads rely on.
package validator

import "github.com/go-playground/validator/v10"

// minPhoneDigits is the shortest WhatsApp sender id we accept:
// country code + area code + number.
const minPhoneDigits = 10

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the domain rules registered.
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("phone_digits", phoneDigits)
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

// phoneDigits accepts values that carry a plausible phone number once
// punctuation is stripped.
func phoneDigits(fl validator.FieldLevel) bool {
	digits := 0
	for _, r := range fl.Field().String() {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minPhoneDigits
}
