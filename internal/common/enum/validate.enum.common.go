package enum

import "github.com/go-playground/validator/v10"

type validatable interface {
	IsValid() bool
}

// ValidateEnum accepts any field whose type reports its own validity.
func ValidateEnum(fl validator.FieldLevel) bool {
	if v, ok := fl.Field().Interface().(validatable); ok {
		return v.IsValid()
	}
	return false
}
