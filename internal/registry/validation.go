package registry

import (
	"github.com/go-playground/validator/v10"
)

// ValidationTagKey is the validator tag checking a settings key with ValidKey.
const ValidationTagKey = "settingskey"

// RegisterValidations adds the settings key validation to v.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation(ValidationTagKey, func(fl validator.FieldLevel) bool { //nolint:wrapcheck
		return ValidKey(fl.Field().String())
	})
}
