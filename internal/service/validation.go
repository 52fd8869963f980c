package service

import (
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"

	"radius-admin/internal/util"
)

// validate is shared by every service; validator instances cache struct
// metadata and are safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// radius_username: letters, digits, dot, underscore, hyphen; 3-64.
	_ = v.RegisterValidation("radius_username", func(fl validator.FieldLevel) bool {
		return util.ValidUsername(fl.Field().String())
	})

	// strong_password: minimum 8 with an uppercase letter, a digit and a
	// special character.
	_ = v.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
		return strongPassword(fl.Field().String())
	})

	return v
}

func strongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			special = true
		}
	}
	return upper && digit && special
}

// validationError wraps a validator failure into the service taxonomy
// with a readable field message.
func validationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("%w: field %s failed rule %s", ErrValidationFailed, first.Field(), first.Tag())
	}
	return fmt.Errorf("%w: %v", ErrValidationFailed, err)
}
