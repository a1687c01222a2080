package serverutils

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs the `validate` tags declared on a DTO and returns the
// first violation as an error.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}
