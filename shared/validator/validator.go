// Package validator decodes JSON request bodies into DTO structs and
// validates them with go-playground/validator, translating rule violations
// into structured field errors.
// https://github.com/go-playground/validator
package validator

import (
	"encoding/json"
	"fmt"
	"io"

	val "github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"todoapp/shared/failure"
)

var validate *val.Validate

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	// notblank trims the value first, so an all-whitespace string fails.
	if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
}

// Validate reads from the given io.Reader into the given struct, and then
// performs validation on the struct. A decode error or rule violation is
// returned as a bad request failure; nil means the struct is valid.
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	err := decoder.Decode(data)

	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		return failure.Validation(fieldErrors(err)) //nolint:wrapcheck
	}

	return nil
}
