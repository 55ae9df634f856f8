package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"

	"todoapp/shared/failure"
)

var (
	messages = map[string]string{
		"required": "{field} is required",
		"notblank": "{field} must not be blank",
		"max":      "{field} must be less than or equal to {param}",
		"min":      "{field} must be greater than or equal to {param}",
		"oneof":    "{field} must be one of {param}",
	}
)

func fieldErrors(err error) []failure.FieldError {
	var valErrors val.ValidationErrors

	if !errors.As(err, &valErrors) {
		return []failure.FieldError{{Message: err.Error()}}
	}

	fieldErrs := make([]failure.FieldError, 0, len(valErrors))

	for _, valErr := range valErrors {
		field := jsonFieldName(valErr)

		msg := messages[valErr.Tag()]
		if msg == "" {
			msg = valErr.Error()
		} else {
			msg = strings.ReplaceAll(msg, "{field}", field)
			msg = strings.ReplaceAll(msg, "{param}", valErr.Param())
		}

		fieldErrs = append(fieldErrs, failure.FieldError{
			Field:         field,
			RejectedValue: valErr.Value(),
			Message:       msg,
		})
	}

	return fieldErrs
}

// jsonFieldName lowers the struct field name so the error matches the wire
// representation rather than the Go identifier.
func jsonFieldName(valErr val.FieldError) string {
	field := valErr.Field()
	if field == "" {
		return field
	}

	return strings.ToLower(field[:1]) + field[1:]
}
