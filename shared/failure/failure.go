package failure

import (
	"errors"
	"net/http"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`

	// FieldErrors carries per-field validation details for 400 responses.
	FieldErrors []FieldError `json:"errors,omitempty"`
}

// FieldError describes a single rejected request field.
type FieldError struct {
	Field         string `json:"field"`
	RejectedValue any    `json:"rejected_value"`
	Message       string `json:"message"`
}

// Error returns the failure message.
func (e *Failure) Error() string {
	return e.Message
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: msg,
	}
}

// Validation returns a bad request Failure carrying structured field errors.
func Validation(fieldErrors []FieldError) error {
	return &Failure{
		Code:        http.StatusBadRequest,
		Message:     "Validation failed",
		FieldErrors: fieldErrors,
	}
}

// Unauthorized returns a new Failure with code for unauthenticated requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Message: msg,
	}
}

// Forbidden returns a new Failure for requests by an authenticated caller
// that does not own the resource.
func Forbidden(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Message: msg,
	}
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(msg string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Message: msg,
	}
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		}
	}

	return nil
}

// Upstream returns a new Failure mirroring a status received from the
// backend todo service, preserving the numeric status and reason phrase.
func Upstream(statusCode int) error {
	return &Failure{
		Code:    statusCode,
		Message: http.StatusText(statusCode),
	}
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetFieldErrors returns the structured field errors of a validation failure, if any.
func GetFieldErrors(err error) []FieldError {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.FieldErrors
	}

	return nil
}
