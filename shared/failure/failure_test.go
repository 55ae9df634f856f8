package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"todoapp/shared/failure"
)

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "bad request", err: failure.BadRequestFromString("nope"), want: http.StatusBadRequest},
		{name: "unauthorized", err: failure.Unauthorized("no token"), want: http.StatusUnauthorized},
		{name: "forbidden", err: failure.Forbidden("not yours"), want: http.StatusForbidden},
		{name: "not found", err: failure.NotFound("gone"), want: http.StatusNotFound},
		{name: "internal", err: failure.InternalError(errors.New("boom")), want: http.StatusInternalServerError},
		{name: "upstream mirrors the status", err: failure.Upstream(http.StatusForbidden), want: http.StatusForbidden},
		{name: "plain error defaults to 500", err: errors.New("boom"), want: http.StatusInternalServerError},
		{name: "wrapped failure keeps its code", err: fmt.Errorf("calling service: %w", failure.NotFound("gone")), want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failure.GetCode(tt.err))
		})
	}
}

func TestUpstream_ReasonPhrase(t *testing.T) {
	err := failure.Upstream(http.StatusForbidden)

	assert.EqualError(t, err, "Forbidden")
}

func TestValidation_FieldErrors(t *testing.T) {
	fieldErrs := []failure.FieldError{
		{Field: "description", RejectedValue: "", Message: "description is required"},
	}

	err := failure.Validation(fieldErrs)

	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	assert.Equal(t, fieldErrs, failure.GetFieldErrors(err))
}

func TestNilErrors(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
	assert.NoError(t, failure.InternalError(nil))
}
