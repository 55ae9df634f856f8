package response

import (
	"encoding/json"
	"net/http"
	"time"

	"todoapp/shared/constant"
	"todoapp/shared/failure"
	"todoapp/shared/logger"
)

// Error is the error body: numeric status, reason phrase, human message and,
// for validation failures, per-field details.
type Error struct {
	Timestamp time.Time            `json:"timestamp"`
	Status    int                  `json:"status"`
	Reason    string               `json:"error"`
	Message   string               `json:"message"`
	Errors    []failure.FieldError `json:"errors,omitempty"`
}

// WithJSON sends a response containing a JSON payload.
func WithJSON(writer http.ResponseWriter, code int, jsonPayload any) {
	respond(writer, code, jsonPayload)
}

// WithCreated sends a 201 response with a Location header and a JSON body.
func WithCreated(writer http.ResponseWriter, location string, jsonPayload any) {
	writer.Header().Set(constant.RequestHeaderLocation, location)
	respond(writer, http.StatusCreated, jsonPayload)
}

// WithNoContent sends an empty 204 response.
func WithNoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// WithError sends an error response derived from the given error.
func WithError(writer http.ResponseWriter, err error) {
	code := failure.GetCode(err)

	respond(writer, code, Error{
		Timestamp: time.Now(),
		Status:    code,
		Reason:    http.StatusText(code),
		Message:   err.Error(),
		Errors:    failure.GetFieldErrors(err),
	})
}

// WithMessage sends a response with a simple text message.
func WithMessage(writer http.ResponseWriter, code int, message string) {
	respond(writer, code, map[string]string{"message": message})
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded.
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

// WithUnhealthy sends a default response for when the server is unhealthy.
func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func respond(writer http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)

	if _, err = writer.Write(body); err != nil {
		logger.ErrorWithStack(err)
	}
}
