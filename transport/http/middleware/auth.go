package middleware

import (
	"context"
	"errors"
	"net/http"

	"todoapp/infras/jwt"
	"todoapp/infras/otel"
	"todoapp/shared/constant"
	"todoapp/shared/failure"
	"todoapp/transport/http/response"
)

// Auth is the resource-server authorization filter: it validates inbound
// bearer tokens and injects the resolved subject into the request context.
// Requests that fail validation never reach a handler.
type Auth interface {
	Auth(http.Handler) http.Handler
}

type authImpl struct {
	validator jwt.Validator
	otel      otel.Otel
}

func NewAuthMiddleware(validator jwt.Validator, otel otel.Otel) Auth {
	return &authImpl{
		validator: validator,
		otel:      otel,
	}
}

func (m *authImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "auth.middleware")
		defer scope.End()

		scope.SetAttributes(map[string]any{
			"middleware.type": "auth",
			"http.path":       request.URL.Path,
			"http.method":     request.Method,
		})

		authHeader := request.Header.Get(constant.RequestHeaderAuthorization)
		if authHeader == "" {
			err := failure.Unauthorized("Missing authorization header")
			response.WithError(writer, err)

			scope.TraceError(err)

			return
		}

		tokenString, err := jwt.ExtractTokenFromHeader(authHeader)
		if err != nil {
			err := failure.Unauthorized("Invalid authorization header format")
			response.WithError(writer, err)

			scope.TraceError(err)

			return
		}

		claims, err := m.validator.ValidateToken(ctx, tokenString)
		if err != nil {
			var message string

			switch {
			case errors.Is(err, jwt.ErrExpiredToken):
				message = "Token has expired"
			case errors.Is(err, jwt.ErrInvalidIssuer):
				message = "Invalid token issuer"
			case errors.Is(err, jwt.ErrInvalidClaim):
				message = "Invalid token claims"
			default:
				message = "Invalid token"
			}

			err := failure.Unauthorized(message)
			response.WithError(writer, err)

			scope.TraceError(err)

			return
		}

		ctx = context.WithValue(ctx, constant.ContextKeySubject, claims.Subject)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// Subject returns the authenticated caller's subject from the context. The
// second return is false when the request did not pass the auth middleware.
func Subject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(constant.ContextKeySubject).(string)

	return subject, ok && subject != ""
}
