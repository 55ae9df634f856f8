//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"todoapp/config"
	"todoapp/infras/jwt"
	"todoapp/infras/otel"
	"todoapp/infras/postgres"
	"todoapp/infras/redis"
	"todoapp/internal/client/gateway"
	"todoapp/internal/client/handlers"
	"todoapp/internal/client/session"
	healthHandler "todoapp/internal/handlers/health"
	todoHandler "todoapp/internal/handlers/todo"
	"todoapp/shared/cache"
	"todoapp/transport/http"
	"todoapp/transport/http/middleware"
	"todoapp/transport/http/router"

	todoRepository "todoapp/internal/domains/todo/repository"
	todoService "todoapp/internal/domains/todo/service"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var todoDomain = wire.NewSet(
	todoRepository.New,
	todoService.New,
)

var serviceRouting = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	todoHandler.New,
	healthHandler.New,
	router.New,
)

var clientWeb = wire.NewSet(
	session.NewStore,
	provideAuthenticator,
	gateway.NewTodoGateway,
	handlers.New,
	router.NewClientRouter,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		todoDomain,
		serviceRouting,
		provideServiceHTTP,
	)

	return &http.HTTP{}
}

func InitializeClient() (*http.HTTP, error) {
	wire.Build(
		configurations,
		otel.New,
		redis.New,
		middleware.NewAppMiddleware,
		sharedHelpers,
		clientWeb,
		provideClientHTTP,
	)

	return &http.HTTP{}, nil
}
