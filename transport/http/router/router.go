package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"todoapp/config"
	"todoapp/internal/handlers/health"
	"todoapp/internal/handlers/todo"
	"todoapp/transport/http/middleware"
)

type DomainHandlers struct {
	Health health.Handler
	Todo   todo.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	AppMiddleware  middleware.AppMiddleware
	Config         *config.Config
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Use(r.AppMiddleware.Recovery)
	router.Use(r.AppMiddleware.Tracing)
	router.Use(r.AppMiddleware.RateLimit())

	corsConfig := r.Config.App.CORS
	if corsConfig.Enable {
		router.Use(cors.Handler(cors.Options{
			AllowCredentials: corsConfig.AllowCredentials,
			AllowedHeaders:   corsConfig.AllowedHeaders,
			AllowedMethods:   corsConfig.AllowedMethods,
			AllowedOrigins:   corsConfig.AllowedOrigins,
			MaxAge:           corsConfig.MaxAgeSeconds,
		}))
	}

	r.DomainHandlers.Health.Router(router)
	r.DomainHandlers.Todo.Router(router)
}

func New(domainHandlers DomainHandlers, appMiddleware middleware.AppMiddleware, cfg *config.Config) Router {
	return Router{
		DomainHandlers: domainHandlers,
		AppMiddleware:  appMiddleware,
		Config:         cfg,
	}
}
