package router

import (
	"github.com/go-chi/chi/v5"

	"todoapp/internal/client/handlers"
	"todoapp/transport/http/middleware"
)

// ClientRouter mounts the browser-facing client application.
type ClientRouter struct {
	Web           handlers.Handler
	AppMiddleware middleware.AppMiddleware
}

func (r *ClientRouter) SetupRoutes(router chi.Router) {
	router.Use(r.AppMiddleware.Recovery)
	router.Use(r.AppMiddleware.Tracing)

	r.Web.Router(router)
}

func NewClientRouter(web handlers.Handler, appMiddleware middleware.AppMiddleware) ClientRouter {
	return ClientRouter{
		Web:           web,
		AppMiddleware: appMiddleware,
	}
}
