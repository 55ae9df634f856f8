package di

import (
	"context"

	"todoapp/config"
	"todoapp/infras/otel"
	clientAuth "todoapp/internal/client/auth"
	"todoapp/internal/client/session"
	"todoapp/transport/http"
	"todoapp/transport/http/router"
)

func provideAuthenticator(
	cfg *config.Config,
	sessionStore session.Store,
	ot otel.Otel,
) (clientAuth.Authenticator, error) {
	return clientAuth.New(context.Background(), cfg, sessionStore, ot)
}

func provideServiceHTTP(cfg *config.Config, r router.Router) *http.HTTP {
	return http.New(cfg, &r, cfg.Server.Port)
}

func provideClientHTTP(cfg *config.Config, r router.ClientRouter) *http.HTTP {
	return http.New(cfg, &r, cfg.Client.Port)
}
